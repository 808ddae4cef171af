package dashboard

import (
	"strconv"
	"time"

	"github.com/seo-optimizer/dashboard/report"
)

// ErrorMessage is shown for every kind of fetch failure.
const ErrorMessage = "Unable to load the SEO report. Please try again."

// opportunityCount is how many keywords are listed as on-page opportunities.
const opportunityCount = 3

// View is everything the dashboard page and the JSON API render.
type View struct {
	State     State       `json:"state"`
	Loading   bool        `json:"loading"`
	Error     string      `json:"error,omitempty"`
	HasData   bool        `json:"has_data"`
	Domain    string      `json:"domain"`
	Keywords  string      `json:"keywords"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
	Report    *ReportView `json:"report,omitempty"`
}

// ReportView holds the derivations for a loaded report.
type ReportView struct {
	Domain           string                    `json:"domain"`
	BusinessName     string                    `json:"business_name,omitempty"`
	Location         string                    `json:"location,omitempty"`
	Summary          string                    `json:"summary"`
	SEOScore         float64                   `json:"seo_score"`
	Grade            report.Grade              `json:"grade"`
	Rating           report.Rating             `json:"rating"`
	SEOMessage       string                    `json:"seo_message"`
	Authority        float64                   `json:"authority"`
	AuthorityGrade   report.Grade              `json:"authority_grade"`
	AuthorityMessage string                    `json:"authority_message"`
	ScoreCards       []report.ScoreCard        `json:"score_cards"`
	Performance      report.PerformanceSummary `json:"performance"`
	Gmb              GmbView                   `json:"gmb"`
	Opportunities    OpportunityView           `json:"opportunities"`
	Keywords         report.KeywordSummary     `json:"keywords"`
	Backlinks        report.BacklinkSummary    `json:"backlinks"`
	Competitors      report.CompetitorSummary  `json:"competitors"`
}

type GmbView struct {
	HasProfile   bool                   `json:"has_profile"`
	Title        string                 `json:"title,omitempty"`
	Address      string                 `json:"address,omitempty"`
	Completeness report.GmbCompleteness `json:"completeness"`
	Stars        int                    `json:"stars"`
	RatingValue  *float64               `json:"rating_value,omitempty"`
	VotesCount   *int                   `json:"votes_count,omitempty"`
	Categories   []string               `json:"categories"`
}

type OpportunityView struct {
	Subtitle string               `json:"subtitle"`
	Items    []report.Opportunity `json:"items"`
}

// BuildView derives the page model from a snapshot. A failed snapshot keeps
// the previous report alongside the error.
func BuildView(s Snapshot) View {
	v := View{
		State:    s.State,
		Loading:  s.State == StateLoading,
		Domain:   s.Domain,
		Keywords: s.Keywords,
		HasData:  s.Report != nil,
	}
	if s.Err != nil {
		v.Error = ErrorMessage
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		v.UpdatedAt = &t
	}
	if s.Report != nil {
		v.Report = buildReportView(s.Report, s.ReportDomain)
	}
	return v
}

func buildReportView(r *report.SEOReport, searched string) *ReportView {
	domain := r.Domain
	if domain == "" {
		domain = searched
	}

	topKeywords := r.TopKeywords()
	return &ReportView{
		Domain:           domain,
		BusinessName:     r.BusinessName,
		Location:         r.Location,
		Summary:          report.Summary(r),
		SEOScore:         r.SEOScore,
		Grade:            report.GradeFor(r.SEOScore),
		Rating:           report.RatingFor(r.SEOScore),
		SEOMessage:       report.SEOScoreMessage(r.SEOScore),
		Authority:        r.Authority,
		AuthorityGrade:   report.GradeFor(r.Authority),
		AuthorityMessage: report.AuthorityMessage(r.Authority),
		ScoreCards:       report.ScoreCards(r),
		Performance:      report.SummarizePerformance(r.Audits()),
		Gmb:              buildGmbView(r.GmbRecord()),
		Opportunities: OpportunityView{
			Subtitle: strconv.Itoa(len(topKeywords)) + " Opportunities",
			Items:    report.Opportunities(topKeywords, opportunityCount),
		},
		Keywords:    report.SummarizeKeywords(r.Keywords),
		Backlinks:   report.SummarizeBacklinks(r.Backlinks),
		Competitors: report.SummarizeCompetitors(r.Competitors),
	}
}

func buildGmbView(g *report.GmbProfileRecord) GmbView {
	v := GmbView{
		HasProfile:   g != nil,
		Completeness: report.ScoreGmbCompleteness(g),
		Stars:        report.RatingStars(g),
		Categories:   report.Categories(g),
	}
	if g == nil {
		return v
	}
	v.Title = g.Title
	v.Address = g.Address
	if g.Rating != nil {
		v.RatingValue = g.Rating.Value
		v.VotesCount = g.Rating.VotesCount
	}
	return v
}
