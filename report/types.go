package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SEOReport is the payload returned by the backend's seo-report endpoint.
// Nested sections are optional; a nil section reads as empty.
type SEOReport struct {
	Domain          string                  `json:"domain"`
	BusinessName    string                  `json:"business_name"`
	Location        string                  `json:"location"`
	SEOScore        float64                 `json:"seo_score"`
	Authority       float64                 `json:"authority"`
	GmbProfile      *GmbProfileSection      `json:"gmb_profile,omitempty"`
	LocalRankings   *LocalRankingsSection   `json:"local_rankings,omitempty"`
	BusinessDetails *BusinessDetailsSection `json:"business_details,omitempty"`
	WebsiteAnalysis *WebsiteAnalysis        `json:"website_analysis,omitempty"`
	Keywords        *KeywordsSection        `json:"keywords,omitempty"`
	Backlinks       *BacklinksSection       `json:"backlinks,omitempty"`
	Competitors     *CompetitorsSection     `json:"competitors,omitempty"`
	ContentAnalysis *ContentAnalysis        `json:"content_analysis,omitempty"`
}

type GmbProfileSection struct {
	Name         string             `json:"name"`
	Items        []GmbProfileRecord `json:"items"`
	RankingScore float64            `json:"ranking_score"`
}

type LocalRankingsSection struct {
	Position     int              `json:"position"`
	Rankings     []map[string]any `json:"rankings"`
	RankingScore float64          `json:"ranking_score"`
}

type BusinessDetailsSection struct {
	Items        []map[string]any `json:"items"`
	RankingScore float64          `json:"ranking_score"`
}

type WebsiteAnalysis struct {
	OnpageScore float64        `json:"onpage_score"`
	DomainInfo  map[string]any `json:"domain_info,omitempty"`
	Issues      *SiteIssues    `json:"issues,omitempty"`
	Pagespeed   *Pagespeed     `json:"pagespeed,omitempty"`
}

type SiteIssues struct {
	Critical []map[string]any `json:"critical"`
	Warnings []map[string]any `json:"warnings"`
	Notices  []map[string]any `json:"notices"`
}

// Pagespeed holds the lighthouse result. Environment is left open because the
// backend forwards it untouched.
type Pagespeed struct {
	Environment map[string]any   `json:"environment,omitempty"`
	Audits      map[string]Audit `json:"audits,omitempty"`
}

// Audit is a single lighthouse audit entry.
type Audit struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title,omitempty"`
	Score        *float64 `json:"score"`
	DisplayValue string   `json:"displayValue,omitempty"`
	NumericValue *float64 `json:"numericValue,omitempty"`
}

type KeywordsSection struct {
	Ranking     *float64        `json:"ranking,omitempty"`
	Total       *int            `json:"total,omitempty"`
	TopKeywords []KeywordRecord `json:"top_keywords"`
}

// KeywordRecord is one row of keyword search-volume data.
type KeywordRecord struct {
	Keyword          string           `json:"keyword"`
	LocationCode     *int64           `json:"location_code,omitempty"`
	LanguageCode     *string          `json:"language_code,omitempty"`
	SearchPartners   bool             `json:"search_partners,omitempty"`
	SearchVolume     *int64           `json:"search_volume,omitempty"`
	Competition      Competition      `json:"competition"`
	CompetitionIndex *float64         `json:"competition_index,omitempty"`
	CPC              *decimal.Decimal `json:"cpc,omitempty"`
	MonthlySearches  []MonthlySearch  `json:"monthly_searches,omitempty"`
}

type MonthlySearch struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	SearchVolume *int64 `json:"search_volume"`
}

// Competition is either an enumerated level ("LOW", "MEDIUM", "HIGH") or a
// bare number, depending on which keyword data source the backend used.
type Competition struct {
	Level string
	Value *float64
}

// UnmarshalJSON accepts a string, a number or null.
func (c *Competition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Competition{}
		return nil
	}
	if data[0] == '"' {
		var level string
		if err := json.Unmarshal(data, &level); err != nil {
			return fmt.Errorf("competition level: %w", err)
		}
		*c = Competition{Level: strings.ToUpper(strings.TrimSpace(level))}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("competition must be a string or number: %w", err)
	}
	*c = Competition{Value: &v}
	return nil
}

func (c Competition) MarshalJSON() ([]byte, error) {
	switch {
	case c.Level != "":
		return json.Marshal(c.Level)
	case c.Value != nil:
		return json.Marshal(*c.Value)
	default:
		return []byte("null"), nil
	}
}

// GmbProfileRecord is a Google Business listing as returned by the backend.
type GmbProfileRecord struct {
	Title                string         `json:"title,omitempty"`
	Description          string         `json:"description,omitempty"`
	Category             string         `json:"category,omitempty"`
	AdditionalCategories []string       `json:"additional_categories,omitempty"`
	Address              string         `json:"address,omitempty"`
	Phone                string         `json:"phone,omitempty"`
	URL                  string         `json:"url,omitempty"`
	Rating               *GmbRating     `json:"rating,omitempty"`
	Attributes           *GmbAttributes `json:"attributes,omitempty"`
	IsClaimed            *bool          `json:"is_claimed,omitempty"`
	TotalPhotos          *int           `json:"total_photos,omitempty"`
	MainImage            string         `json:"main_image,omitempty"`
	Logo                 string         `json:"logo,omitempty"`
}

// GmbRating is a listing's average review score.
type GmbRating struct {
	Value      *float64 `json:"value,omitempty"`
	VotesCount *int     `json:"votes_count,omitempty"`
}

type GmbAttributes struct {
	AvailableAttributes   map[string][]string `json:"available_attributes,omitempty"`
	UnavailableAttributes map[string][]string `json:"unavailable_attributes,omitempty"`
}

type BacklinksSection struct {
	Total            int     `json:"total"`
	QualityScore     float64 `json:"quality_score"`
	ReferringDomains *int    `json:"referring_domains,omitempty"`
	DofollowLinks    *int    `json:"dofollow_links,omitempty"`
	NofollowLinks    *int    `json:"nofollow_links,omitempty"`
}

type CompetitorsSection struct {
	Items          []map[string]any  `json:"items"`
	BenchmarkScore float64           `json:"benchmark_score"`
	Rank           int               `json:"rank"`
	TopCompetitors []CompetitorScore `json:"top_competitors,omitempty"`
}

type CompetitorScore struct {
	Domain        string  `json:"domain"`
	Score         float64 `json:"score"`
	AvgPosition   float64 `json:"avg_position"`
	Visibility    float64 `json:"visibility"`
	KeywordsCount int     `json:"keywords_count"`
}

type ContentAnalysis struct {
	TotalCount int              `json:"total_count"`
	Rank       float64          `json:"rank"`
	TopDomains []map[string]any `json:"top_domains,omitempty"`
}

// GmbRecord returns the first listing of the GMB section, or nil when the
// business has no listing.
func (r *SEOReport) GmbRecord() *GmbProfileRecord {
	if r == nil || r.GmbProfile == nil || len(r.GmbProfile.Items) == 0 {
		return nil
	}
	return &r.GmbProfile.Items[0]
}

func (r *SEOReport) TopKeywords() []KeywordRecord {
	if r == nil || r.Keywords == nil {
		return nil
	}
	return r.Keywords.TopKeywords
}

func (r *SEOReport) Audits() map[string]Audit {
	if r == nil || r.WebsiteAnalysis == nil || r.WebsiteAnalysis.Pagespeed == nil {
		return nil
	}
	return r.WebsiteAnalysis.Pagespeed.Audits
}

func (r *SEOReport) BusinessDetailsScore() float64 {
	if r == nil || r.BusinessDetails == nil {
		return 0
	}
	return r.BusinessDetails.RankingScore
}

func (r *SEOReport) LocalRankingsScore() float64 {
	if r == nil || r.LocalRankings == nil {
		return 0
	}
	return r.LocalRankings.RankingScore
}

func (r *SEOReport) BacklinkQuality() float64 {
	if r == nil || r.Backlinks == nil {
		return 0
	}
	return r.Backlinks.QualityScore
}

func (r *SEOReport) BacklinkTotal() int {
	if r == nil || r.Backlinks == nil {
		return 0
	}
	return r.Backlinks.Total
}
