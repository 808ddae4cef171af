package report

import "fmt"

var seoScoreMessages = map[Grade]string{
	GradeA: "Your website has excellent SEO. Keep up the good work!",
	GradeB: "Your website has good SEO, but there's room for improvement.",
	GradeC: "Your website needs SEO improvements to rank better.",
	GradeD: "Your website has serious SEO issues that need attention.",
	GradeF: "Your website has critical SEO problems that require immediate action.",
}

var authorityMessages = map[Grade]string{
	GradeA: "Very high authority. Your domain is highly trusted.",
	GradeB: "Good authority. Your domain has established credibility.",
	GradeC: "Moderate authority. Continue building your domain's reputation.",
	GradeD: "Low authority. Focus on building quality backlinks.",
	GradeF: "Very low authority. Your domain needs significant improvement.",
}

// SEOScoreMessage explains the overall SEO score band.
func SEOScoreMessage(score float64) string {
	return seoScoreMessages[GradeFor(score)]
}

// AuthorityMessage explains the domain authority band.
func AuthorityMessage(score float64) string {
	return authorityMessages[GradeFor(score)]
}

// ScoreCard is one of the five headline grades.
type ScoreCard struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
	Grade  Grade   `json:"grade"`
}

// ScoreCards builds the headline cards in display order.
func ScoreCards(r *SEOReport) []ScoreCard {
	var seo, authority float64
	if r != nil {
		seo, authority = r.SEOScore, r.Authority
	}

	cards := []ScoreCard{
		{Title: "Google Business Profile Score", Score: r.BusinessDetailsScore()},
		{Title: "Local Search Rankings", Score: r.LocalRankingsScore()},
		{Title: "Website SEO Score", Score: seo},
		{Title: "Backlink Strength", Score: r.BacklinkQuality()},
		{Title: "Competitor Benchmark Score", Score: authority},
	}
	for i := range cards {
		cards[i].Number = i + 1
		cards[i].Grade = GradeFor(cards[i].Score)
	}
	return cards
}

// Summary is the one-line audit headline.
func Summary(r *SEOReport) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf(
		"Overall score: %s/100. Your site has %d backlinks with a quality score of %s/100.",
		formatScore(r.SEOScore), r.BacklinkTotal(), formatScore(r.BacklinkQuality()),
	)
}

func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
