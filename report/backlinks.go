package report

type BacklinkSummary struct {
	Total            int     `json:"total"`
	QualityScore     float64 `json:"quality_score"`
	QualityGrade     Grade   `json:"quality_grade"`
	ReferringDomains *int    `json:"referring_domains"`
	DofollowLinks    *int    `json:"dofollow_links,omitempty"`
	NofollowLinks    *int    `json:"nofollow_links,omitempty"`
}

// SummarizeBacklinks only reports referring domains when the backend
// measured them.
func SummarizeBacklinks(b *BacklinksSection) BacklinkSummary {
	if b == nil {
		return BacklinkSummary{QualityGrade: GradeFor(0)}
	}
	return BacklinkSummary{
		Total:            b.Total,
		QualityScore:     b.QualityScore,
		QualityGrade:     GradeFor(b.QualityScore),
		ReferringDomains: b.ReferringDomains,
		DofollowLinks:    b.DofollowLinks,
		NofollowLinks:    b.NofollowLinks,
	}
}

type CompetitorRow struct {
	Domain      string  `json:"domain"`
	Score       float64 `json:"score"`
	AvgPosition float64 `json:"avg_position"`
	Quality     Rating  `json:"quality"`
}

type CompetitorSummary struct {
	BenchmarkScore float64         `json:"benchmark_score"`
	Rank           int             `json:"rank"`
	Top            []CompetitorRow `json:"top"`
}

func SummarizeCompetitors(c *CompetitorsSection) CompetitorSummary {
	summary := CompetitorSummary{Top: []CompetitorRow{}}
	if c == nil {
		return summary
	}

	summary.BenchmarkScore = c.BenchmarkScore
	summary.Rank = c.Rank
	for _, tc := range c.TopCompetitors {
		summary.Top = append(summary.Top, CompetitorRow{
			Domain:      tc.Domain,
			Score:       tc.Score,
			AvgPosition: tc.AvgPosition,
			Quality:     QualityLabel(tc.Score),
		})
	}
	return summary
}
