package report

import "math"

// MetricStatus buckets a lighthouse score for display.
type MetricStatus string

const (
	StatusGood    MetricStatus = "good"
	StatusAverage MetricStatus = "average"
	StatusPoor    MetricStatus = "poor"
)

const notAvailable = "N/A"

// performanceMetrics lists the audits shown on the performance card.
var performanceMetrics = []struct {
	id    string
	label string
}{
	{"first-contentful-paint", "First Contentful Paint"},
	{"largest-contentful-paint", "Largest Contentful Paint"},
	{"first-meaningful-paint", "First Meaningful Paint"},
	{"speed-index", "Speed Index"},
}

type PerformanceMetric struct {
	ID           string       `json:"id"`
	Label        string       `json:"label"`
	DisplayValue string       `json:"display_value"`
	Score        float64      `json:"score"`
	Status       MetricStatus `json:"status"`
}

type PerformanceSummary struct {
	Metrics []PerformanceMetric `json:"metrics"`
	Score   int                 `json:"score"`
}

// StatusFor maps a 0-1 lighthouse score to a status.
func StatusFor(score float64) MetricStatus {
	switch {
	case score >= 0.9:
		return StatusGood
	case score >= 0.5:
		return StatusAverage
	default:
		return StatusPoor
	}
}

// SummarizePerformance reads the paint and speed audits. Missing audits
// count as a zero score and display N/A.
func SummarizePerformance(audits map[string]Audit) PerformanceSummary {
	summary := PerformanceSummary{Metrics: make([]PerformanceMetric, 0, len(performanceMetrics))}

	var total float64
	for _, pm := range performanceMetrics {
		metric := PerformanceMetric{ID: pm.id, Label: pm.label, DisplayValue: notAvailable}
		if audit, ok := audits[pm.id]; ok {
			if audit.Score != nil && !math.IsNaN(*audit.Score) {
				metric.Score = *audit.Score
			}
			if audit.DisplayValue != "" {
				metric.DisplayValue = audit.DisplayValue
			}
		}
		metric.Status = StatusFor(metric.Score)
		total += metric.Score
		summary.Metrics = append(summary.Metrics, metric)
	}

	summary.Score = int(math.Round(total / float64(len(performanceMetrics)) * 100))
	return summary
}
