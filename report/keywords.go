package report

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Trend is the direction of recent search interest.
type Trend int

const (
	TrendFalling Trend = -1
	TrendStable  Trend = 0
	TrendRising  Trend = 1
)

func (t Trend) String() string {
	switch {
	case t > 0:
		return "Rising"
	case t < 0:
		return "Falling"
	default:
		return "Stable"
	}
}

// trendWindow is the number of months compared on each side.
const trendWindow = 3

var competitionDifficulty = map[string]float64{
	"HIGH":   80,
	"MEDIUM": 50,
	"LOW":    20,
}

// KeywordMetrics is the display form of a KeywordRecord. Position stays nil
// until the backend supplies ranking positions.
type KeywordMetrics struct {
	Keyword    string          `json:"keyword"`
	Volume     int64           `json:"volume"`
	Position   *int            `json:"position"`
	Difficulty float64         `json:"difficulty"`
	Trend      Trend           `json:"trend"`
	CPC        decimal.Decimal `json:"cpc"`
}

// TransformKeyword derives the display metrics of a single keyword.
func TransformKeyword(k KeywordRecord) KeywordMetrics {
	m := KeywordMetrics{
		Keyword:    k.Keyword,
		Difficulty: Difficulty(k),
		Trend:      TrendOf(k.MonthlySearches),
		CPC:        decimal.Zero,
	}
	if k.SearchVolume != nil {
		m.Volume = *k.SearchVolume
	}
	if k.CPC != nil {
		m.CPC = *k.CPC
	}
	return m
}

// TransformKeywords transforms every record and orders the result by search
// volume, highest first. Equal volumes keep their input order.
func TransformKeywords(records []KeywordRecord) []KeywordMetrics {
	out := make([]KeywordMetrics, 0, len(records))
	for _, k := range records {
		out = append(out, TransformKeyword(k))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume > out[j].Volume
	})
	return out
}

// Difficulty prefers the numeric competition index and falls back to the
// competition level. A bare numeric competition value is not an index and
// yields 0.
func Difficulty(k KeywordRecord) float64 {
	if k.CompetitionIndex != nil {
		return *k.CompetitionIndex
	}
	return competitionDifficulty[strings.ToUpper(k.Competition.Level)]
}

// TrendOf compares the three most recent months with the three before them.
// Fewer than six months of history is reported as stable.
func TrendOf(months []MonthlySearch) Trend {
	if len(months) < 2*trendWindow {
		return TrendStable
	}

	recent := sumVolumes(months[:trendWindow])
	previous := sumVolumes(months[trendWindow : 2*trendWindow])
	switch {
	case recent > previous:
		return TrendRising
	case recent < previous:
		return TrendFalling
	default:
		return TrendStable
	}
}

func sumVolumes(months []MonthlySearch) int64 {
	var total int64
	for _, m := range months {
		if m.SearchVolume != nil {
			total += *m.SearchVolume
		}
	}
	return total
}

// KeywordSummary backs the keyword analysis section.
type KeywordSummary struct {
	Ranking       float64          `json:"ranking"`
	Tracked       int              `json:"tracked"`
	AverageVolume int64            `json:"average_volume"`
	Top           []KeywordMetrics `json:"top"`
	Rows          []KeywordMetrics `json:"rows"`
}

// chartSize is how many keywords the volume chart shows.
const chartSize = 5

func SummarizeKeywords(section *KeywordsSection) KeywordSummary {
	if section == nil {
		return KeywordSummary{Top: []KeywordMetrics{}, Rows: []KeywordMetrics{}}
	}

	rows := TransformKeywords(section.TopKeywords)
	summary := KeywordSummary{
		Tracked: len(section.TopKeywords),
		Rows:    rows,
		Top:     rows[:min(chartSize, len(rows))],
	}
	if section.Ranking != nil {
		summary.Ranking = *section.Ranking
	}
	if len(rows) > 0 {
		var total int64
		for _, r := range rows {
			total += r.Volume
		}
		summary.AverageVolume = int64(math.Round(float64(total) / float64(len(rows))))
	}
	return summary
}

// Opportunity is an on-page SEO item suggested from the tracked keywords.
type Opportunity struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Opportunities lists the first n keywords in backend order.
func Opportunities(records []KeywordRecord, n int) []Opportunity {
	n = max(n, 0)
	out := make([]Opportunity, 0, min(n, len(records)))
	for i, k := range records {
		if i >= n {
			break
		}
		title := strings.TrimSpace(k.Keyword)
		if title == "" {
			title = "Keyword " + strconv.Itoa(i+1)
		}
		out = append(out, Opportunity{ID: i + 1, Title: title})
	}
	return out
}
