package report

import (
	"math"
	"strings"
)

// GmbCompleteness reports how much of a business listing is filled in.
type GmbCompleteness struct {
	Score     int      `json:"score"`
	Completed int      `json:"completed"`
	Total     int      `json:"total"`
	Missing   []string `json:"missing"`
}

type gmbCheck struct {
	label   string
	present func(*GmbProfileRecord) bool
}

// gmbChecklist is evaluated in order; Missing preserves this order.
var gmbChecklist = []gmbCheck{
	{"Business Name", func(g *GmbProfileRecord) bool { return notBlank(g.Title) }},
	{"Business Description", func(g *GmbProfileRecord) bool { return notBlank(g.Description) }},
	{"Primary Category", func(g *GmbProfileRecord) bool { return notBlank(g.Category) }},
	{"Address", func(g *GmbProfileRecord) bool { return notBlank(g.Address) }},
	{"Phone Number", func(g *GmbProfileRecord) bool { return notBlank(g.Phone) }},
	{"Website URL", func(g *GmbProfileRecord) bool { return notBlank(g.URL) }},
	{"Business Hours", hasBusinessHours},
	{"Photos", func(g *GmbProfileRecord) bool { return g.TotalPhotos != nil && *g.TotalPhotos > 0 }},
	{"Logo", func(g *GmbProfileRecord) bool { return notBlank(g.Logo) }},
	{"Claimed Listing", func(g *GmbProfileRecord) bool { return g.IsClaimed != nil && *g.IsClaimed }},
}

// GmbChecklistSize is the number of fields a complete listing fills in.
var GmbChecklistSize = len(gmbChecklist)

// ScoreGmbCompleteness evaluates a listing against the checklist. A nil
// listing is a business without a profile yet and scores zero with nothing
// reported missing.
func ScoreGmbCompleteness(g *GmbProfileRecord) GmbCompleteness {
	result := GmbCompleteness{Total: len(gmbChecklist), Missing: []string{}}
	if g == nil {
		return result
	}

	for _, check := range gmbChecklist {
		if check.present(g) {
			result.Completed++
		} else {
			result.Missing = append(result.Missing, check.label)
		}
	}
	result.Score = int(math.Round(float64(result.Completed) / float64(result.Total) * 100))
	return result
}

func hasBusinessHours(g *GmbProfileRecord) bool {
	if g.Attributes == nil {
		return false
	}
	return len(g.Attributes.AvailableAttributes["hours"]) > 0
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// RatingStars is the number of filled stars out of five for a listing's
// average rating.
func RatingStars(g *GmbProfileRecord) int {
	if g == nil || g.Rating == nil || g.Rating.Value == nil {
		return 0
	}
	stars := int(math.Round(*g.Rating.Value))
	return min(max(stars, 0), 5)
}

// Categories returns the primary category followed by any additional ones.
func Categories(g *GmbProfileRecord) []string {
	if g == nil || !notBlank(g.Category) {
		return []string{}
	}
	return append([]string{g.Category}, g.AdditionalCategories...)
}
