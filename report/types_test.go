package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `{
	"business_name": "plumber,drain cleaning",
	"location": "United States",
	"seo_score": 57,
	"gmb_profile": {"name": "plumber", "items": [{"title": "Joe's Plumbing", "is_claimed": true}], "ranking_score": 50},
	"local_rankings": {"position": 0, "rankings": [], "ranking_score": 33.3},
	"business_details": {"items": [], "ranking_score": 7.5},
	"website_analysis": {
		"onpage_score": 88.1,
		"domain_info": {"name": "joes.example"},
		"pagespeed": {
			"environment": {"networkUserAgent": "lighthouse"},
			"audits": {"speed-index": {"id": "speed-index", "score": 0.91, "displayValue": "1.2 s", "numericValue": 1200.5}}
		}
	},
	"backlinks": {"total": 100, "referring_domains": 50, "dofollow_links": 80, "nofollow_links": 20},
	"keywords": {"top_keywords": [
		{"keyword": "plumber", "location_code": 2840, "language_code": null, "search_volume": 9900,
		 "competition": "HIGH", "competition_index": 91, "cpc": 12.4,
		 "monthly_searches": [{"year": 2024, "month": 9, "search_volume": 10000}]},
		{"keyword": "drain cleaning", "search_volume": null, "competition": 0.33, "cpc": null}
	]},
	"competitors": {"items": [], "benchmark_score": 64, "rank": 2,
		"top_competitors": [{"domain": "rival.example", "score": 81, "avg_position": 2.5, "visibility": 0.4, "keywords_count": 9}]},
	"authority": 64
}`

func TestSEOReport_Decode(t *testing.T) {
	var r SEOReport
	require.NoError(t, json.Unmarshal([]byte(sampleReport), &r))

	assert.EqualValues(t, 57, r.SEOScore)
	assert.EqualValues(t, 64, r.Authority)
	require.NotNil(t, r.GmbRecord())
	assert.Equal(t, "Joe's Plumbing", r.GmbRecord().Title)

	kws := r.TopKeywords()
	require.Len(t, kws, 2)
	assert.Equal(t, "HIGH", kws[0].Competition.Level)
	require.NotNil(t, kws[0].CPC)
	assert.Equal(t, "12.4", kws[0].CPC.String())
	assert.Nil(t, kws[1].SearchVolume)
	assert.Nil(t, kws[1].CPC)
	require.NotNil(t, kws[1].Competition.Value)
	assert.InDelta(t, 0.33, *kws[1].Competition.Value, 1e-9)

	audit := r.Audits()["speed-index"]
	require.NotNil(t, audit.Score)
	assert.InDelta(t, 0.91, *audit.Score, 1e-9)
	assert.Equal(t, "1.2 s", audit.DisplayValue)

	assert.Equal(t, 100, r.BacklinkTotal())
	assert.Zero(t, r.BacklinkQuality())
	assert.InDelta(t, 7.5, r.BusinessDetailsScore(), 1e-9)
}

func TestSEOReport_MissingSectionsReadAsEmpty(t *testing.T) {
	var r SEOReport
	require.NoError(t, json.Unmarshal([]byte(`{"seo_score": 10}`), &r))

	assert.Nil(t, r.GmbRecord())
	assert.Nil(t, r.TopKeywords())
	assert.Nil(t, r.Audits())
	assert.Zero(t, r.LocalRankingsScore())
	assert.Zero(t, r.BacklinkTotal())

	var nilReport *SEOReport
	assert.Nil(t, nilReport.GmbRecord())
	assert.Zero(t, nilReport.BusinessDetailsScore())
}

func TestCompetition_JSON(t *testing.T) {
	tests := []struct {
		in        string
		wantLevel string
		wantValue *float64
	}{
		{`"medium"`, "MEDIUM", nil},
		{`42`, "", float64Ptr(42)},
		{`null`, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var c Competition
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.wantLevel, c.Level)
			assert.Equal(t, tt.wantValue, c.Value)
		})
	}

	var c Competition
	assert.Error(t, json.Unmarshal([]byte(`{"level": "HIGH"}`), &c))
}

func TestGmbProfileRecord_DecodeRating(t *testing.T) {
	var g GmbProfileRecord
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Joe's","rating":{"value":4.4,"votes_count":31}}`), &g))

	require.NotNil(t, g.Rating)
	require.NotNil(t, g.Rating.Value)
	assert.InDelta(t, 4.4, *g.Rating.Value, 1e-9)
	require.NotNil(t, g.Rating.VotesCount)
	assert.Equal(t, 31, *g.Rating.VotesCount)
	assert.Equal(t, RatingExcellent, RatingFor(90))
}
