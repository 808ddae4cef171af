package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seo-optimizer/dashboard/client"
	"github.com/seo-optimizer/dashboard/dashboard"
	"github.com/seo-optimizer/dashboard/logging"
	"github.com/seo-optimizer/dashboard/middleware"
	"github.com/seo-optimizer/dashboard/stats"
)

const backendReport = `{
	"domain": "%DOMAIN%",
	"business_name": "Joe's Plumbing",
	"seo_score": 72,
	"authority": 35,
	"gmb_profile": {"items": [{
		"title": "Joe's Plumbing",
		"category": "Plumber",
		"address": "1 Main St",
		"phone": "555-0100",
		"rating": {"value": 4.4, "votes_count": 31}
	}]},
	"business_details": {"items": [], "ranking_score": 80},
	"local_rankings": {"rankings": [], "ranking_score": 40},
	"website_analysis": {"pagespeed": {"audits": {
		"first-contentful-paint": {"score": 0.95, "displayValue": "0.8 s"}
	}}},
	"keywords": {"ranking": 12, "top_keywords": [
		{"keyword": "plumber", "search_volume": 100, "competition": "HIGH", "cpc": 4.5},
		{"keyword": "drain repair", "search_volume": 300, "competition_index": 35}
	]},
	"backlinks": {"total": 1200, "quality_score": 61},
	"competitors": {"benchmark_score": 50, "rank": 3, "top_competitors": [
		{"domain": "rival.example", "score": 82, "avg_position": 2.5}
	]}
}`

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	storage *stats.Storage
	stats   *logging.Statistics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		domain := r.URL.Query().Get("domain")
		switch domain {
		case "broken.com":
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
		case "garbage.com":
			_, _ = w.Write([]byte("<html>not json</html>"))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(strings.ReplaceAll(backendReport, "%DOMAIN%", domain)))
		}
	}))
	t.Cleanup(backend.Close)

	apiClient, err := client.New(backend.URL + "/api")
	require.NoError(t, err)

	log := zap.NewNop()
	dir := t.TempDir()
	storage, err := stats.NewStorage(dir, log)
	require.NoError(t, err)
	t.Cleanup(storage.Shutdown)

	statistics := logging.NewStatistics(filepath.Join(dir, "statistics.json"), true)
	fetcher := NewInstrumentedFetcher(apiClient, storage, log)
	sessions := dashboard.NewSessions(func() *dashboard.Controller {
		return dashboard.NewController(fetcher, log)
	}, time.Hour, 100, log)
	t.Cleanup(sessions.Close)

	r := gin.New()
	r.Use(middleware.Stats(statistics, log))
	New(sessions, statistics, storage, 3600, log).Register(r)

	return &testServer{router: r, storage: storage, stats: statistics}
}

func (s *testServer) do(t *testing.T, req *http.Request, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postJSON(t *testing.T, body string, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req, session)
}

func (s *testServer) postForm(t *testing.T, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(t, req, session)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatalf("response did not set %s", SessionCookie)
	return nil
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) dashboard.View {
	t.Helper()
	var v dashboard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func parseHTML(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPage_NewSessionIsEmpty(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	doc := parseHTML(t, w)
	assert.Equal(t, 1, doc.Find("#empty").Length())
	assert.Equal(t, 0, doc.Find("#overview").Length())
	assert.Equal(t, 0, doc.Find("#error-banner").Length())
}

func TestSubmitForm_RendersReport(t *testing.T) {
	s := newTestServer(t)
	w := s.postForm(t, url.Values{"domain": {"joes.example"}, "keywords": {"plumber, drain repair"}}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	doc := parseHTML(t, w)

	assert.Contains(t, doc.Find("#overview h2").Text(), "Audit Result For joes.example")
	assert.Equal(t, "B", strings.TrimSpace(doc.Find("#seo-grade").Text()))
	assert.Equal(t, "Good", strings.TrimSpace(doc.Find("#seo-rating").Text()))
	assert.Equal(t, "D", strings.TrimSpace(doc.Find("#authority-grade").Text()))
	assert.Equal(t, 5, doc.Find(".score-card").Length())
	assert.Contains(t, doc.Find("#summary").Text(), "1200 backlinks")

	var missing []string
	doc.Find(".missing-item").Each(func(_ int, sel *goquery.Selection) {
		missing = append(missing, sel.Text())
	})
	assert.Equal(t, []string{"Business Description", "Website URL", "Business Hours", "Photos", "Logo", "Claimed Listing"}, missing)
	assert.Contains(t, doc.Find("#gmb-completeness").Text(), "40%")
	assert.Equal(t, 4, doc.Find(".star-filled").Length())

	rows := doc.Find(".keyword-row")
	require.Equal(t, 2, rows.Length())
	assert.Contains(t, rows.First().Text(), "drain repair")
	assert.Equal(t, "2 Opportunities", doc.Find("#opportunities .subtitle").Text())
	assert.Equal(t, 4, doc.Find("#performance .metric").Length())
	assert.Equal(t, 1, doc.Find(".competitor-row").Length())
	assert.Equal(t, 0, doc.Find("#referring-domains").Length())

	assert.Equal(t, "joes.example", doc.Find(`input[name="domain"]`).AttrOr("value", ""))
}

func TestSubmitForm_BlankDomain(t *testing.T) {
	s := newTestServer(t)
	w := s.postForm(t, url.Values{"domain": {"   "}, "keywords": {"seo"}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	doc := parseHTML(t, w)
	assert.Equal(t, "Please enter a domain to analyze.", doc.Find("#validation").Text())
	assert.Equal(t, 0, doc.Find("#overview").Length())
	assert.Equal(t, 1, s.storage.GetCurrentStats().InvalidRequests)
}

func TestSubmitForm_FailureShowsGenericError(t *testing.T) {
	s := newTestServer(t)
	w := s.postForm(t, url.Values{"domain": {"broken.com"}}, nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	doc := parseHTML(t, w)
	assert.Equal(t, dashboard.ErrorMessage, doc.Find("#error-banner").Text())
	assert.NotContains(t, w.Body.String(), "upstream exploded")
}

func TestPostReport_JSON(t *testing.T) {
	s := newTestServer(t)
	w := s.postJSON(t, `{"domain":"joes.example","keywords":"plumber"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, dashboard.StateLoaded, v.State)
	assert.True(t, v.HasData)
	assert.False(t, v.Loading)
	assert.Empty(t, v.Error)
	require.NotNil(t, v.Report)
	assert.Equal(t, "joes.example", v.Report.Domain)
	assert.EqualValues(t, "B", v.Report.Grade)
	assert.Equal(t, 40, v.Report.Gmb.Completeness.Score)

	assert.Equal(t, 1, s.storage.GetCurrentStats().Success)
	assert.Equal(t, 1, s.stats.GetStatistics()["totalRequests"])
}

func TestPostReport_BlankDomain(t *testing.T) {
	s := newTestServer(t)
	w := s.postJSON(t, `{"domain":"  ","keywords":"seo"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Domain is required"}`, w.Body.String())

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/report", nil), sessionCookie(t, w))
	assert.Equal(t, dashboard.StateIdle, decodeView(t, w).State)
}

func TestPostReport_InvalidBody(t *testing.T) {
	s := newTestServer(t)
	w := s.postJSON(t, `{"domain":`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestPostReport_FailureKeepsStaleReport(t *testing.T) {
	s := newTestServer(t)
	w := s.postJSON(t, `{"domain":"joes.example"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	session := sessionCookie(t, w)

	w = s.postJSON(t, `{"domain":"broken.com"}`, session)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, dashboard.StateFailed, v.State)
	assert.Equal(t, dashboard.ErrorMessage, v.Error)
	assert.Equal(t, "broken.com", v.Domain)
	assert.True(t, v.HasData)
	require.NotNil(t, v.Report)
	assert.Equal(t, "joes.example", v.Report.Domain)

	current := s.storage.GetCurrentStats()
	assert.Equal(t, 1, current.Success)
	assert.Equal(t, 1, current.APIErrors)
}

func TestPostReport_MalformedBackendResponse(t *testing.T) {
	s := newTestServer(t)
	w := s.postJSON(t, `{"domain":"garbage.com"}`, nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, dashboard.ErrorMessage, decodeView(t, w).Error)
	assert.Equal(t, 1, s.storage.GetCurrentStats().MalformedResponses)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	first := sessionCookie(t, s.postJSON(t, `{"domain":"joes.example"}`, nil))
	second := sessionCookie(t, s.do(t, httptest.NewRequest(http.MethodGet, "/api/report", nil), nil))

	assert.NotEqual(t, first.Value, second.Value)

	v := decodeView(t, s.do(t, httptest.NewRequest(http.MethodGet, "/api/report", nil), first))
	assert.True(t, v.HasData)

	v = decodeView(t, s.do(t, httptest.NewRequest(http.MethodGet, "/api/report", nil), second))
	assert.False(t, v.HasData)
	assert.Equal(t, dashboard.StateIdle, v.State)
}

func TestInvalidSessionCookieIsReplaced(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/report", nil), &http.Cookie{Name: SessionCookie, Value: "not-a-uuid"})

	assert.NotEqual(t, "not-a-uuid", sessionCookie(t, w).Value)
}

func TestMonthlyStatistics(t *testing.T) {
	s := newTestServer(t)
	s.postJSON(t, `{"domain":"joes.example"}`, nil)
	s.postJSON(t, `{"domain":"broken.com"}`, nil)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/statistics/monthly", nil), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Months []struct {
			Month     string `json:"month"`
			Success   int    `json:"success"`
			APIErrors int    `json:"api_errors"`
			Total     int    `json:"total"`
		} `json:"months"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Months, 1)
	assert.Equal(t, time.Now().Format("2006-01"), body.Months[0].Month)
	assert.Equal(t, 1, body.Months[0].Success)
	assert.Equal(t, 1, body.Months[0].APIErrors)
	assert.Equal(t, 2, body.Months[0].Total)
}

func TestStatistics(t *testing.T) {
	s := newTestServer(t)
	s.postJSON(t, `{"domain":"https://www.joes.example/"}`, nil)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/statistics", nil), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["totalRequests"])
	assert.Contains(t, w.Body.String(), `"domain":"joes.example"`)
}
