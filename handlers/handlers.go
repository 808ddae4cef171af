// Package handlers serves the dashboard page and its JSON API.
package handlers

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seo-optimizer/dashboard/client"
	"github.com/seo-optimizer/dashboard/dashboard"
	"github.com/seo-optimizer/dashboard/logging"
	"github.com/seo-optimizer/dashboard/metrics"
	"github.com/seo-optimizer/dashboard/middleware"
	"github.com/seo-optimizer/dashboard/stats"
)

// SessionCookie holds the id of the caller's dashboard session.
const SessionCookie = "seo_session"

//go:embed templates/*.html
var templateFS embed.FS

// Handler wires dashboard sessions to HTTP.
type Handler struct {
	sessions   *dashboard.Sessions
	statistics *logging.Statistics
	storage    *stats.Storage
	log        *zap.Logger
	cookieAge  int
}

// New creates the handler set. cookieAge is the session cookie lifetime in
// seconds.
func New(sessions *dashboard.Sessions, statistics *logging.Statistics, storage *stats.Storage, cookieAge int, log *zap.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		statistics: statistics,
		storage:    storage,
		log:        log,
		cookieAge:  cookieAge,
	}
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"lower": func(v any) string { return strings.ToLower(fmt.Sprint(v)) },
		"score": formatScore,
		"stars": func(filled int) []bool {
			out := make([]bool, 5)
			for i := range out {
				out[i] = i < filled
			}
			return out
		},
	}).ParseFS(templateFS, "templates/*.html"))
}

// formatScore drops the fraction from whole scores.
func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())

	r.GET("/", h.page)
	r.POST("/", h.submitForm)

	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/report", h.getReport)
		api.POST("/report", h.postReport)
		api.GET("/statistics", h.getStatistics)
		api.GET("/statistics/monthly", h.getMonthlyStatistics)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// controller returns the caller's session controller, issuing a new session
// cookie when the caller has none.
func (h *Handler) controller(c *gin.Context) *dashboard.Controller {
	id, err := c.Cookie(SessionCookie)
	if err != nil || !validSessionID(id) {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, h.cookieAge, "/", "", c.Request.TLS != nil, true)
	}

	ctrl := h.sessions.Get(id)
	metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	return ctrl
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// submit runs a submission to completion. The fetch is detached from the
// request so a closed browser tab does not fail the session's report.
func (h *Handler) submit(c *gin.Context, ctrl *dashboard.Controller, domain, keywords string) error {
	err := ctrl.Submit(context.WithoutCancel(c.Request.Context()), domain, keywords)

	switch {
	case err == nil:
		middleware.MarkReport(c, domain, false)
	case errors.Is(err, dashboard.ErrDomainRequired):
		metrics.ObserveFetch(client.OutcomeInvalidRequest, 0)
		h.storage.IncrementOutcome(client.OutcomeInvalidRequest)
	case errors.Is(err, dashboard.ErrSuperseded):
		metrics.SupersededTotal.Inc()
		h.log.Debug("Submission superseded", zap.String("domain", domain))
	default:
		middleware.MarkReport(c, domain, true)
	}
	return err
}

// statusFor maps a submission error to the response status.
func statusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, dashboard.ErrSuperseded):
		return http.StatusOK
	case errors.Is(err, dashboard.ErrDomainRequired):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

type pageData struct {
	View       dashboard.View
	Validation string
}

func (h *Handler) page(c *gin.Context) {
	view := dashboard.BuildView(h.controller(c).Snapshot())
	c.HTML(http.StatusOK, "dashboard.html", pageData{View: view})
}

func (h *Handler) submitForm(c *gin.Context) {
	ctrl := h.controller(c)
	domain := c.PostForm("domain")
	keywords := c.PostForm("keywords")

	err := h.submit(c, ctrl, domain, keywords)

	data := pageData{View: dashboard.BuildView(ctrl.Snapshot())}
	if errors.Is(err, dashboard.ErrDomainRequired) {
		data.Validation = "Please enter a domain to analyze."
		data.View.Keywords = strings.TrimSpace(keywords)
	}
	c.HTML(statusFor(err), "dashboard.html", data)
}

func (h *Handler) getReport(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.BuildView(h.controller(c).Snapshot()))
}

type reportRequest struct {
	Domain   string `json:"domain"`
	Keywords string `json:"keywords"`
}

func (h *Handler) postReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctrl := h.controller(c)
	err := h.submit(c, ctrl, req.Domain, req.Keywords)
	if errors.Is(err, dashboard.ErrDomainRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Domain is required"})
		return
	}
	c.JSON(statusFor(err), dashboard.BuildView(ctrl.Snapshot()))
}

func (h *Handler) getStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.statistics.GetStatistics())
}

type monthlyEntry struct {
	Month string `json:"month"`
	stats.MonthlyStats
	Total int `json:"total"`
}

func (h *Handler) getMonthlyStatistics(c *gin.Context) {
	months := h.storage.GetAllMonths()
	entries := make([]monthlyEntry, 0, len(months))
	for _, month := range months {
		ms, ok := h.storage.GetMonthlyStats(month)
		if !ok {
			continue
		}
		entries = append(entries, monthlyEntry{Month: month, MonthlyStats: ms, Total: ms.Total()})
	}
	c.JSON(http.StatusOK, gin.H{"months": entries})
}
