// Package dashboard holds the per-session report state and turns it into
// the view model the handlers render.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seo-optimizer/dashboard/report"
)

// State is the fetch state of a Controller.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

var (
	// ErrDomainRequired rejects a submission without a domain. The state is
	// left untouched.
	ErrDomainRequired = errors.New("domain is required")

	// ErrSuperseded is returned to a submission whose result arrived after a
	// newer submission started. Its result is discarded.
	ErrSuperseded = errors.New("submission superseded by a newer one")
)

// ReportFetcher is satisfied by *client.Client.
type ReportFetcher interface {
	FetchReport(ctx context.Context, domain, keywords string) (*report.SEOReport, error)
}

// Snapshot is a consistent copy of a Controller's state.
type Snapshot struct {
	State    State
	Domain   string
	Keywords string
	// Report is the latest successful report. It survives a failed
	// submission, so ReportDomain may differ from Domain.
	Report       *report.SEOReport
	ReportDomain string
	Err          error
	UpdatedAt    time.Time
}

// Controller drives Idle -> Loading -> Loaded|Failed for one session.
// A new submission may start in any state and supersedes earlier ones.
type Controller struct {
	fetcher ReportFetcher
	log     *zap.Logger
	now     func() time.Time

	mu           sync.RWMutex
	generation   uint64
	state        State
	domain       string
	keywords     string
	report       *report.SEOReport
	reportDomain string
	err          error
	updatedAt    time.Time
}

func NewController(fetcher ReportFetcher, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		fetcher: fetcher,
		log:     log,
		now:     time.Now,
		state:   StateIdle,
	}
}

// Submit fetches the report for domain and keywords and records the result.
// It blocks until the fetch completes. The returned error is the fetch error,
// ErrDomainRequired, or ErrSuperseded.
func (c *Controller) Submit(ctx context.Context, domain, keywords string) error {
	domain = strings.TrimSpace(domain)
	keywords = strings.TrimSpace(keywords)
	if domain == "" {
		return ErrDomainRequired
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = StateLoading
	c.domain = domain
	c.keywords = keywords
	c.err = nil
	c.updatedAt = c.now()
	c.mu.Unlock()

	r, err := c.fetcher.FetchReport(ctx, domain, keywords)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug("Discarding superseded report result",
			zap.String("domain", domain),
			zap.Uint64("generation", gen),
			zap.Uint64("latest_generation", c.generation),
		)
		return ErrSuperseded
	}

	c.updatedAt = c.now()
	if err != nil {
		c.state = StateFailed
		c.err = err
		return err
	}

	c.state = StateLoaded
	c.report = r
	c.reportDomain = domain
	c.err = nil
	return nil
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		State:        c.state,
		Domain:       c.domain,
		Keywords:     c.keywords,
		Report:       c.report,
		ReportDomain: c.reportDomain,
		Err:          c.err,
		UpdatedAt:    c.updatedAt,
	}
}
