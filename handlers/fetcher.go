package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seo-optimizer/dashboard/client"
	"github.com/seo-optimizer/dashboard/dashboard"
	"github.com/seo-optimizer/dashboard/metrics"
	"github.com/seo-optimizer/dashboard/report"
)

// OutcomeRecorder persists fetch outcome counts. *stats.Storage satisfies it.
type OutcomeRecorder interface {
	IncrementOutcome(outcome string)
}

// InstrumentedFetcher records metrics, monthly counters and a log line for
// every fetch it forwards.
type InstrumentedFetcher struct {
	next     dashboard.ReportFetcher
	outcomes OutcomeRecorder
	log      *zap.Logger
}

func NewInstrumentedFetcher(next dashboard.ReportFetcher, outcomes OutcomeRecorder, log *zap.Logger) *InstrumentedFetcher {
	return &InstrumentedFetcher{next: next, outcomes: outcomes, log: log}
}

func (f *InstrumentedFetcher) FetchReport(ctx context.Context, domain, keywords string) (*report.SEOReport, error) {
	start := time.Now()
	r, err := f.next.FetchReport(ctx, domain, keywords)
	elapsed := time.Since(start)

	outcome := client.Outcome(err)
	metrics.ObserveFetch(outcome, elapsed)
	f.outcomes.IncrementOutcome(outcome)

	fields := []zap.Field{
		zap.String("domain", domain),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		f.log.Warn("SEO report fetch failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	f.log.Info("SEO report fetched", append(fields, zap.Float64("seo_score", r.SEOScore))...)
	return r, nil
}
