package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seo-optimizer/dashboard/client"
	"github.com/seo-optimizer/dashboard/config"
	"github.com/seo-optimizer/dashboard/dashboard"
	"github.com/seo-optimizer/dashboard/handlers"
	"github.com/seo-optimizer/dashboard/logging"
	"github.com/seo-optimizer/dashboard/metrics"
	"github.com/seo-optimizer/dashboard/middleware"
	"github.com/seo-optimizer/dashboard/stats"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	cleanupInterval   = 24 * time.Hour
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seo dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)
	metrics.Register()

	apiClient, err := client.New(cfg.APIBaseURL)
	if err != nil {
		return err
	}

	storage, err := stats.NewStorage(cfg.DataDir, log)
	if err != nil {
		return err
	}
	defer storage.Shutdown()

	statistics := logging.NewStatistics(cfg.StatisticsPath(), cfg.DevMode)
	if err := statistics.Load(); err != nil {
		log.Warn("Could not load existing statistics", zap.Error(err))
	}
	defer func() {
		if err := statistics.Save(); err != nil {
			log.Error("Failed to save statistics", zap.Error(err))
		}
	}()

	fetcher := handlers.NewInstrumentedFetcher(apiClient, storage, log)
	sessions := dashboard.NewSessions(func() *dashboard.Controller {
		return dashboard.NewController(fetcher, log)
	}, cfg.SessionTTL, cfg.MaxSessions, log)
	defer sessions.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.ErrorHandler(log),
		middleware.CORS(),
		rateLimiter.RateLimit(),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.Stats(statistics, log),
	)

	h := handlers.New(sessions, statistics, storage, int(cfg.SessionTTL.Seconds()), log)
	h.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupStats(ctx, storage, cfg.StatsRetainMonths)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("api_base_url", cfg.APIBaseURL),
			zap.String("gin_mode", cfg.GinMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// cleanupStats prunes old monthly counters once at startup and then daily.
func cleanupStats(ctx context.Context, storage *stats.Storage, retainMonths int) {
	storage.Cleanup(retainMonths)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			storage.Cleanup(retainMonths)
		case <-ctx.Done():
			return
		}
	}
}
