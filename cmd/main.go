package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Ismail26477/crm-main/internal/adapters/collab"
	"github.com/Ismail26477/crm-main/internal/adapters/http/api"
	"github.com/Ismail26477/crm-main/internal/adapters/http/site"
	"github.com/Ismail26477/crm-main/internal/adapters/http/swagger"
	app "github.com/Ismail26477/crm-main/internal/app"
	"github.com/Ismail26477/crm-main/internal/config"
	"github.com/Ismail26477/crm-main/internal/domain/scoring"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/pkg/logger"
	"github.com/Ismail26477/crm-main/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 15 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if cfg.LogFormat != "" && cfg.LogFormat != "text" {
		if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			return
		}
	}
	loggerInstance := logger.Get()

	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval()),
	)

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts, err := serviceOptions(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "invalid service configuration", logger.Error(err))
		return
	}
	client := collab.New(cfg.CollaboratorBaseURL,
		collab.WithTimeout(cfg.HTTPTimeout()),
		collab.WithRetry(cfg.RetryAttempts, cfg.RetryBase()),
		collab.WithLogger(loggerInstance.Named("collab")),
	)
	svc := app.New(client, opts...)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			loggerInstance.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, loggerInstance),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr), logger.String("collaborator", cfg.CollaboratorBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(shutdownCtx, "server stopped")
}

// serviceOptions maps the process configuration onto service options.
func serviceOptions(cfg *config.Config, l logger.Logger) ([]app.Option, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	period, ok := types.ParseGranularity(cfg.ActivityPeriod)
	if !ok {
		return nil, config.ErrInvalidConfig
	}
	return []app.Option{
		app.WithLogger(l.Named("dashboard")),
		app.WithLocation(loc),
		app.WithMonthlyMatchYear(cfg.MonthlyMatchYear),
		app.WithWindowDays(cfg.WindowDays),
		app.WithPeriod(period),
		app.WithAnalyticsRange(cfg.AnalyticsRangeDays),
		app.WithChartSize(app.ChartActivity, cfg.ActivityWidth, cfg.ActivityHeight),
		app.WithChartSize(app.ChartPipeline, cfg.PipelineWidth, cfg.PipelineHeight),
		app.WithQueueSize(cfg.TriggerQueueSize),
		app.WithFailurePolicy(cfg.FailurePolicy),
		app.WithEstimator(scoring.NewSyntheticEstimator(
			scoring.WithSeed(cfg.ResponseTimeSeed),
			scoring.WithRange(cfg.ResponseTimeFloorMin, cfg.ResponseTimeCeilingMin),
			scoring.WithPriorityCeilings(cfg.PriorityCeilings()),
		)),
		app.WithRealtimeInterval(cfg.RealtimeInterval()),
		app.WithReloadInterval(cfg.ReloadInterval()),
	}, nil
}

// newRouter mounts the API first so its middleware wraps every route.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, l logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	apiServer := api.NewServer(svc, svc,
		api.WithRefreshLimit(cfg.RefreshRatePerMinute, cfg.RefreshBurst),
		api.WithLogger(l.Named("http")),
	)
	apiServer.Register(ctx, r)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics pushes store and queue gauges from the service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if leads, ok := stats["leadsInStore"].(int); ok {
		metrics.UpdateLeadsInStore(leads)
	}
	if undated, ok := stats["undatedLeads"].(int); ok {
		metrics.UpdateUndatedLeads(undated)
	}
	if capacity, ok := stats["queueCapacity"].(int); ok && capacity > 0 {
		metrics.UpdateQueueCapacity(capacity)
		if queueLen, ok := stats["queueLength"].(int); ok {
			metrics.UpdateQueueUtilization(float64(queueLen) / float64(capacity))
		}
	}
}
