// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	service "github.com/Ismail26477/crm-main/internal/app"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the orchestrator.
type Dependencies interface {
	// Enqueue pushes a trigger to the dashboard loop.
	Enqueue(ctx context.Context, t model.Trigger) (service.EnqueueStatus, error)

	// Read operations expose the last published dashboard.
	Snapshot() types.Snapshot
	Live() types.Live
	Legend() []types.LegendEntry
	Chart(chart string) ([]byte, error)
	RenderChart(ctx context.Context, chart string, size service.Size, period types.Granularity) ([]byte, error)
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *DashboardHandler
	chartsHandler    *ChartsHandler
	triggersHandler  *TriggersHandler

	refreshLimiter *rate.Limiter
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: NewDashboardHandler(deps),
		chartsHandler:    NewChartsHandler(deps),
		refreshLimiter:   rate.NewLimiter(rate.Limit(6.0/60.0), 2),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	s.triggersHandler = NewTriggersHandler(deps, s.refreshLimiter)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleSnapshot, "dashboard"))
		r.Get("/dashboard/live", MetricsMiddleware(s.dashboardHandler.HandleLive, "dashboard_live"))
		r.Post("/dashboard/refresh", MetricsMiddleware(s.triggersHandler.HandleRefresh, "refresh"))
		r.Put("/dashboard/window", MetricsMiddleware(s.triggersHandler.HandleWindow, "window"))
		r.Put("/dashboard/period", MetricsMiddleware(s.triggersHandler.HandlePeriod, "period"))

		r.Get("/charts/activity.png", MetricsMiddleware(s.chartsHandler.chart(service.ChartActivity), "chart_activity"))
		r.Get("/charts/pipeline.png", MetricsMiddleware(s.chartsHandler.chart(service.ChartPipeline), "chart_pipeline"))
		r.Get("/charts/pipeline/legend", MetricsMiddleware(s.chartsHandler.HandleLegend, "chart_legend"))
		r.Put("/charts/{chart}/size", MetricsMiddleware(s.triggersHandler.HandleResize, "chart_size"))
	})
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEnqueueResult maps an orchestrator enqueue outcome to a response.
func writeEnqueueResult(w http.ResponseWriter, op string, status service.EnqueueStatus, err error) {
	switch {
	case err == nil && status == service.Coalesced:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrUnknownChart):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrInvalidTrigger):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
