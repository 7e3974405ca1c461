package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/pkg/metrics"
)

const maxWindowDays = 365

// TriggersHandler turns state-changing requests into loop triggers.
type TriggersHandler struct {
	deps    Dependencies
	limiter *rate.Limiter
}

// NewTriggersHandler creates a new triggers handler. A nil limiter disables
// the manual refresh limit.
func NewTriggersHandler(deps Dependencies, limiter *rate.Limiter) *TriggersHandler {
	return &TriggersHandler{deps: deps, limiter: limiter}
}

// HandleRefresh handles POST /api/v1/dashboard/refresh requests.
func (h *TriggersHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	if h.limiter != nil && !h.limiter.Allow() {
		metrics.RecordRefreshRateLimited()
		writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
		return
	}
	status, err := h.deps.Enqueue(r.Context(), model.Trigger{Kind: model.TriggerReload, Source: "api:" + RID(r.Context())})
	writeEnqueueResult(w, op, status, err)
}

// HandleWindow handles PUT /api/v1/dashboard/window?days=N requests.
func (h *TriggersHandler) HandleWindow(w http.ResponseWriter, r *http.Request) {
	const op = "api.window"
	raw := r.URL.Query().Get("days")
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxWindowDays {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("days must be an integer in 1..%d, got %q", maxWindowDays, raw)))
		return
	}
	status, err := h.deps.Enqueue(r.Context(), model.Trigger{Kind: model.TriggerSetWindow, Days: days, Source: "api"})
	writeEnqueueResult(w, op, status, err)
}

// HandlePeriod handles PUT /api/v1/dashboard/period?value=daily|weekly|monthly requests.
func (h *TriggersHandler) HandlePeriod(w http.ResponseWriter, r *http.Request) {
	const op = "api.period"
	raw := r.URL.Query().Get("value")
	g, ok := types.ParseGranularity(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("value must be daily, weekly or monthly, got %q", raw)))
		return
	}
	status, err := h.deps.Enqueue(r.Context(), model.Trigger{Kind: model.TriggerSetPeriod, Period: string(g), Source: "api"})
	writeEnqueueResult(w, op, status, err)
}

// HandleResize handles PUT /api/v1/charts/{chart}/size?width=&height= requests.
func (h *TriggersHandler) HandleResize(w http.ResponseWriter, r *http.Request) {
	const op = "api.resize"
	q := r.URL.Query()
	size, err := parseSize(q.Get("width"), q.Get("height"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	status, err := h.deps.Enqueue(r.Context(), model.Trigger{
		Kind:   model.TriggerResize,
		Chart:  chi.URLParam(r, "chart"),
		Width:  size.Width,
		Height: size.Height,
		Source: "api",
	})
	writeEnqueueResult(w, op, status, err)
}
