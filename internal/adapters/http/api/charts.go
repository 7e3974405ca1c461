package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	service "github.com/Ismail26477/crm-main/internal/app"
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// maxChartSide bounds ad hoc render and resize requests.
const maxChartSide = 4096

// ChartsHandler serves rendered chart images and the pipeline legend.
type ChartsHandler struct {
	deps Dependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

// chart handles GET /api/v1/charts/{name}.png. Without query parameters the
// last rendered image is returned; width, height or period render ad hoc.
func (h *ChartsHandler) chart(name string) http.HandlerFunc {
	op := "api.chart_" + name
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		size, err := parseSize(q.Get("width"), q.Get("height"), false)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		var period types.Granularity
		if v := q.Get("period"); v != "" {
			g, ok := types.ParseGranularity(v)
			if !ok {
				writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("period %q", v)))
				return
			}
			period = g
		}

		var png []byte
		if !size.Valid() && period == "" {
			png, err = h.deps.Chart(name)
		}
		if err == nil && png == nil {
			png, err = h.deps.RenderChart(r.Context(), name, size, period)
		}
		if err != nil {
			if errors.Is(err, service.ErrUnknownChart) {
				writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

// HandleLegend handles GET /api/v1/charts/pipeline/legend requests.
func (h *ChartsHandler) HandleLegend(w http.ResponseWriter, _ *http.Request) {
	legend := h.deps.Legend()
	if legend == nil {
		legend = []types.LegendEntry{}
	}
	writeJSON(w, http.StatusOK, legend)
}

// parseSize reads width and height. Both empty yields the zero Size unless
// required; otherwise both must be integers in 1..maxChartSide.
func parseSize(width, height string, required bool) (service.Size, error) {
	if width == "" && height == "" && !required {
		return service.Size{}, nil
	}
	wv, err := strconv.Atoi(width)
	if err != nil {
		return service.Size{}, fmt.Errorf("width %q", width)
	}
	hv, err := strconv.Atoi(height)
	if err != nil {
		return service.Size{}, fmt.Errorf("height %q", height)
	}
	if wv < 1 || wv > maxChartSide || hv < 1 || hv > maxChartSide {
		return service.Size{}, fmt.Errorf("size %dx%d out of range 1..%d", wv, hv, maxChartSide)
	}
	return service.Size{Width: wv, Height: hv}, nil
}
