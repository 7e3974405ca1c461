package api

import (
	"net/http"
)

// DashboardHandler serves the published dashboard snapshot.
type DashboardHandler struct {
	deps Dependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// HandleSnapshot handles GET /api/v1/dashboard requests.
func (h *DashboardHandler) HandleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Snapshot())
}

// HandleLive handles GET /api/v1/dashboard/live requests.
func (h *DashboardHandler) HandleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Live())
}
