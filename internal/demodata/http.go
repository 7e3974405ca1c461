package demodata

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Ismail26477/crm-main/internal/adapters/collab"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/pkg/logger"
)

// Server serves a Book over the collaborator endpoints.
type Server struct {
	book   *Book
	logger logger.Logger
}

// NewServer returns a server for book.
func NewServer(book *Book) *Server {
	return &Server{book: book, logger: logger.Get().Named("leadgen")}
}

// Register attaches the collaborator routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Use(middleware.Recoverer)

	r.Get(collab.PathLeads, s.handleLeads)
	r.Get(collab.PathAnalytics, s.handleAnalytics)
	r.Get(collab.PathScores, func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, s.book.Scores()) })
	r.Get(collab.PathTeam, func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, s.book.Team()) })
	r.Get(collab.PathRealtime, func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, s.book.Realtime()) })
}

type leadsResponse struct {
	Leads []model.Lead `json:"leads"`
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("upcomingFollowups") == "true" {
		writeJSON(w, leadsResponse{Leads: nonNil(s.book.Upcoming())})
		return
	}
	writeJSON(w, leadsResponse{Leads: nonNil(s.book.Leads)})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.Parse(time.RFC3339Nano, q.Get("fromDate"))
	if err != nil {
		http.Error(w, "invalid fromDate", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339Nano, q.Get("toDate"))
	if err != nil {
		http.Error(w, "invalid toDate", http.StatusBadRequest)
		return
	}
	s.logger.Debug(r.Context(), "analytics requested", logger.Any("from", from), logger.Any("to", to))
	writeJSON(w, s.book.Analytics(from, to))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(leads []model.Lead) []model.Lead {
	if leads == nil {
		return []model.Lead{}
	}
	return leads
}
