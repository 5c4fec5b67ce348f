package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/bmcnally/sasadiff/internal/config"
	"github.com/bmcnally/sasadiff/internal/engine"
	"github.com/bmcnally/sasadiff/internal/notify"
	"github.com/bmcnally/sasadiff/internal/report"
	"github.com/bmcnally/sasadiff/internal/store"
	"github.com/bmcnally/sasadiff/internal/tree"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for sasadiff.
type Server struct {
	router   chi.Router
	eng      engine.Engine
	trees    *store.Store[*tree.Tree]
	reports  *store.Store[report.Report]
	notifier *notify.Client // nil when no webhook is configured
	log      *slog.Logger
	cfg      config.Config

	treesStored atomic.Int64
	comparesRun atomic.Int64
}

// NewServer creates and configures the HTTP server.
func NewServer(eng engine.Engine, trees *store.Store[*tree.Tree], reports *store.Store[report.Report], notifier *notify.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		eng:      eng,
		trees:    trees,
		reports:  reports,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/trees", s.handleUploadTree)
		r.Post("/api/trees/compute", s.handleComputeTree)
		r.Get("/api/trees/{treeID}", s.handleGetTree)
		r.Delete("/api/trees/{treeID}", s.handleDeleteTree)

		r.Post("/api/compare", s.handleCompare)
		r.Post("/api/compare/batch", s.handleBatchCompare)
		r.Get("/api/compare/{reportID}", s.handleGetReport)
		r.Get("/api/compare/{reportID}/report", s.handleRenderReport)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"trees_stored":    s.treesStored.Load(),
		"trees_live":      s.trees.Len(),
		"comparisons_run": s.comparesRun.Load(),
		"reports_live":    s.reports.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
