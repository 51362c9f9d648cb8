package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docforge/internal/config"
	"github.com/dgallion1/docforge/internal/parser"
	"github.com/dgallion1/docforge/internal/pipeline"
)

// Server is the HTTP API server for docforge.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	metrics      *Metrics
	opts         parser.Options
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. It hooks the
// orchestrator's completion callback, so call it before orch.Start.
func NewServer(orch *pipeline.Orchestrator, opts parser.Options, log *slog.Logger, cfg config.Config) *Server {
	if opts.Logger == nil {
		opts.Logger = log
	}
	s := &Server{
		orchestrator: orch,
		metrics:      NewMetrics(orch.QueueDepth),
		opts:         opts,
		log:          log,
		cfg:          cfg,
	}
	orch.OnFinish = s.metrics.ObserveImport
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
	r.Use(s.metrics.Middleware)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))

		r.Post("/api/markdown", s.handleMarkdown)
		r.Post("/api/pdf", s.handlePDF)
		r.Post("/api/plaintext", s.handlePlaintext)
		r.Post("/api/edit", s.handleEdit)
		r.Post("/api/chunks", s.handleChunks)
		r.Post("/api/validate", s.handleValidate)

		r.Post("/api/import", s.handleImport)
		r.Post("/api/import/async", s.handleImportAsync)
		r.Post("/api/import/batch", s.handleBatchImport)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
