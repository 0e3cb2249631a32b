// Package api implements the HTTP layer for the business health assessment.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/business-health-backend/internal/report"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// NarrativeTimeout bounds report assembly per request. Zero means no
	// deadline beyond the router's own.
	NarrativeTimeout time.Duration
}

// ReportAssembler is the narrow interface the report handlers use. The
// concrete implementation is *report.Assembler.
type ReportAssembler interface {
	Assemble(ctx context.Context, in report.ReportInput) (report.Report, error)
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	reports ReportAssembler

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Serve.
func NewServer(reports ReportAssembler, cfg Config, logger *slog.Logger) http.Handler {
	s := &Server{
		reports: reports,
		cfg:     cfg,
		logger:  logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(90 * time.Second))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Post("/responses", s.handleCreateResponses)
		r.Post("/responses/validate", s.handleValidateResponses)

		r.Post("/reports", s.handleCreateReport)
		r.Post("/reports/from-responses", s.handleCreateReportFromResponses)
	})

	return r
}
