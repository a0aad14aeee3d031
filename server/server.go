// Package server exposes composition and export over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/receita/config"
	"github.com/gaurav-prasanna/receita/core/catalog"
	"github.com/gaurav-prasanna/receita/core/export"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	exporter *export.Exporter
	catalog  *catalog.Catalog
	log      *zap.Logger
	cfg      config.Config
}

// New creates and configures the server. The exporter's own viewer is never
// used: every export is written to the response of its request. cat may be
// nil.
func New(exporter *export.Exporter, cat *catalog.Catalog, log *zap.Logger, cfg config.Config) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	s := &Server{
		exporter: exporter,
		catalog:  cat,
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

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}

		r.Post("/api/collect", s.handleCollect)
		r.Post("/api/export", s.handleExport)
		r.Post("/api/align", s.handleAlign)
		r.Post("/api/dosage", s.handleDosage)

		r.Get("/api/catalog", s.handleCatalog)
		r.Post("/api/prescription", s.handlePrescription)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
