// Package web is the browser gateway: HTML views and a JSON API over the
// same core workflows the CLI drives.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/config"
	"github.com/JonMunkholm/pharmadb/internal/core"
	"github.com/JonMunkholm/pharmadb/internal/metrics"
	"github.com/JonMunkholm/pharmadb/internal/web/middleware"
)

// Server is the HTTP gateway.
type Server struct {
	service *core.Service
	cfg     *config.Config
	metrics *metrics.Set
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a gateway over service. A nil m uses the process-wide
// metrics set.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Set) *Server {
	if m == nil {
		m = metrics.Default()
	}
	s := &Server{
		service: service,
		cfg:     cfg,
		metrics: m,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.ActorHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	if s.cfg.Rate.Enabled {
		limiter := middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.Middleware)
	}

	s.router.Use(middleware.Credentials(s.cfg.API.Actor))
}

func (s *Server) setupRoutes() {
	// Operations
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/domains/{domainID}", s.handleDomainPage)
	s.router.Get("/domains/{domainID}/versions", s.handleDomainVersionsPage)
	s.router.Get("/domains/{domainID}/worklogs", s.handleDomainWorkLogsPage)
	s.router.Get("/lists/{listID}/versions", s.handleVersionsPage)
	s.router.Get("/lists/{listID}/worklogs", s.handleWorkLogsPage)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/template/{listType}", s.handleDownloadTemplate)

		r.Route("/domains/{domainID}/subdomains/{subdomainID}", func(r chi.Router) {
			r.Get("/entries", s.handleListEntries)
			r.Post("/entries", s.handleAddEntry)
			r.Post("/import", s.handleImport)
			r.Post("/delete", s.handleDeleteEntries)
		})

		r.Get("/lists", s.handleLists)
		r.Post("/lists", s.handleCreateList)
		r.Get("/lists/{listID}", s.handleListDetail)
		r.Put("/lists/{listID}", s.handleUpdateList)
		r.Delete("/lists/{listID}", s.handleDeleteList)
		r.Post("/lists/{listID}/items", s.handleAddItems)
		r.Post("/lists/{listID}/versions", s.handleCreateVersion)
		r.Post("/lists/{listID}/worklogs", s.handleCreateWorkLog)

		r.Post("/chat", s.handleChat)
		r.Post("/chat/clear", s.handleChatClear)
		r.Post("/ingest", s.handleIngest)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("gateway listening", "addr", s.server.Addr, "backend", s.cfg.API.URL)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

type healthResponse struct {
	Status  string                    `json:"status"`
	Backend string                    `json:"backend"`
	Imports *core.ImportLimiterStatus `json:"imports,omitempty"`
	Time    time.Time                 `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Backend: s.cfg.API.URL, Time: time.Now().UTC()}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Imports = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with status. Encoding errors are logged since
// headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("json encode error", "error", err)
	}
}

var _ core.Backend = (*api.Client)(nil)
