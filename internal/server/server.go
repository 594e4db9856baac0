// ABOUTME: HTTP API exposing audit, assessment, and remediation over chi.
// ABOUTME: Wires the audit engine, result cache, metrics, and report generators.

package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/algdb"
	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/audit"
	"github.com/arcqubit/pqcaudit/internal/cache"
	"github.com/arcqubit/pqcaudit/internal/metrics"
)

// Server serves the audit API.
type Server struct {
	engine   *audit.Engine
	assessor *assess.Assessor
	db       *algdb.Database
	cache    *cache.AuditCache
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

func New(logger *logrus.Logger) (*Server, error) {
	db, err := algdb.Load()
	if err != nil {
		return nil, fmt.Errorf("loading algorithm database: %w", err)
	}

	resultCache := cache.NewAuditCache(logger)

	return &Server{
		engine:   audit.NewEngine(logger),
		assessor: assess.New(db),
		db:       db,
		cache:    resultCache,
		metrics:  metrics.New(resultCache, logger),
		logger:   logger,
	}, nil
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.securityHeaders)

	r.Post("/v1/audit", s.handleAudit)
	r.Post("/v1/assess", s.handleAssess)
	r.Post("/v1/remediate", s.handleRemediate)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	s.logger.WithField("port", port).Info("Starting HTTP server")
	return srv.ListenAndServe()
}

func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote_ip":  r.RemoteAddr,
			"user_agent": r.UserAgent(),
		}).Debug("HTTP request received")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
