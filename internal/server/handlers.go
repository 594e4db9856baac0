// ABOUTME: Request handlers for the audit, assessment, and remediation endpoints.
// ABOUTME: Maps engine errors to HTTP statuses and serves cached results when fresh.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/audit"
	"github.com/arcqubit/pqcaudit/internal/cache"
	"github.com/arcqubit/pqcaudit/internal/remediate"
	"github.com/arcqubit/pqcaudit/internal/report"
	"github.com/arcqubit/pqcaudit/internal/types"
)

// Request bodies may carry the 10 MiB source limit plus JSON overhead.
const maxRequestBytes = audit.MaxSourceBytes + 1<<20

type auditRequest struct {
	Source   string `json:"source"`
	Language string `json:"language"`
}

type assessRequest struct {
	Source         string `json:"source"`
	Language       string `json:"language"`
	Classification string `json:"classification"`
	Format         string `json:"format"`
	FilePath       string `json:"file_path"`
}

type remediateRequest struct {
	Source   string `json:"source"`
	Language string `json:"language"`
	FilePath string `json:"file_path"`
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]string{"error": msg})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, cached, ok := s.audit(w, r, req.Source, req.Language)
	if !ok {
		return
	}

	render.JSON(w, r, map[string]any{
		"result": result,
		"cached": cached,
	})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if !s.decode(w, r, &req) {
		return
	}

	classification := types.Unclassified
	if req.Classification != "" {
		var ok bool
		classification, ok = types.ParseClassification(req.Classification)
		if !ok {
			badRequest(w, r, "unknown classification: "+req.Classification)
			return
		}
	}

	result, _, ok := s.audit(w, r, req.Source, req.Language)
	if !ok {
		return
	}

	assessment := s.assessor.Assess(result, classification)

	switch req.Format {
	case "", "unified":
		render.JSON(w, r, report.GenerateUnified(result, assessment, s.db, req.FilePath))
	case "sc13":
		render.JSON(w, r, report.GenerateSC13(result, assessment, req.FilePath))
	case "oscal":
		render.JSON(w, r, report.GenerateOSCAL(report.GenerateSC13(result, assessment, req.FilePath)))
	case "itsg33":
		render.JSON(w, r, report.GenerateITSG33(result, assessment, s.db, req.FilePath))
	default:
		badRequest(w, r, "unknown format: "+req.Format)
	}
}

func (s *Server) handleRemediate(w http.ResponseWriter, r *http.Request) {
	var req remediateRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, _, ok := s.audit(w, r, req.Source, req.Language)
	if !ok {
		return
	}

	filePath := req.FilePath
	if filePath == "" {
		filePath = "source"
	}
	render.JSON(w, r, remediate.Generate(result, filePath))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, r, "invalid json")
		return false
	}
	return true
}

// audit runs one source through the engine, serving from cache when possible.
// On failure it writes the error response and returns ok=false.
func (s *Server) audit(w http.ResponseWriter, r *http.Request, source, language string) (*types.AuditResult, bool, bool) {
	key := cache.Key(source, language)
	if result := s.cache.Get(key); result != nil {
		s.metrics.RecordAudit(language, "cached", 0)
		return result, true, true
	}

	start := time.Now()
	result, err := s.engine.Audit(source, language)
	if err != nil {
		s.metrics.RecordAudit(language, "error", time.Since(start).Seconds())
		s.writeAuditError(w, r, err)
		return nil, false, false
	}

	s.metrics.RecordAudit(language, "ok", time.Since(start).Seconds())
	s.metrics.RecordResult(result)
	s.cache.Set(key, result)
	return result, false, true
}

func (s *Server) writeAuditError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unsupportedErr *audit.UnsupportedLanguageError
		invalidErr     *audit.InvalidSourceError
		tooLargeErr    *audit.SourceTooLargeError
		tooManyErr     *audit.TooManyLinesError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &unsupportedErr), errors.As(err, &invalidErr):
		status = http.StatusBadRequest
	case errors.As(err, &tooLargeErr), errors.As(err, &tooManyErr):
		status = http.StatusRequestEntityTooLarge
	}

	s.logger.WithFields(logrus.Fields{
		"status": status,
	}).WithError(err).Debug("Audit request rejected")

	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}
