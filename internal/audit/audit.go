// ABOUTME: Audit engine that validates source text and runs the crypto detector.
// ABOUTME: Produces a complete audit result with risk score and recommendations.

package audit

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/detector"
	"github.com/arcqubit/pqcaudit/internal/registry"
	"github.com/arcqubit/pqcaudit/internal/types"
)

const (
	// MaxSourceBytes is the upper bound on audited source size.
	MaxSourceBytes = 10 * 1024 * 1024
	// MaxSourceLines is the upper bound on audited line count.
	MaxSourceLines = 500000
)

// Engine validates and audits source text for weak crypto usage.
type Engine struct {
	detector *detector.Detector
	logger   *logrus.Logger
}

// NewEngine creates an audit engine with a freshly compiled rule registry.
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		detector: detector.New(registry.New()),
		logger:   logger,
	}
}

// Audit validates the source against input limits, resolves the language tag,
// and scans for cryptographic findings. Limits are checked before the
// language tag so oversized garbage is rejected cheaply.
func (e *Engine) Audit(source, languageTag string) (*types.AuditResult, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &InvalidSourceError{}
	}
	if len(source) > MaxSourceBytes {
		return nil, &SourceTooLargeError{Actual: len(source), Limit: MaxSourceBytes}
	}

	lineCount := strings.Count(source, "\n") + 1
	if lineCount > MaxSourceLines {
		return nil, &TooManyLinesError{Actual: lineCount, Limit: MaxSourceLines}
	}

	language, ok := types.ParseLanguage(languageTag)
	if !ok {
		return nil, &UnsupportedLanguageError{Tag: languageTag}
	}

	result := types.NewAuditResult(language, lineCount)
	for _, finding := range e.detector.Scan(source) {
		result.AddFinding(finding)
	}
	result.CalculateRiskScore()
	result.GenerateRecommendations()

	e.logger.WithFields(logrus.Fields{
		"language":   language.String(),
		"lines":      lineCount,
		"findings":   result.Stats.TotalFindings,
		"risk_score": result.RiskScore,
	}).Debug("Audit complete")

	return result, nil
}
