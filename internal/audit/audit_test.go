// ABOUTME: Tests for the audit engine input validation and end-to-end scanning.
// ABOUTME: Exercises every rejection path plus boundary sizes at the exact limits.

package audit

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/arcqubit/pqcaudit/internal/types"
)

func newTestEngine() *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewEngine(logger)
}

func TestAuditEmptySource(t *testing.T) {
	e := newTestEngine()

	_, err := e.Audit("", "python")
	var invalidErr *InvalidSourceError
	if !errors.As(err, &invalidErr) {
		t.Errorf("expected InvalidSourceError, got %v", err)
	}

	_, err = e.Audit("   \n\t  \n", "python")
	if !errors.As(err, &invalidErr) {
		t.Errorf("expected InvalidSourceError for whitespace-only, got %v", err)
	}

	// Emptiness is checked before the line-count limit, so a blank source
	// with too many lines is still rejected as invalid.
	_, err = e.Audit(strings.Repeat("\n", MaxSourceLines+1), "python")
	if !errors.As(err, &invalidErr) {
		t.Errorf("expected InvalidSourceError for blank oversized source, got %v", err)
	}
}

func TestAuditSourceSizeLimit(t *testing.T) {
	e := newTestEngine()

	atLimit := strings.Repeat("a", MaxSourceBytes)
	if _, err := e.Audit(atLimit, "python"); err != nil {
		t.Errorf("source exactly at the byte limit should pass, got %v", err)
	}

	_, err := e.Audit(atLimit+"a", "python")
	var tooLarge *SourceTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected SourceTooLargeError, got %v", err)
	}
	if tooLarge.Actual != MaxSourceBytes+1 || tooLarge.Limit != MaxSourceBytes {
		t.Errorf("unexpected error fields: %+v", tooLarge)
	}
}

func TestAuditLineCountLimit(t *testing.T) {
	e := newTestEngine()

	atLimit := strings.Repeat("x\n", MaxSourceLines-1) + "x"
	if _, err := e.Audit(atLimit, "go"); err != nil {
		t.Errorf("source exactly at the line limit should pass, got %v", err)
	}

	_, err := e.Audit(atLimit+"\nx", "go")
	var tooMany *TooManyLinesError
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyLinesError, got %v", err)
	}
	if tooMany.Actual != MaxSourceLines+1 || tooMany.Limit != MaxSourceLines {
		t.Errorf("unexpected error fields: %+v", tooMany)
	}
}

func TestAuditUnsupportedLanguage(t *testing.T) {
	e := newTestEngine()

	_, err := e.Audit("let x = 1;", "cobol")
	var unsupported *UnsupportedLanguageError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedLanguageError, got %v", err)
	}
	if unsupported.Tag != "cobol" {
		t.Errorf("expected tag cobol, got %q", unsupported.Tag)
	}
}

func TestAuditLimitsCheckedBeforeLanguage(t *testing.T) {
	e := newTestEngine()

	huge := strings.Repeat("a", MaxSourceBytes+1)
	_, err := e.Audit(huge, "cobol")
	var tooLarge *SourceTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Errorf("size check should run before language resolution, got %v", err)
	}
}

func TestAuditLanguageAliases(t *testing.T) {
	e := newTestEngine()

	aliases := []string{
		"rust", "rs", "python", "py", "javascript", "js", "typescript", "ts",
		"java", "go", "golang", "cpp", "c++", "cxx", "csharp", "cs", "c#",
		"Python", "GO", "RuSt",
	}
	for _, tag := range aliases {
		if _, err := e.Audit("let x = 1;", tag); err != nil {
			t.Errorf("alias %q should resolve, got %v", tag, err)
		}
	}
}

func TestAuditCleanSource(t *testing.T) {
	e := newTestEngine()

	result, err := e.Audit("fn add(a: u32, b: u32) -> u32 { a + b }", "rust")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RiskScore != 0 {
		t.Errorf("expected risk score 0, got %d", result.RiskScore)
	}
	if result.Stats.TotalFindings != 0 {
		t.Errorf("expected no findings, got %d", result.Stats.TotalFindings)
	}
	if result.Language != types.Rust {
		t.Errorf("expected rust, got %s", result.Language)
	}
}

func TestAuditVulnerableSource(t *testing.T) {
	e := newTestEngine()

	source := strings.Join([]string{
		"import hashlib",
		"digest = hashlib.md5(payload).hexdigest()",
		"key = RSA.generate(1024)",
	}, "\n")

	result, err := e.Audit(source, "python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.TotalFindings != 2 {
		t.Fatalf("expected 2 findings, got %d", result.Stats.TotalFindings)
	}
	if result.Stats.CriticalCount != 2 {
		t.Errorf("expected 2 critical findings, got %d", result.Stats.CriticalCount)
	}
	// floor((100 + 100) / 2)
	if result.RiskScore != 100 {
		t.Errorf("expected risk score 100, got %d", result.RiskScore)
	}
	if result.Stats.LinesScanned != 3 {
		t.Errorf("expected 3 lines scanned, got %d", result.Stats.LinesScanned)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected recommendations for vulnerable source")
	}
}

func TestAuditRiskScoreFloorMean(t *testing.T) {
	e := newTestEngine()

	// MD5 (100) + 3DES (80) => floor(180/2) = 90
	source := "h = md5(data)\ncipher = Cipher.getInstance(\"DESede/CBC/PKCS5Padding\")"
	result, err := e.Audit(source, "python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.TotalFindings != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", result.Stats.TotalFindings, result.Findings)
	}
	if result.RiskScore != 90 {
		t.Errorf("expected risk score 90, got %d", result.RiskScore)
	}
}
