// ABOUTME: Template-based remediation suggestions for detected crypto findings.
// ABOUTME: Textual find/replace only; quantum migrations always need manual review.

package remediate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arcqubit/pqcaudit/internal/types"
)

const maxPathLength = 4096

// CodeFix is one suggested replacement for a vulnerable line.
type CodeFix struct {
	FilePath       string  `json:"file_path"`
	Line           int     `json:"line"`
	Column         int     `json:"column"`
	OldCode        string  `json:"old_code"`
	NewCode        string  `json:"new_code"`
	Confidence     float64 `json:"confidence"`
	Algorithm      string  `json:"algorithm"`
	Explanation    string  `json:"explanation"`
	AutoApplicable bool    `json:"auto_applicable"`
}

// Summary aggregates the fixes produced for one audit result.
type Summary struct {
	TotalFindings        int     `json:"total_findings"`
	AutoFixable          int     `json:"auto_fixable"`
	ManualReviewRequired int     `json:"manual_review_required"`
	AverageConfidence    float64 `json:"average_confidence"`
}

// Result holds the suggested fixes plus any warnings.
type Result struct {
	Fixes    []CodeFix `json:"fixes"`
	Summary  Summary   `json:"summary"`
	Warnings []string  `json:"warnings"`
}

// validatePath rejects paths that could not name a real writable file.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("file path contains null byte")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal detected: %s", path)
	}
	if len(path) > maxPathLength {
		return fmt.Errorf("file path too long: %d bytes (max %d)", len(path), maxPathLength)
	}
	return nil
}

// Generate produces a remediation plan for every finding in the result.
// Findings without a template produce a warning instead of a fix.
func Generate(result *types.AuditResult, filePath string) *Result {
	if err := validatePath(filePath); err != nil {
		return &Result{
			Summary: Summary{
				TotalFindings: result.Stats.TotalFindings,
			},
			Warnings: []string{fmt.Sprintf("Invalid file path: %v", err)},
		}
	}

	var fixes []CodeFix
	var warnings []string

	for _, f := range result.Findings {
		switch f.Primitive {
		case types.MD5:
			fixes = append(fixes, remediateMD5(f, filePath))
		case types.SHA1:
			fixes = append(fixes, remediateSHA1(f, filePath))
		case types.RSA:
			fixes = append(fixes, remediateRSA(f, filePath))
		case types.DES, types.TripleDES:
			fixes = append(fixes, remediateDES(f, filePath))
		default:
			warnings = append(warnings, fmt.Sprintf(
				"No automatic remediation available for %s at line %d", f.Primitive, f.Line))
		}
	}

	autoFixable := 0
	confidenceSum := 0.0
	for _, fix := range fixes {
		if fix.AutoApplicable {
			autoFixable++
		}
		confidenceSum += fix.Confidence
	}
	avg := 0.0
	if len(fixes) > 0 {
		avg = confidenceSum / float64(len(fixes))
	}

	return &Result{
		Fixes: fixes,
		Summary: Summary{
			TotalFindings:        result.Stats.TotalFindings,
			AutoFixable:          autoFixable,
			ManualReviewRequired: len(fixes) - autoFixable,
			AverageConfidence:    avg,
		},
		Warnings: warnings,
	}
}

func remediateMD5(f types.Finding, filePath string) CodeFix {
	old := strings.TrimSpace(f.Context)

	var replacement string
	switch {
	case strings.Contains(old, "md5") && strings.Contains(old, "hashlib"):
		replacement = strings.ReplaceAll(old, "md5", "sha256")
	case strings.Contains(old, "MD5") && strings.Contains(old, "crypto"):
		replacement = strings.ReplaceAll(strings.ReplaceAll(old, "MD5", "SHA256"), "md5", "sha256")
	case strings.Contains(old, "Md5"):
		replacement = strings.ReplaceAll(strings.ReplaceAll(old, "Md5", "Sha256"), "MD5", "SHA256")
	default:
		replacement = strings.ReplaceAll(strings.ReplaceAll(old, "md5", "sha256"), "MD5", "SHA256")
	}

	return CodeFix{
		FilePath:       filePath,
		Line:           f.Line,
		Column:         f.Column,
		OldCode:        old,
		NewCode:        replacement,
		Confidence:     0.85,
		Algorithm:      "MD5 -> SHA-256",
		Explanation:    "Replaced deprecated MD5 hash with SHA-256. Note: For cryptographic security, consider using SHA-3 or BLAKE2.",
		AutoApplicable: true,
	}
}

func remediateSHA1(f types.Finding, filePath string) CodeFix {
	old := strings.TrimSpace(f.Context)

	var replacement string
	switch {
	case strings.Contains(old, "sha1"):
		replacement = strings.ReplaceAll(old, "sha1", "sha256")
	case strings.Contains(old, "SHA1"):
		replacement = strings.ReplaceAll(old, "SHA1", "SHA256")
	case strings.Contains(old, "Sha1"):
		replacement = strings.ReplaceAll(old, "Sha1", "Sha256")
	default:
		replacement = strings.ReplaceAll(old, "SHA-1", "SHA-256")
	}

	return CodeFix{
		FilePath:       filePath,
		Line:           f.Line,
		Column:         f.Column,
		OldCode:        old,
		NewCode:        replacement,
		Confidence:     0.9,
		Algorithm:      "SHA-1 -> SHA-256",
		Explanation:    "Replaced deprecated SHA-1 hash with SHA-256. SHA-1 is vulnerable to collision attacks.",
		AutoApplicable: true,
	}
}

func remediateRSA(f types.Finding, filePath string) CodeFix {
	old := strings.TrimSpace(f.Context)
	weakKey := f.KeySize != nil && *f.KeySize < 2048

	if weakKey {
		return CodeFix{
			FilePath:       filePath,
			Line:           f.Line,
			Column:         f.Column,
			OldCode:        old,
			NewCode:        strings.ReplaceAll(old, strconv.Itoa(*f.KeySize), "2048"),
			Confidence:     0.7,
			Algorithm:      fmt.Sprintf("RSA-%d -> RSA-2048 (interim)", *f.KeySize),
			Explanation:    "Upgraded RSA key size to 2048 bits (minimum secure size). CRITICAL: Plan migration to post-quantum algorithms (CRYSTALS-Dilithium for signatures, CRYSTALS-Kyber for encryption) as RSA is vulnerable to quantum attacks.",
			AutoApplicable: false,
		}
	}

	return CodeFix{
		FilePath:       filePath,
		Line:           f.Line,
		Column:         f.Column,
		OldCode:        old,
		NewCode:        old,
		Confidence:     0.5,
		Algorithm:      "RSA -> PQC migration recommended",
		Explanation:    "WARNING: RSA is vulnerable to quantum computing attacks. Recommend migrating to CRYSTALS-Dilithium (signatures) or CRYSTALS-Kyber (encryption). No automatic fix available - requires architectural changes.",
		AutoApplicable: false,
	}
}

func remediateDES(f types.Finding, filePath string) CodeFix {
	old := strings.TrimSpace(f.Context)

	replacement := old
	if strings.Contains(old, "DES") || strings.Contains(old, "des") {
		replacement = strings.NewReplacer(
			"TripleDES", "AES",
			"3DES", "AES",
			"DES", "AES",
			"des", "aes",
		).Replace(old)
	}

	name := "DES"
	if f.Primitive == types.TripleDES {
		name = "3DES"
	}

	return CodeFix{
		FilePath:   filePath,
		Line:       f.Line,
		Column:     f.Column,
		OldCode:    old,
		NewCode:    replacement,
		Confidence: 0.75,
		Algorithm:  fmt.Sprintf("%s -> AES-256", name),
		Explanation: fmt.Sprintf(
			"Replaced deprecated %s cipher with AES-256-GCM. %s has known vulnerabilities and small block size. Ensure proper key management and use authenticated encryption mode (GCM).",
			name, name),
		AutoApplicable: false,
	}
}
