// ABOUTME: Shared report building blocks used by every compliance formatter.
// ABOUTME: Metadata, evidence, and finding shapes plus the grouping helper.

package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/types"
)

const (
	reportVersion = "1.0.0"
	oscalVersion  = "1.1.2"
)

// Metadata identifies one generated report.
type Metadata struct {
	ReportID     string `json:"report_id"`
	Title        string `json:"title"`
	Published    string `json:"published"`
	LastModified string `json:"last_modified"`
	Version      string `json:"version"`
	OSCALVersion string `json:"oscal_version"`
}

func newMetadata(title string, now time.Time) Metadata {
	ts := now.Format(time.RFC3339)
	return Metadata{
		ReportID:     uuid.NewString(),
		Title:        title,
		Published:    ts,
		LastModified: ts,
		Version:      reportVersion,
		OSCALVersion: oscalVersion,
	}
}

// SourceLocation pins a finding to a file position.
type SourceLocation struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Snippet  string `json:"snippet"`
}

// Evidence is one collected observation backing a finding.
type Evidence struct {
	EvidenceID     string          `json:"evidence_id"`
	EvidenceType   string          `json:"evidence_type"`
	Description    string          `json:"description"`
	SourceLocation *SourceLocation `json:"source_location,omitempty"`
	CollectedAt    string          `json:"collected_at"`
	Data           json.RawMessage `json:"data"`
}

const evidenceTypeStaticScan = "static-scan"

// ControlFinding is one grouped finding against a single control.
type ControlFinding struct {
	FindingID              string                     `json:"finding_id"`
	ControlID              string                     `json:"control_id"`
	ImplementationStatus   types.ImplementationStatus `json:"implementation_status"`
	AssessmentStatus       types.AssessmentStatus     `json:"assessment_status"`
	Description            string                     `json:"description"`
	RelatedVulnerabilities []string                   `json:"related_vulnerabilities"`
	Evidence               []Evidence                 `json:"evidence"`
	Remediation            string                     `json:"remediation"`
	RiskLevel              types.Severity             `json:"risk_level"`
}

// sourceName returns the display path for evidence, defaulting when the
// audit ran over an anonymous buffer.
func sourceName(filePath string) string {
	if filePath == "" {
		return "source"
	}
	return filePath
}

// collectEvidence builds one evidence entry per finding in a group, with a
// caller-supplied payload builder so each framework can attach its own data.
func collectEvidence(g assess.Group, findingID, filePath, timestamp string,
	describe func(types.Finding) string, payload func(types.Finding) json.RawMessage) ([]Evidence, []string) {

	var evidence []Evidence
	var related []string
	for i, f := range g.Findings {
		related = append(related, fmt.Sprintf("%s:%d:%d", sourceName(filePath), f.Line, f.Column))
		evidence = append(evidence, Evidence{
			EvidenceID:   fmt.Sprintf("%s-%d", findingID, i),
			EvidenceType: evidenceTypeStaticScan,
			Description:  describe(f),
			SourceLocation: &SourceLocation{
				FilePath: sourceName(filePath),
				Line:     f.Line,
				Column:   f.Column,
				Snippet:  f.Context,
			},
			CollectedAt: timestamp,
			Data:        payload(f),
		})
	}
	return evidence, related
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// All payloads are built from plain structs and maps of
		// marshalable values.
		panic(fmt.Sprintf("report payload marshal: %v", err))
	}
	return raw
}

// ExportJSON renders any report document as indented JSON.
func ExportJSON(report any) (string, error) {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(raw), nil
}
