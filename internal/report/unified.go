// ABOUTME: Unified NIST 800-53 + ITSG-33 dual-framework report generator.
// ABOUTME: Cross-references both control assessments in one document.

package report

import (
	"time"

	"github.com/arcqubit/pqcaudit/internal/algdb"
	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/types"
)

// ControlCrossReference maps a NIST control to its ITSG-33 equivalent.
type ControlCrossReference struct {
	NISTControlID   string   `json:"nist_control_id"`
	ITSG33ControlID string   `json:"itsg33_control_id"`
	Equivalence     string   `json:"equivalence"`
	Notes           []string `json:"notes"`
}

// UnifiedReport carries both framework assessments of the same audit.
type UnifiedReport struct {
	Metadata           Metadata                `json:"metadata"`
	NISTSC13Assessment ControlAssessment       `json:"nist_sc13_assessment"`
	NISTSummary        Summary                 `json:"nist_summary"`
	NISTFindings       []ControlFinding        `json:"nist_findings"`
	ITSG33Assessment   ITSG33ControlAssessment `json:"itsg33_sc13_assessment"`
	CanadianSummary    CanadianSummary         `json:"canadian_summary"`
	CanadianFindings   []CanadianFinding       `json:"canadian_findings"`
	ControlMapping     []ControlCrossReference `json:"control_mapping"`
	Recommendations    []string                `json:"recommendations"`
}

// GenerateUnified builds the dual-framework report for one audited file.
func GenerateUnified(result *types.AuditResult, assessment *assess.Assessment, db *algdb.Database, filePath string) *UnifiedReport {
	now := time.Now().UTC()

	nist := GenerateSC13(result, assessment, filePath)
	canadian := GenerateITSG33(result, assessment, db, filePath)

	recommendations := []string{
		"Unified Compliance Assessment: Both NIST 800-53 SC-13 and ITSG-33 SC-13 are assessed",
		"Use CMVP-validated cryptographic modules to satisfy both U.S. and Canadian requirements",
	}
	recommendations = append(recommendations, canadian.Recommendations...)

	return &UnifiedReport{
		Metadata: newMetadata(
			"Unified NIST 800-53 SC-13 and ITSG-33 SC-13 Compliance Assessment", now),
		NISTSC13Assessment: nist.ControlAssessment,
		NISTSummary:        nist.Summary,
		NISTFindings:       nist.Findings,
		ITSG33Assessment:   canadian.ControlAssessment,
		CanadianSummary:    canadian.Summary,
		CanadianFindings:   canadian.Findings,
		ControlMapping: []ControlCrossReference{{
			NISTControlID:   "SC-13",
			ITSG33ControlID: "ITSG-33 SC-13",
			Equivalence:     "1:1 mapping - ITSG-33 is based on NIST 800-53",
			Notes: []string{
				"Both frameworks require FIPS-validated/CMVP-validated cryptography",
				"Canadian framework adds specific ITSP.40.111 and ITSP.40.062 requirements",
				"Security classification levels (Protected A/B/C) determine minimum key sizes",
			},
		}},
		Recommendations: recommendations,
	}
}
