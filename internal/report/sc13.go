// ABOUTME: NIST 800-53 SC-13 assessment report generator.
// ABOUTME: Renders the generic severity-driven assessment of one audit result.

package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/types"
)

// ControlAssessment is the file-level SC-13 control verdict.
type ControlAssessment struct {
	ControlID            string                     `json:"control_id"`
	ControlName          string                     `json:"control_name"`
	ControlFamily        string                     `json:"control_family"`
	ControlDescription   string                     `json:"control_description"`
	ImplementationStatus types.ImplementationStatus `json:"implementation_status"`
	AssessmentStatus     types.AssessmentStatus     `json:"assessment_status"`
	AssessmentMethod     []string                   `json:"assessment_method"`
}

// Summary aggregates the audit into the numbers auditors read first.
type Summary struct {
	FilesScanned      int      `json:"files_scanned"`
	LinesScanned      int      `json:"lines_scanned"`
	TotalFindings     int      `json:"total_findings"`
	QuantumVulnerable []string `json:"quantum_vulnerable_algorithms"`
	BrokenAlgorithms  []string `json:"broken_algorithms"`
	WeakKeySizes      []string `json:"weak_key_sizes"`
	ComplianceScore   int      `json:"compliance_score"`
	RiskScore         int      `json:"risk_score"`
}

// SC13Report is the full NIST 800-53 SC-13 assessment document.
type SC13Report struct {
	Metadata          Metadata          `json:"metadata"`
	ControlAssessment ControlAssessment `json:"control_assessment"`
	Summary           Summary           `json:"summary"`
	Findings          []ControlFinding  `json:"findings"`
	Recommendations   []string          `json:"recommendations"`
}

// GenerateSC13 builds the SC-13 report for one audited file.
func GenerateSC13(result *types.AuditResult, assessment *assess.Assessment, filePath string) *SC13Report {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339)

	return &SC13Report{
		Metadata: newMetadata("NIST 800-53 SC-13 Cryptographic Protection Assessment", now),
		ControlAssessment: ControlAssessment{
			ControlID:            "sc-13",
			ControlName:          "Cryptographic Protection",
			ControlFamily:        "System and Communications Protection",
			ControlDescription:   "The information system implements organization-defined cryptographic uses and type of cryptography required for each use in accordance with applicable federal laws, Executive Orders, directives, policies, regulations, and standards.",
			ImplementationStatus: assessment.GenericImplementation,
			AssessmentStatus:     assessment.GenericAssessment,
			AssessmentMethod:     []string{"TEST", "EXAMINE", "INTERVIEW"},
		},
		Summary:         sc13Summary(result, assessment),
		Findings:        sc13Findings(assessment, filePath, timestamp),
		Recommendations: sc13Recommendations(result),
	}
}

func sc13Summary(result *types.AuditResult, assessment *assess.Assessment) Summary {
	return Summary{
		FilesScanned:      1,
		LinesScanned:      result.Stats.LinesScanned,
		TotalFindings:     result.Stats.TotalFindings,
		QuantumVulnerable: assessment.QuantumVulnerable,
		BrokenAlgorithms:  assessment.BrokenAlgorithms,
		WeakKeySizes:      assessment.WeakKeySizes,
		ComplianceScore:   assessment.InverseRiskScore,
		RiskScore:         result.RiskScore,
	}
}

func sc13Findings(assessment *assess.Assessment, filePath, timestamp string) []ControlFinding {
	var findings []ControlFinding
	for _, g := range assessment.Groups {
		findingID := uuid.NewString()

		evidence, related := collectEvidence(g, findingID, filePath, timestamp,
			func(f types.Finding) string {
				return fmt.Sprintf("Detected %s at line %d column %d: %s",
					g.Primitive, f.Line, f.Column, f.Message)
			},
			func(f types.Finding) json.RawMessage {
				return mustJSON(map[string]any{
					"crypto_type": g.Primitive.String(),
					"severity":    f.Severity.String(),
					"risk_score":  f.RiskScore,
					"key_size":    f.KeySize,
					"message":     f.Message,
				})
			})

		category := "cryptographically broken"
		if g.Primitive.QuantumVulnerable() {
			category = "quantum-vulnerable"
		}
		description := fmt.Sprintf(
			"Found %d instance(s) of %s cryptographic algorithm usage. This algorithm is %s and poses a %s risk to cryptographic protection.",
			len(g.Findings), g.Primitive, category, g.HighestSeverity)

		findings = append(findings, ControlFinding{
			FindingID:              findingID,
			ControlID:              "sc-13",
			ImplementationStatus:   g.GenericImplementation,
			AssessmentStatus:       g.GenericAssessment,
			Description:            description,
			RelatedVulnerabilities: related,
			Evidence:               evidence,
			Remediation:            g.Findings[0].Recommendation,
			RiskLevel:              g.HighestSeverity,
		})
	}
	return findings
}

func sc13Recommendations(result *types.AuditResult) []string {
	recs := []string{
		"SC-13 Control Objective: Implement FIPS 140-2/140-3 validated cryptographic modules for cryptographic protection.",
	}
	if result.Stats.CriticalCount > 0 {
		recs = append(recs,
			"CRITICAL: Immediate action required. The use of cryptographically broken algorithms (MD5, SHA-1, DES, RC4) violates SC-13 requirements and poses significant security risks.")
	}
	if result.Stats.HighCount > 0 {
		recs = append(recs,
			"HIGH PRIORITY: Transition to post-quantum cryptography (PQC) algorithms to comply with NIST SP 800-208 and prepare for quantum computing threats.",
			"Recommended PQC Algorithms: CRYSTALS-Kyber (key encapsulation), CRYSTALS-Dilithium (digital signatures), SPHINCS+ (stateless signatures).")
	}
	recs = append(recs,
		"Implement crypto-agility: Design systems to easily swap cryptographic algorithms as new standards emerge.",
		"Maintain a cryptographic inventory: Document all cryptographic implementations and their compliance status.",
		"Reference: NIST SP 800-53 Rev. 5 SC-13, NIST SP 800-175B (Cryptographic Algorithm Validation Program), NIST Post-Quantum Cryptography Standardization.")
	return recs
}
