// ABOUTME: ITSG-33 SC-13 (Canadian) assessment report generator.
// ABOUTME: Adds CCCS approval status, ITSP references, and CMVP tracking per finding.

package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arcqubit/pqcaudit/internal/algdb"
	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/types"
)

// ITSG33ControlAssessment is the file-level ITSG-33 SC-13 verdict.
type ITSG33ControlAssessment struct {
	ControlID            string                     `json:"control_id"`
	ControlName          string                     `json:"control_name"`
	ControlFamily        string                     `json:"control_family"`
	ControlDescription   string                     `json:"control_description"`
	ImplementationStatus types.ImplementationStatus `json:"implementation_status"`
	AssessmentStatus     types.AssessmentStatus     `json:"assessment_status"`
	AssessmentMethod     []string                   `json:"assessment_method"`
	Classification       types.Classification       `json:"security_classification"`
	NISTMapping          string                     `json:"nist_mapping,omitempty"`
}

// CanadianSummary extends the generic summary with CCCS-specific rollups.
type CanadianSummary struct {
	Summary
	CCCSApproved       []string             `json:"cccs_approved_algorithms"`
	CCCSDeprecated     []string             `json:"cccs_deprecated_algorithms"`
	CCCSProhibited     []string             `json:"cccs_prohibited_algorithms"`
	CMVPValidatedCount int                  `json:"cmvp_validated_count"`
	CMVPRequiredCount  int                  `json:"cmvp_required_count"`
	ITSP40111Compliant bool                 `json:"itsp_40_111_compliant"`
	ITSP40062Compliant bool                 `json:"itsp_40_062_compliant"`
	Classification     types.Classification `json:"security_classification"`
	ClassCompliant     bool                 `json:"classification_compliant"`
}

// CMVPValidation tracks whether an algorithm's implementation needs and has
// a validated module.
type CMVPValidation struct {
	AlgorithmUsed  string  `json:"algorithm_used"`
	Implementation *string `json:"implementation"`
	CMVPCert       *string `json:"cmvp_cert"`
	RequiresCMVP   bool    `json:"requires_cmvp"`
	Compliant      bool    `json:"compliant"`
}

// CanadianFinding is a ControlFinding enriched with CCCS context.
type CanadianFinding struct {
	ControlFinding
	CCCSApprovalStatus        types.ApprovalStatus   `json:"cccs_approval_status"`
	ITSPReferences            []string               `json:"itsp_references"`
	CMVPValidation            *CMVPValidation        `json:"cmvp_validation,omitempty"`
	ApplicableClassifications []types.Classification `json:"applicable_classifications"`
}

// ITSG33Report is the full Canadian assessment document.
type ITSG33Report struct {
	Metadata          Metadata                `json:"metadata"`
	ControlAssessment ITSG33ControlAssessment `json:"control_assessment"`
	Summary           CanadianSummary         `json:"summary"`
	Findings          []CanadianFinding       `json:"findings"`
	CMVPValidations   []CMVPValidation        `json:"cmvp_validations"`
	Recommendations   []string                `json:"recommendations"`
}

// GenerateITSG33 builds the ITSG-33 SC-13 report for one audited file at
// one classification level.
func GenerateITSG33(result *types.AuditResult, assessment *assess.Assessment, db *algdb.Database, filePath string) *ITSG33Report {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339)
	classification := assessment.Classification

	validations := cmvpValidations(result, db, classification)

	return &ITSG33Report{
		Metadata: newMetadata(
			fmt.Sprintf("ITSG-33 SC-13 Cryptographic Protection Assessment - %s", classification), now),
		ControlAssessment: ITSG33ControlAssessment{
			ControlID:            "ITSG-33 SC-13",
			ControlName:          "Use of Cryptography / Cryptographic Protection",
			ControlFamily:        "System and Communications Protection",
			ControlDescription:   "The information system implements cryptographic protection in accordance with applicable Government of Canada legislation, TBS policies, directives, standards, and CCCS/CSE guidance (ITSP.40.111, ITSP.40.062).",
			ImplementationStatus: assessment.ClassifiedImplementation,
			AssessmentStatus:     assessment.ClassifiedAssessment,
			AssessmentMethod:     []string{"TEST", "EXAMINE", "INTERVIEW"},
			Classification:       classification,
			NISTMapping:          "NIST 800-53 Rev. 5 SC-13",
		},
		Summary:         canadianSummary(result, assessment, db, countValidated(validations)),
		Findings:        canadianFindings(assessment, db, filePath, timestamp),
		CMVPValidations: validations,
		Recommendations: canadianRecommendations(result, assessment),
	}
}

func canadianSummary(result *types.AuditResult, assessment *assess.Assessment, db *algdb.Database, validatedCount int) CanadianSummary {
	return CanadianSummary{
		Summary: Summary{
			FilesScanned:      1,
			LinesScanned:      result.Stats.LinesScanned,
			TotalFindings:     result.Stats.TotalFindings,
			QuantumVulnerable: assessment.QuantumVulnerable,
			BrokenAlgorithms:  assessment.BrokenAlgorithms,
			WeakKeySizes:      assessment.ClassificationViolations,
			ComplianceScore:   assessment.PenaltyScore,
			RiskScore:         result.RiskScore,
		},
		CCCSApproved:       db.ApprovedAlgorithms(assessment.Classification),
		CCCSDeprecated:     assessment.DeprecatedDetected,
		CCCSProhibited:     assessment.ProhibitedDetected,
		CMVPValidatedCount: validatedCount,
		CMVPRequiredCount:  assessment.CMVPRequiredCount,
		ITSP40111Compliant: assessment.ITSP40111Compliant,
		ITSP40062Compliant: true,
		Classification:     assessment.Classification,
		ClassCompliant:     assessment.ClassificationCompliant,
	}
}

func canadianFindings(assessment *assess.Assessment, db *algdb.Database, filePath, timestamp string) []CanadianFinding {
	classification := assessment.Classification

	var findings []CanadianFinding
	for _, g := range assessment.Groups {
		findingID := uuid.NewString()

		evidence, related := collectEvidence(g, findingID, filePath, timestamp,
			func(f types.Finding) string {
				return fmt.Sprintf("Detected %s (CCCS Status: %s) at line %d column %d: %s",
					g.Primitive, g.ApprovalStatus.Display(), f.Line, f.Column, f.Message)
			},
			func(f types.Finding) json.RawMessage {
				return mustJSON(map[string]any{
					"crypto_type":    g.Primitive.String(),
					"cccs_status":    g.ApprovalStatus,
					"severity":       f.Severity.String(),
					"risk_score":     f.RiskScore,
					"key_size":       f.KeySize,
					"classification": classification.DatabaseKey(),
				})
			})

		var validation *CMVPValidation
		switch g.ApprovalStatus {
		case types.StatusApproved, types.StatusConditionallyApproved:
			validation = &CMVPValidation{
				AlgorithmUsed: g.Primitive.String(),
				RequiresCMVP:  db.CMVPRequired(classification),
			}
			resolveCMVP(validation, g.Findings[0].Context, db)
		}

		findings = append(findings, CanadianFinding{
			ControlFinding: ControlFinding{
				FindingID:              findingID,
				ControlID:              "ITSG-33 SC-13",
				ImplementationStatus:   g.ClassifiedImplementation,
				AssessmentStatus:       g.ClassifiedAssessment,
				Description:            canadianFindingDescription(g, classification),
				RelatedVulnerabilities: related,
				Evidence:               evidence,
				Remediation:            canadianRemediation(g, db),
				RiskLevel:              g.HighestSeverity,
			},
			CCCSApprovalStatus:        g.ApprovalStatus,
			ITSPReferences:            []string{g.ITSPReference},
			CMVPValidation:            validation,
			ApplicableClassifications: g.AcceptableClassifications,
		})
	}
	return findings
}

func canadianFindingDescription(g assess.Group, classification types.Classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d instance(s) of %s cryptographic algorithm. ", len(g.Findings), g.Primitive)
	fmt.Fprintf(&b, "CCCS Status: %s. ", g.ApprovalStatus.Display())

	switch g.ApprovalStatus {
	case types.StatusProhibited:
		b.WriteString("This algorithm is PROHIBITED by CCCS and must not be used under any circumstances. ")
	case types.StatusDeprecated:
		b.WriteString("This algorithm is DEPRECATED by CCCS and should be migrated immediately. ")
	case types.StatusConditionallyApproved:
		b.WriteString("This algorithm is CONDITIONALLY APPROVED for legacy systems only. Plan post-quantum migration. ")
	case types.StatusApproved:
		b.WriteString("This algorithm is APPROVED by CCCS. ")
	case types.StatusUnderReview:
		b.WriteString("This algorithm is UNDER REVIEW by CCCS. ")
	}

	if ks := g.Findings[0].KeySize; ks != nil {
		fmt.Fprintf(&b, "Key size: %d bits for %s classification. ", *ks, classification)
	}
	return b.String()
}

func canadianRemediation(g assess.Group, db *algdb.Database) string {
	switch g.ApprovalStatus {
	case types.StatusProhibited:
		return fmt.Sprintf(
			"IMMEDIATE ACTION REQUIRED: Replace %s with CCCS-approved alternatives. See ITSP.40.111 for approved algorithms.",
			g.Primitive)
	case types.StatusDeprecated:
		return fmt.Sprintf(
			"Migrate from %s to CCCS-approved alternatives (e.g., AES, SHA-256). See ITSP.40.111 Annex A.",
			g.Primitive)
	case types.StatusConditionallyApproved:
		return fmt.Sprintf(
			"%s is conditionally approved. Conditions: %s. Recommended: Plan migration to post-quantum algorithms (CRYSTALS-Kyber, CRYSTALS-Dilithium).",
			g.Primitive, strings.Join(db.ApprovalConditions(g.Primitive), "; "))
	}
	return fmt.Sprintf(
		"Ensure %s implementation uses CMVP-validated cryptographic modules in FIPS-approved mode.",
		g.Primitive)
}

func cmvpValidations(result *types.AuditResult, db *algdb.Database, classification types.Classification) []CMVPValidation {
	var validations []CMVPValidation
	for _, f := range result.Findings {
		switch db.Status(f.Primitive) {
		case types.StatusApproved, types.StatusConditionallyApproved:
			v := CMVPValidation{
				AlgorithmUsed: f.Primitive.String(),
				RequiresCMVP:  db.CMVPRequired(classification),
			}
			resolveCMVP(&v, f.Context, db)
			validations = append(validations, v)
		}
	}
	return validations
}

// resolveCMVP matches the finding's source context against known crypto
// library packages and records the first active certificate covering the
// algorithm. Without a certificate, the validation is compliant only when
// the classification level does not mandate CMVP.
func resolveCMVP(v *CMVPValidation, context string, db *algdb.Database) {
	for _, cert := range db.CertificatesForLibrary(context) {
		if cert.Status != "active" || !certCovers(cert, v.AlgorithmUsed) {
			continue
		}
		impl, num := cert.ModuleName, cert.CertificateNumber
		v.Implementation = &impl
		v.CMVPCert = &num
		v.Compliant = true
		return
	}
	v.Compliant = !v.RequiresCMVP
}

func certCovers(cert algdb.CMVPCertificate, algorithm string) bool {
	for _, a := range cert.Algorithms {
		if a == algorithm {
			return true
		}
	}
	return false
}

func countValidated(validations []CMVPValidation) int {
	n := 0
	for _, v := range validations {
		if v.CMVPCert != nil {
			n++
		}
	}
	return n
}

func canadianRecommendations(result *types.AuditResult, assessment *assess.Assessment) []string {
	recs := []string{
		fmt.Sprintf(
			"ITSG-33 SC-13 Control Objective: Implement cryptographic protection in accordance with CCCS/CSE guidance for %s information.",
			assessment.Classification),
		"Use CMVP-validated cryptographic modules (FIPS 140-2/140-3) in FIPS-approved mode.",
	}

	if len(assessment.ProhibitedDetected) > 0 {
		recs = append(recs,
			"CRITICAL: Prohibited algorithms detected (MD5, SHA-1, DES, RC4). Immediate replacement required per ITSP.40.111.")
	}
	if len(assessment.DeprecatedDetected) > 0 {
		recs = append(recs,
			"HIGH PRIORITY: Deprecated algorithms detected (3DES, DSA). Plan migration to approved alternatives.")
	}
	if result.Stats.HighCount > 0 {
		recs = append(recs,
			"Quantum-vulnerable algorithms detected (RSA, ECDSA, ECDH, DH). Plan post-quantum migration by 2030 per CCCS guidance.",
			"Recommended PQC Algorithms: CRYSTALS-Kyber (key encapsulation), CRYSTALS-Dilithium (digital signatures), SPHINCS+ (stateless signatures).")
	}

	recs = append(recs,
		"Implement crypto-agility to facilitate algorithm transitions as CCCS guidance evolves.",
		"Maintain cryptographic inventory and ensure compliance with ITSP.40.111 and ITSP.40.062.",
		"Reference: ITSG-33 Annex 3A SC-13, ITSP.40.111 (Cryptographic Algorithms), ITSP.40.062 (Network Protocols), CMVP (Cryptographic Module Validation Program).")
	return recs
}
