// ABOUTME: Tests for the compliance report generators.
// ABOUTME: Builds a fixed audit result and checks each document's shape and content.

package report

import (
	"strings"
	"testing"

	"github.com/arcqubit/pqcaudit/internal/algdb"
	"github.com/arcqubit/pqcaudit/internal/assess"
	"github.com/arcqubit/pqcaudit/internal/types"
)

func intPtr(n int) *int { return &n }

func testAuditResult() *types.AuditResult {
	result := types.NewAuditResult(types.JavaScript, 100)
	result.AddFinding(types.Finding{
		Primitive:      types.RSA,
		Severity:       types.SeverityHigh,
		RiskScore:      85,
		Line:           10,
		Column:         5,
		Context:        "const rsa = crypto.generateKeyPair('rsa', { modulusLength: 2048 })",
		Message:        "RSA detected - quantum vulnerable",
		Recommendation: "Replace with CRYSTALS-Kyber",
		KeySize:        intPtr(2048),
	})
	result.AddFinding(types.Finding{
		Primitive:      types.MD5,
		Severity:       types.SeverityCritical,
		RiskScore:      100,
		Line:           15,
		Column:         10,
		Context:        "const hash = crypto.createHash('md5')",
		Message:        "MD5 is cryptographically broken",
		Recommendation: "Replace with SHA-256",
		KeySize:        nil,
	})
	result.CalculateRiskScore()
	result.GenerateRecommendations()
	return result
}

func testAssessment(t *testing.T, classification types.Classification) (*assess.Assessment, *algdb.Database, *types.AuditResult) {
	t.Helper()
	db, err := algdb.Load()
	if err != nil {
		t.Fatalf("failed to load database: %v", err)
	}
	result := testAuditResult()
	return assess.New(db).Assess(result, classification), db, result
}

func TestGenerateSC13(t *testing.T) {
	assessment, _, result := testAssessment(t, types.ProtectedA)

	report := GenerateSC13(result, assessment, "test.js")

	if report.Metadata.Title != "NIST 800-53 SC-13 Cryptographic Protection Assessment" {
		t.Errorf("unexpected title: %s", report.Metadata.Title)
	}
	if report.Metadata.ReportID == "" {
		t.Error("missing report ID")
	}
	if report.ControlAssessment.ControlID != "sc-13" {
		t.Errorf("unexpected control ID: %s", report.ControlAssessment.ControlID)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 grouped findings, got %d", len(report.Findings))
	}
	if report.Summary.TotalFindings != 2 {
		t.Errorf("expected 2 total findings, got %d", report.Summary.TotalFindings)
	}
	// MD5 is critical, so the control fails under the generic rules.
	if report.ControlAssessment.AssessmentStatus != types.NotSatisfied {
		t.Errorf("expected not-satisfied, got %s", report.ControlAssessment.AssessmentStatus)
	}
	for _, f := range report.Findings {
		if len(f.Evidence) == 0 {
			t.Errorf("finding %s has no evidence", f.FindingID)
		}
		for _, ev := range f.Evidence {
			if ev.SourceLocation == nil || ev.SourceLocation.FilePath != "test.js" {
				t.Error("evidence missing source location")
			}
		}
	}
}

func TestGenerateSC13DefaultsSourceName(t *testing.T) {
	assessment, _, result := testAssessment(t, types.ProtectedA)

	report := GenerateSC13(result, assessment, "")

	if !strings.HasPrefix(report.Findings[0].RelatedVulnerabilities[0], "source:") {
		t.Errorf("expected default source name, got %s",
			report.Findings[0].RelatedVulnerabilities[0])
	}
}

func TestGenerateOSCAL(t *testing.T) {
	assessment, _, result := testAssessment(t, types.ProtectedA)
	sc13 := GenerateSC13(result, assessment, "test.js")

	oscal := GenerateOSCAL(sc13)

	if oscal.OSCALVersion != "1.1.2" {
		t.Errorf("unexpected OSCAL version: %s", oscal.OSCALVersion)
	}
	if len(oscal.AssessmentResults.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(oscal.AssessmentResults.Results))
	}
	res := oscal.AssessmentResults.Results[0]
	if len(res.Findings) != len(sc13.Findings) {
		t.Errorf("expected %d findings, got %d", len(sc13.Findings), len(res.Findings))
	}
	if len(res.Observations) == 0 {
		t.Error("expected observations from evidence")
	}
	if res.ReviewedControls.ControlSelections[0].IncludeControls[0].ControlID != "sc-13" {
		t.Error("reviewed controls should include sc-13")
	}

	out, err := ExportJSON(oscal)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "oscal-version") || !strings.Contains(out, "assessment-results") {
		t.Error("exported JSON missing OSCAL envelope keys")
	}
}

func TestGenerateITSG33(t *testing.T) {
	assessment, db, result := testAssessment(t, types.ProtectedA)

	report := GenerateITSG33(result, assessment, db, "test.js")

	if report.ControlAssessment.ControlID != "ITSG-33 SC-13" {
		t.Errorf("unexpected control ID: %s", report.ControlAssessment.ControlID)
	}
	if report.ControlAssessment.Classification != types.ProtectedA {
		t.Errorf("unexpected classification: %s", report.ControlAssessment.Classification)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
	// MD5 is prohibited: the file-level status fails.
	if report.ControlAssessment.AssessmentStatus != types.NotSatisfied {
		t.Errorf("expected not-satisfied, got %s", report.ControlAssessment.AssessmentStatus)
	}
	if report.Summary.ITSP40111Compliant {
		t.Error("prohibited algorithm should break ITSP.40.111 compliance")
	}
	if len(report.Summary.CCCSProhibited) != 1 || report.Summary.CCCSProhibited[0] != "MD5" {
		t.Errorf("unexpected prohibited list: %v", report.Summary.CCCSProhibited)
	}
	if !contains(report.Summary.CCCSApproved, "AES") {
		t.Errorf("AES should be approved for Protected A: %v", report.Summary.CCCSApproved)
	}

	for _, f := range report.Findings {
		if len(f.ITSPReferences) == 0 {
			t.Errorf("finding for %v missing ITSP references", f.Description)
		}
		switch f.CCCSApprovalStatus {
		case types.StatusProhibited:
			if f.CMVPValidation != nil {
				t.Error("prohibited algorithms carry no CMVP validation entry")
			}
			if len(f.ApplicableClassifications) != 0 {
				t.Error("prohibited algorithms are acceptable nowhere")
			}
		case types.StatusConditionallyApproved:
			if f.CMVPValidation == nil {
				t.Error("conditionally approved algorithms need a CMVP validation entry")
			} else if !f.CMVPValidation.RequiresCMVP {
				t.Error("Protected A requires CMVP validation")
			}
		}
	}
}

func TestGenerateITSG33CMVPResolution(t *testing.T) {
	db, err := algdb.Load()
	if err != nil {
		t.Fatalf("failed to load database: %v", err)
	}

	result := types.NewAuditResult(types.Python, 50)
	result.AddFinding(types.Finding{
		Primitive: types.RSA,
		Severity:  types.SeverityHigh,
		RiskScore: 75,
		Line:      3,
		Column:    0,
		Context:   "key = pyopenssl_rsa_generate(3072)",
		Message:   "RSA detected - quantum vulnerable",
		KeySize:   intPtr(3072),
	})
	result.AddFinding(types.Finding{
		Primitive: types.ECDH,
		Severity:  types.SeverityHigh,
		RiskScore: 75,
		Line:      8,
		Column:    0,
		Context:   "shared = javax.crypto.KeyAgreement.getInstance(\"ECDH\")",
		Message:   "ECDH detected - quantum vulnerable",
	})
	result.CalculateRiskScore()

	assessment := assess.New(db).Assess(result, types.ProtectedB)
	report := GenerateITSG33(result, assessment, db, "keys.py")

	if len(report.CMVPValidations) != 2 {
		t.Fatalf("expected 2 CMVP validations, got %d", len(report.CMVPValidations))
	}
	for _, v := range report.CMVPValidations {
		switch v.AlgorithmUsed {
		case "RSA":
			// The openssl package mapping resolves to an active certificate.
			if v.CMVPCert == nil || *v.CMVPCert != "4282" {
				t.Errorf("RSA validation missing OpenSSL certificate: %+v", v)
			}
			if v.Implementation == nil || *v.Implementation != "OpenSSL FIPS Provider" {
				t.Errorf("RSA validation missing module name: %+v", v)
			}
			if !v.Compliant {
				t.Error("certificate-backed validation should be compliant")
			}
		case "ECDH":
			// The JCE mapping's only certificate is historical and does not
			// cover ECDH, so no certificate resolves.
			if v.CMVPCert != nil {
				t.Errorf("ECDH validation should have no certificate: %+v", v)
			}
			if v.Compliant {
				t.Error("Protected B mandates CMVP; unresolved validation is non-compliant")
			}
		default:
			t.Errorf("unexpected validation for %s", v.AlgorithmUsed)
		}
	}

	if report.Summary.CMVPValidatedCount != 1 {
		t.Errorf("CMVPValidatedCount = %d, want 1", report.Summary.CMVPValidatedCount)
	}

	for _, f := range report.Findings {
		if f.CCCSApprovalStatus != types.StatusConditionallyApproved {
			continue
		}
		if f.CMVPValidation == nil {
			t.Fatalf("missing CMVP validation on %s finding", f.Description)
		}
		if strings.Contains(f.Description, "RSA") && f.CMVPValidation.CMVPCert == nil {
			t.Error("group-level RSA validation should resolve a certificate")
		}
	}
}

func TestGenerateITSG33Remediations(t *testing.T) {
	assessment, db, result := testAssessment(t, types.ProtectedB)

	report := GenerateITSG33(result, assessment, db, "test.js")

	for _, f := range report.Findings {
		switch f.CCCSApprovalStatus {
		case types.StatusProhibited:
			if !strings.Contains(f.Remediation, "IMMEDIATE ACTION REQUIRED") {
				t.Errorf("prohibited remediation too soft: %s", f.Remediation)
			}
		case types.StatusConditionallyApproved:
			if !strings.Contains(f.Remediation, "Conditions:") {
				t.Errorf("conditional remediation missing conditions: %s", f.Remediation)
			}
		}
	}
}

func TestGenerateUnified(t *testing.T) {
	assessment, db, result := testAssessment(t, types.ProtectedB)

	report := GenerateUnified(result, assessment, db, "test.js")

	if report.NISTSC13Assessment.ControlID != "sc-13" {
		t.Errorf("unexpected NIST control ID: %s", report.NISTSC13Assessment.ControlID)
	}
	if report.ITSG33Assessment.ControlID != "ITSG-33 SC-13" {
		t.Errorf("unexpected ITSG-33 control ID: %s", report.ITSG33Assessment.ControlID)
	}
	if len(report.ControlMapping) != 1 {
		t.Fatalf("expected 1 control mapping, got %d", len(report.ControlMapping))
	}
	if report.ControlMapping[0].NISTControlID != "SC-13" {
		t.Errorf("unexpected mapping: %+v", report.ControlMapping[0])
	}
	if len(report.Recommendations) < 3 {
		t.Errorf("expected merged recommendations, got %d", len(report.Recommendations))
	}
	if len(report.NISTFindings) != len(report.CanadianFindings) {
		t.Errorf("finding counts diverge: %d vs %d",
			len(report.NISTFindings), len(report.CanadianFindings))
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	assessment, _, result := testAssessment(t, types.ProtectedA)
	report := GenerateSC13(result, assessment, "test.js")

	out, err := ExportJSON(report)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "sc-13") {
		t.Error("exported JSON missing control ID")
	}
	if !strings.Contains(out, "Cryptographic Protection") {
		t.Error("exported JSON missing control name")
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
