// ABOUTME: Classification assessor joining audit findings against the approval database.
// ABOUTME: Produces the framework scores and status decisions the report layer renders.

package assess

import (
	"fmt"

	"github.com/arcqubit/pqcaudit/internal/algdb"
	"github.com/arcqubit/pqcaudit/internal/types"
)

// Group is one assessed unit: every finding for a single primitive.
type Group struct {
	Primitive       types.Primitive      `json:"primitive"`
	Findings        []types.Finding      `json:"findings"`
	HighestSeverity types.Severity       `json:"highest_severity"`
	ApprovalStatus  types.ApprovalStatus `json:"approval_status"`
	ITSPReference   string               `json:"itsp_reference"`
	Conditions      []string             `json:"conditions,omitempty"`

	// Classification levels for which the observed key size is acceptable.
	// Empty for prohibited and deprecated primitives regardless of size.
	AcceptableClassifications []types.Classification `json:"acceptable_classifications"`

	// Status under the generic (severity-driven) rules.
	GenericImplementation types.ImplementationStatus `json:"generic_implementation"`
	GenericAssessment     types.AssessmentStatus     `json:"generic_assessment"`

	// Status under the classification-aware (approval-driven) rules.
	ClassifiedImplementation types.ImplementationStatus `json:"classified_implementation"`
	ClassifiedAssessment     types.AssessmentStatus     `json:"classified_assessment"`
}

// Assessment is the complete compliance evaluation of one audit result
// against one classification level. It is a pure function of its inputs.
type Assessment struct {
	Classification types.Classification `json:"classification"`
	Groups         []Group              `json:"groups"`

	// Distinct algorithm names by category, in first-detection order.
	QuantumVulnerable  []string `json:"quantum_vulnerable_algorithms"`
	BrokenAlgorithms   []string `json:"broken_algorithms"`
	ProhibitedDetected []string `json:"prohibited_algorithms"`
	DeprecatedDetected []string `json:"deprecated_algorithms"`

	// Weak keys below the absolute 2048-bit floor ("RSA 1024-bit").
	WeakKeySizes []string `json:"weak_key_sizes"`
	// Keys failing this classification's minimums specifically.
	ClassificationViolations []string `json:"classification_violations"`

	// Framework scores.
	InverseRiskScore int `json:"inverse_risk_score"`
	PenaltyScore     int `json:"penalty_score"`

	// File-level status under the generic severity rules.
	GenericImplementation types.ImplementationStatus `json:"generic_implementation"`
	GenericAssessment     types.AssessmentStatus     `json:"generic_assessment"`

	// File-level status under the classification-aware rules.
	ClassifiedImplementation types.ImplementationStatus `json:"classified_implementation"`
	ClassifiedAssessment     types.AssessmentStatus     `json:"classified_assessment"`

	CMVPRequired      bool `json:"cmvp_required"`
	CMVPRequiredCount int  `json:"cmvp_required_count"`

	ITSP40111Compliant      bool `json:"itsp_40_111_compliant"`
	ClassificationCompliant bool `json:"classification_compliant"`
}

// Assessor evaluates audit results against the approval database.
type Assessor struct {
	db *algdb.Database
}

// New returns an assessor backed by the given database.
func New(db *algdb.Database) *Assessor {
	return &Assessor{db: db}
}

// Assess evaluates one audit result at one classification level. The input
// is not mutated; findings are grouped by primitive in first-detection order.
func (a *Assessor) Assess(result *types.AuditResult, classification types.Classification) *Assessment {
	assessment := &Assessment{
		Classification:   classification,
		InverseRiskScore: inverseRisk(result),
		CMVPRequired:     a.db.CMVPRequired(classification),
	}

	assessment.Groups = a.groupFindings(result, classification)
	a.categorize(result, classification, assessment)
	assessment.PenaltyScore = a.penaltyScore(result, assessment)

	assessment.GenericImplementation, assessment.GenericAssessment = genericStatus(result)
	assessment.ClassifiedImplementation, assessment.ClassifiedAssessment =
		a.classifiedStatus(result, classification)

	assessment.ITSP40111Compliant =
		len(assessment.ProhibitedDetected) == 0 && len(assessment.ClassificationViolations) == 0
	assessment.ClassificationCompliant = len(assessment.ClassificationViolations) == 0

	return assessment
}

// inverseRisk is the inverse-risk compliance score: 100 minus the aggregate
// risk, floored at 0. A clean file scores 100.
func inverseRisk(result *types.AuditResult) int {
	if result.Stats.TotalFindings == 0 {
		return 100
	}
	score := 100 - result.RiskScore
	if score < 0 {
		score = 0
	}
	return score
}

func (a *Assessor) groupFindings(result *types.AuditResult, classification types.Classification) []Group {
	index := make(map[types.Primitive]int)
	var groups []Group

	for _, f := range result.Findings {
		i, ok := index[f.Primitive]
		if !ok {
			i = len(groups)
			index[f.Primitive] = i
			groups = append(groups, a.newGroup(f.Primitive))
		}
		g := &groups[i]
		g.Findings = append(g.Findings, f)
		if f.Severity > g.HighestSeverity {
			g.HighestSeverity = f.Severity
		}
	}

	for i := range groups {
		g := &groups[i]
		g.AcceptableClassifications = a.acceptableClassifications(g)
		g.GenericImplementation, g.GenericAssessment = groupGenericStatus(g.HighestSeverity)
		g.ClassifiedImplementation, g.ClassifiedAssessment =
			groupClassifiedStatus(g.ApprovalStatus, g.HighestSeverity)
	}
	return groups
}

func (a *Assessor) newGroup(p types.Primitive) Group {
	return Group{
		Primitive:       p,
		HighestSeverity: types.SeverityLow,
		ApprovalStatus:  a.db.Status(p),
		ITSPReference:   a.db.ITSPReference(p),
		Conditions:      a.db.ApprovalConditions(p),
	}
}

// acceptableClassifications lists the levels at which the group's observed
// key size passes. Prohibited and deprecated primitives are acceptable
// nowhere. Without a captured key size, conditional approval carries over
// to every level.
func (a *Assessor) acceptableClassifications(g *Group) []types.Classification {
	switch g.ApprovalStatus {
	case types.StatusProhibited, types.StatusDeprecated:
		return nil
	}

	keySize := g.Findings[0].KeySize
	var acceptable []types.Classification
	for _, c := range types.AllClassifications {
		if keySize == nil {
			if g.ApprovalStatus == types.StatusApproved ||
				g.ApprovalStatus == types.StatusConditionallyApproved {
				acceptable = append(acceptable, c)
			}
			continue
		}
		if a.db.ValidateKeySize(g.Primitive, *keySize, c) {
			acceptable = append(acceptable, c)
		}
	}
	return acceptable
}

func (a *Assessor) categorize(result *types.AuditResult, classification types.Classification, out *Assessment) {
	seenQuantum := map[string]bool{}
	seenBroken := map[string]bool{}
	seenProhibited := map[string]bool{}
	seenDeprecated := map[string]bool{}
	seenWeak := map[string]bool{}
	seenViolation := map[string]bool{}

	for _, f := range result.Findings {
		name := f.Primitive.String()

		if f.Primitive.QuantumVulnerable() && !seenQuantum[name] {
			seenQuantum[name] = true
			out.QuantumVulnerable = append(out.QuantumVulnerable, name)
		}
		if f.Primitive.Broken() && !seenBroken[name] {
			seenBroken[name] = true
			out.BrokenAlgorithms = append(out.BrokenAlgorithms, name)
		}
		if a.db.IsProhibited(f.Primitive) && !seenProhibited[name] {
			seenProhibited[name] = true
			out.ProhibitedDetected = append(out.ProhibitedDetected, name)
		}
		if a.db.IsDeprecated(f.Primitive) && !seenDeprecated[name] {
			seenDeprecated[name] = true
			out.DeprecatedDetected = append(out.DeprecatedDetected, name)
		}

		if f.KeySize == nil {
			continue
		}
		pair := fmt.Sprintf("%s %d-bit", name, *f.KeySize)
		if *f.KeySize < 2048 && !seenWeak[pair] {
			seenWeak[pair] = true
			out.WeakKeySizes = append(out.WeakKeySizes, pair)
		}
		if !a.db.ValidateKeySize(f.Primitive, *f.KeySize, classification) && !seenViolation[pair] {
			seenViolation[pair] = true
			out.ClassificationViolations = append(out.ClassificationViolations, pair)
		}
	}

	for _, f := range result.Findings {
		switch a.db.Status(f.Primitive) {
		case types.StatusApproved, types.StatusConditionallyApproved:
			out.CMVPRequiredCount++
		}
	}
}

// penaltyScore is the classification-aware compliance score: start at 100
// and subtract per distinct prohibited name, deprecated name, key-size
// violation, and quantum-vulnerable family, saturating at 0.
func (a *Assessor) penaltyScore(result *types.AuditResult, assessment *Assessment) int {
	if result.Stats.TotalFindings == 0 {
		return 100
	}
	score := 100
	score -= len(assessment.ProhibitedDetected) * 40
	score -= len(assessment.DeprecatedDetected) * 20
	score -= len(assessment.ClassificationViolations) * 15
	score -= len(assessment.QuantumVulnerable) * 10
	if score < 0 {
		score = 0
	}
	return score
}

// genericStatus implements the severity-driven status rules: clean files
// are implemented/satisfied, criticals (or more than five highs) fail, and
// a small number of highs lands in the partial/other band.
func genericStatus(result *types.AuditResult) (types.ImplementationStatus, types.AssessmentStatus) {
	stats := result.Stats
	if stats.TotalFindings == 0 {
		return types.Implemented, types.Satisfied
	}
	if stats.CriticalCount > 0 || stats.HighCount > 5 {
		return types.PartiallyImplemented, types.NotSatisfied
	}
	if stats.HighCount > 0 {
		return types.PartiallyImplemented, types.OtherStatus
	}
	return types.Implemented, types.OtherStatus
}

// classifiedStatus implements the approval-driven status rules: any
// prohibited algorithm fails outright; deprecated algorithms or key-size
// violations degrade to partial/other.
func (a *Assessor) classifiedStatus(result *types.AuditResult, classification types.Classification) (types.ImplementationStatus, types.AssessmentStatus) {
	if result.Stats.TotalFindings == 0 {
		return types.Implemented, types.Satisfied
	}

	hasProhibited := false
	hasDeprecated := false
	hasViolation := false
	for _, f := range result.Findings {
		if a.db.IsProhibited(f.Primitive) {
			hasProhibited = true
		}
		if a.db.IsDeprecated(f.Primitive) {
			hasDeprecated = true
		}
		if f.KeySize != nil && !a.db.ValidateKeySize(f.Primitive, *f.KeySize, classification) {
			hasViolation = true
		}
	}

	if hasProhibited {
		return types.PartiallyImplemented, types.NotSatisfied
	}
	if hasDeprecated || hasViolation {
		return types.PartiallyImplemented, types.OtherStatus
	}
	return types.Implemented, types.OtherStatus
}

func groupGenericStatus(highest types.Severity) (types.ImplementationStatus, types.AssessmentStatus) {
	if highest >= types.SeverityHigh {
		return types.NotApplicable, types.NotSatisfied
	}
	return types.PartiallyImplemented, types.OtherStatus
}

func groupClassifiedStatus(status types.ApprovalStatus, highest types.Severity) (types.ImplementationStatus, types.AssessmentStatus) {
	switch status {
	case types.StatusProhibited:
		return types.NotApplicable, types.NotSatisfied
	case types.StatusDeprecated:
		return types.PartiallyImplemented, types.OtherStatus
	}
	if highest >= types.SeverityHigh {
		return types.PartiallyImplemented, types.OtherStatus
	}
	return types.Implemented, types.OtherStatus
}
