// ABOUTME: Finding and AuditResult types produced by the detection pipeline.
// ABOUTME: AuditResult keeps severity counts consistent as findings are added.

package types

// Finding is one detected occurrence of a crypto primitive at a specific
// source location. Immutable once added to an AuditResult.
type Finding struct {
	Primitive      Primitive `json:"primitive"`
	Severity       Severity  `json:"severity"`
	RiskScore      int       `json:"risk_score"`
	Line           int       `json:"line"`   // 1-based
	Column         int       `json:"column"` // 0-based offset of the regex match start
	Context        string    `json:"context"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
	KeySize        *int      `json:"key_size,omitempty"`
}

// AuditStats summarizes an audit.
type AuditStats struct {
	TotalFindings int `json:"total_findings"`
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	LinesScanned  int `json:"lines_scanned"`
}

// AuditResult is the complete outcome of auditing one source text. Findings
// are kept in scan order (line order, then rule order within a line).
type AuditResult struct {
	Findings        []Finding  `json:"findings"`
	RiskScore       int        `json:"risk_score"`
	Language        Language   `json:"language"`
	Recommendations []string   `json:"recommendations"`
	Stats           AuditStats `json:"stats"`
}

// NewAuditResult creates an empty result for the given language.
func NewAuditResult(language Language, linesScanned int) *AuditResult {
	return &AuditResult{
		Findings: []Finding{},
		Language: language,
		Stats:    AuditStats{LinesScanned: linesScanned},
	}
}

// AddFinding appends a finding and updates the severity counters, keeping
// the invariant that the per-severity counts always sum to len(Findings).
func (r *AuditResult) AddFinding(f Finding) {
	switch f.Severity {
	case SeverityCritical:
		r.Stats.CriticalCount++
	case SeverityHigh:
		r.Stats.HighCount++
	case SeverityMedium:
		r.Stats.MediumCount++
	case SeverityLow:
		r.Stats.LowCount++
	}
	r.Stats.TotalFindings++
	r.Findings = append(r.Findings, f)
}

// CalculateRiskScore sets the aggregate risk score: the integer-truncating
// mean of all finding scores, 0 when there are no findings. Deliberately
// unweighted; changing the formula changes observable scores.
func (r *AuditResult) CalculateRiskScore() {
	if len(r.Findings) == 0 {
		r.RiskScore = 0
		return
	}
	total := 0
	for _, f := range r.Findings {
		total += f.RiskScore
	}
	r.RiskScore = total / len(r.Findings)
}

// HasPrimitive reports whether any finding detected the given primitive.
func (r *AuditResult) HasPrimitive(p Primitive) bool {
	for _, f := range r.Findings {
		if f.Primitive == p {
			return true
		}
	}
	return false
}

// GenerateRecommendations fills in the summary migration guidance based on
// the severity mix and the primitive families present.
func (r *AuditResult) GenerateRecommendations() {
	if r.Stats.CriticalCount > 0 {
		r.Recommendations = append(r.Recommendations,
			"CRITICAL: Immediately migrate to quantum-safe algorithms (CRYSTALS-Kyber, CRYSTALS-Dilithium)")
	}
	if r.Stats.HighCount > 0 {
		r.Recommendations = append(r.Recommendations,
			"HIGH PRIORITY: Plan migration to post-quantum cryptography within 6-12 months")
	}
	if r.HasPrimitive(RSA) {
		r.Recommendations = append(r.Recommendations,
			"Replace RSA with CRYSTALS-Dilithium for digital signatures or CRYSTALS-Kyber for encryption")
	}
	if r.HasPrimitive(ECDSA) {
		r.Recommendations = append(r.Recommendations,
			"Replace ECDSA/ECDH with CRYSTALS-Dilithium (signatures) or CRYSTALS-Kyber (key exchange)")
	}
	if r.HasPrimitive(DiffieHellman) {
		r.Recommendations = append(r.Recommendations,
			"Replace Diffie-Hellman key exchange with CRYSTALS-Kyber or NTRU")
	}
	r.Recommendations = append(r.Recommendations,
		"Follow NIST Post-Quantum Cryptography Standardization guidelines: https://csrc.nist.gov/projects/post-quantum-cryptography")
}
