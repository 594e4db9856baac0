// ABOUTME: Line-oriented detector that matches source text against the rule registry.
// ABOUTME: Emits one finding per primitive per matching line, with key-size extraction.

package detector

import (
	"strconv"
	"strings"

	"github.com/arcqubit/pqcaudit/internal/registry"
	"github.com/arcqubit/pqcaudit/internal/risk"
	"github.com/arcqubit/pqcaudit/internal/types"
)

// Detector scans source lines against a compiled rule registry.
type Detector struct {
	registry *registry.Registry
}

// New returns a detector backed by the given registry.
func New(reg *registry.Registry) *Detector {
	return &Detector{registry: reg}
}

// Scan runs every rule against every line of source and returns findings in
// line order, with rules applied in registry declaration order within a line.
// Line numbers are 1-based; columns are 0-based byte offsets of the match.
func (d *Detector) Scan(source string) []types.Finding {
	var findings []types.Finding

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		for _, rule := range d.registry.Rules() {
			col, ok := rule.Match(line)
			if !ok {
				continue
			}
			findings = append(findings, d.buildFinding(&rule, line, i+1, col))
		}
	}
	return findings
}

func (d *Detector) buildFinding(rule *registry.Rule, line string, lineNum, col int) types.Finding {
	keySize := extractKeySize(rule, line)
	severity, score := risk.Score(rule.Primitive, keySize)

	return types.Finding{
		Primitive:      rule.Primitive,
		Severity:       severity,
		RiskScore:      score,
		Line:           lineNum,
		Column:         col,
		Context:        strings.TrimSpace(line),
		Message:        risk.Message(rule.Primitive, keySize),
		Recommendation: rule.Recommendation,
		KeySize:        keySize,
	}
}

func extractKeySize(rule *registry.Rule, line string) *int {
	if rule.KeySize == nil {
		return nil
	}
	m := rule.KeySize.FindStringSubmatch(line)
	if len(m) < 2 || m[1] == "" {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
