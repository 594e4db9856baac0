// ABOUTME: Compliance taxonomy shared by the assessor and report formatters.
// ABOUTME: Classification levels, approval statuses, and assessment statuses.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Classification is a Canadian security classification level. Values are
// ordered from least to most sensitive.
type Classification int

const (
	Unclassified Classification = iota
	ProtectedA
	ProtectedB
	ProtectedC
)

// AllClassifications lists the levels from least to most sensitive.
var AllClassifications = []Classification{
	Unclassified, ProtectedA, ProtectedB, ProtectedC,
}

func (c Classification) String() string {
	switch c {
	case Unclassified:
		return "Unclassified"
	case ProtectedA:
		return "Protected A"
	case ProtectedB:
		return "Protected B"
	case ProtectedC:
		return "Protected C"
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// DatabaseKey returns the key used in the classification requirements table.
func (c Classification) DatabaseKey() string {
	switch c {
	case Unclassified:
		return "UNCLASSIFIED"
	case ProtectedA:
		return "PROTECTED_A"
	case ProtectedB:
		return "PROTECTED_B"
	case ProtectedC:
		return "PROTECTED_C"
	}
	return ""
}

func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.DatabaseKey())
}

func (c *Classification) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, ok := ParseClassification(s)
	if !ok {
		return fmt.Errorf("unknown classification %q", s)
	}
	*c = level
	return nil
}

// ParseClassification resolves a classification name, case-insensitively,
// accepting both display ("Protected B") and key ("PROTECTED_B", "protected-b")
// spellings.
func ParseClassification(s string) (Classification, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(normalized)
	switch normalized {
	case "unclassified":
		return Unclassified, true
	case "protecteda":
		return ProtectedA, true
	case "protectedb":
		return ProtectedB, true
	case "protectedc":
		return ProtectedC, true
	}
	return 0, false
}

// ApprovalStatus is the regulatory acceptability tier of an algorithm.
type ApprovalStatus string

const (
	StatusApproved              ApprovalStatus = "approved"
	StatusConditionallyApproved ApprovalStatus = "conditionally-approved"
	StatusDeprecated            ApprovalStatus = "deprecated"
	StatusProhibited            ApprovalStatus = "prohibited"
	StatusUnderReview           ApprovalStatus = "under-review"
)

// Display returns the human-readable form, e.g. "Conditionally Approved".
func (s ApprovalStatus) Display() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusConditionallyApproved:
		return "Conditionally Approved"
	case StatusDeprecated:
		return "Deprecated"
	case StatusProhibited:
		return "Prohibited"
	case StatusUnderReview:
		return "Under Review"
	}
	return string(s)
}

// ParseApprovalStatus maps a dataset status string to the taxonomy. Unknown
// strings resolve to under-review, never to approved.
func ParseApprovalStatus(s string) ApprovalStatus {
	switch ApprovalStatus(s) {
	case StatusApproved, StatusConditionallyApproved, StatusDeprecated,
		StatusProhibited, StatusUnderReview:
		return ApprovalStatus(s)
	}
	return StatusUnderReview
}

// ImplementationStatus is the control implementation state reported for a
// file-level assessment.
type ImplementationStatus string

const (
	Implemented               ImplementationStatus = "implemented"
	PartiallyImplemented      ImplementationStatus = "partially-implemented"
	PlannedForImplementation  ImplementationStatus = "planned-for-implementation"
	AlternativeImplementation ImplementationStatus = "alternative-implementation"
	NotApplicable             ImplementationStatus = "not-applicable"
)

// AssessmentStatus is the control assessment outcome.
type AssessmentStatus string

const (
	Satisfied    AssessmentStatus = "satisfied"
	NotSatisfied AssessmentStatus = "not-satisfied"
	OtherStatus  AssessmentStatus = "other"
)
