// ABOUTME: OSCAL 1.1.2 assessment-results export built from an SC-13 report.
// ABOUTME: Field names follow the OSCAL JSON schema's kebab-case convention.

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arcqubit/pqcaudit/internal/types"
)

// OSCALDocument is the top-level assessment-results envelope.
type OSCALDocument struct {
	OSCALVersion      string            `json:"oscal-version"`
	AssessmentResults AssessmentResults `json:"assessment-results"`
}

type AssessmentResults struct {
	UUID      string        `json:"uuid"`
	Metadata  OSCALMetadata `json:"metadata"`
	ImportSSP ImportSSP     `json:"import-ssp"`
	Results   []OSCALResult `json:"results"`
}

type OSCALMetadata struct {
	Title        string  `json:"title"`
	Published    string  `json:"published"`
	LastModified string  `json:"last-modified"`
	Version      string  `json:"version"`
	OSCALVersion string  `json:"oscal-version"`
	Roles        []Role  `json:"roles,omitempty"`
	Parties      []Party `json:"parties,omitempty"`
}

type Role struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Party struct {
	UUID string `json:"uuid"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type ImportSSP struct {
	Href string `json:"href"`
}

type OSCALResult struct {
	UUID             string           `json:"uuid"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Start            string           `json:"start"`
	End              string           `json:"end,omitempty"`
	ReviewedControls ReviewedControls `json:"reviewed-controls"`
	Observations     []Observation    `json:"observations"`
	Findings         []OSCALFinding   `json:"findings"`
}

type ReviewedControls struct {
	ControlSelections []ControlSelection `json:"control-selections"`
}

type ControlSelection struct {
	IncludeControls []ControlRef `json:"include-controls"`
}

type ControlRef struct {
	ControlID string `json:"control-id"`
}

type Observation struct {
	UUID             string             `json:"uuid"`
	Description      string             `json:"description"`
	Methods          []string           `json:"methods"`
	Types            []string           `json:"types,omitempty"`
	Collected        string             `json:"collected,omitempty"`
	RelevantEvidence []RelevantEvidence `json:"relevant-evidence,omitempty"`
}

type RelevantEvidence struct {
	Href        string `json:"href"`
	Description string `json:"description"`
}

type OSCALFinding struct {
	UUID                 string               `json:"uuid"`
	Title                string               `json:"title"`
	Description          string               `json:"description"`
	Target               Target               `json:"target"`
	ImplementationStatus ImplementationState  `json:"implementation-status"`
	RelatedObservations  []RelatedObservation `json:"related-observations,omitempty"`
}

type Target struct {
	Type     string        `json:"type"`
	TargetID string        `json:"target-id"`
	Status   *TargetStatus `json:"status,omitempty"`
}

type TargetStatus struct {
	State string `json:"state"`
}

type ImplementationState struct {
	State string `json:"state"`
}

type RelatedObservation struct {
	ObservationUUID string `json:"observation-uuid"`
}

// GenerateOSCAL converts an SC-13 report into OSCAL assessment results.
func GenerateOSCAL(sc13 *SC13Report) *OSCALDocument {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339)

	var observations []Observation
	for _, finding := range sc13.Findings {
		for _, ev := range finding.Evidence {
			obs := Observation{
				UUID:        uuid.NewString(),
				Description: ev.Description,
				Methods:     []string{"TEST"},
				Types:       []string{ev.EvidenceType},
				Collected:   ev.CollectedAt,
			}
			if loc := ev.SourceLocation; loc != nil {
				obs.RelevantEvidence = []RelevantEvidence{{
					Href:        fmt.Sprintf("#%s:%d", loc.FilePath, loc.Line),
					Description: fmt.Sprintf("Code location: %s:%d", loc.FilePath, loc.Line),
				}}
			}
			observations = append(observations, obs)
		}
	}

	var related []RelatedObservation
	for _, obs := range observations {
		related = append(related, RelatedObservation{ObservationUUID: obs.UUID})
	}

	var findings []OSCALFinding
	for _, finding := range sc13.Findings {
		findings = append(findings, OSCALFinding{
			UUID:        uuid.NewString(),
			Title:       fmt.Sprintf("SC-13 Finding: %s", firstSentence(finding.Description)),
			Description: finding.Description,
			Target: Target{
				Type:     "objective-id",
				TargetID: "sc-13",
				Status:   &TargetStatus{State: string(finding.AssessmentStatus)},
			},
			ImplementationStatus: ImplementationState{
				State: oscalImplementationState(finding.ImplementationStatus),
			},
			RelatedObservations: related,
		})
	}

	result := OSCALResult{
		UUID:  uuid.NewString(),
		Title: "Quantum-Safe Cryptography Assessment",
		Description: fmt.Sprintf(
			"Assessment of cryptographic implementations against NIST 800-53 SC-13 requirements. Detected %d findings across %d lines of code.",
			sc13.Summary.TotalFindings, sc13.Summary.LinesScanned),
		Start: timestamp,
		End:   timestamp,
		ReviewedControls: ReviewedControls{
			ControlSelections: []ControlSelection{{
				IncludeControls: []ControlRef{{ControlID: "sc-13"}},
			}},
		},
		Observations: observations,
		Findings:     findings,
	}

	return &OSCALDocument{
		OSCALVersion: oscalVersion,
		AssessmentResults: AssessmentResults{
			UUID: uuid.NewString(),
			Metadata: OSCALMetadata{
				Title:        "Cryptographic Protection Assessment Results",
				Published:    sc13.Metadata.Published,
				LastModified: sc13.Metadata.LastModified,
				Version:      sc13.Metadata.Version,
				OSCALVersion: oscalVersion,
				Roles:        []Role{{ID: "assessor", Title: "Security Assessor"}},
				Parties: []Party{{
					UUID: uuid.NewString(),
					Type: "organization",
					Name: "Security Assessment Team",
				}},
			},
			ImportSSP: ImportSSP{Href: "#system-security-plan"},
			Results:   []OSCALResult{result},
		},
	}
}

// oscalImplementationState maps the internal taxonomy to OSCAL's state
// vocabulary, which uses "partial" rather than "partially-implemented".
func oscalImplementationState(status types.ImplementationStatus) string {
	switch status {
	case types.Implemented:
		return "implemented"
	case types.PartiallyImplemented:
		return "partial"
	case types.PlannedForImplementation:
		return "planned"
	case types.AlternativeImplementation:
		return "alternative"
	case types.NotApplicable:
		return "not-applicable"
	}
	return "not-applicable"
}

func firstSentence(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}
