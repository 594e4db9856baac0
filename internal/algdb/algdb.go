// ABOUTME: Embedded CCCS algorithm approval database derived from ITSP.40.111.
// ABOUTME: Answers approval status, key-size, and CMVP questions for the assessor.

package algdb

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/arcqubit/pqcaudit/internal/types"
)

//go:embed data/cccs_algorithms.json data/cmvp_certificates.json
var dataFS embed.FS

// AlgorithmRecord is one algorithm's approval entry.
type AlgorithmRecord struct {
	Algorithm        string   `json:"algorithm"`
	CCCSStatus       string   `json:"cccs_status"`
	ITSPReference    string   `json:"itsp_reference"`
	ApprovedKeySizes []int    `json:"approved_key_sizes"`
	ApprovedModes    []string `json:"approved_modes"`
	CMVPRequired     bool     `json:"cmvp_required"`
	Conditions       []string `json:"conditions"`
	SunsetDate       *string  `json:"sunset_date"`
	Description      string   `json:"description"`
}

// Status returns the record's approval status as a typed value.
func (r *AlgorithmRecord) Status() types.ApprovalStatus {
	return types.ParseApprovalStatus(r.CCCSStatus)
}

// ClassificationRequirement holds the minimum strengths for one
// classification level.
type ClassificationRequirement struct {
	MinimumAESKeySize int      `json:"minimum_aes_key_size"`
	MinimumRSAKeySize int      `json:"minimum_rsa_key_size"`
	MinimumECCKeySize int      `json:"minimum_ecc_key_size"`
	ApprovedHash      []string `json:"approved_hash"`
	CMVPRequired      bool     `json:"cmvp_required"`
}

// Metadata describes a dataset's provenance.
type Metadata struct {
	Version     string `json:"version"`
	Updated     string `json:"updated"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// CMVPCertificate is one validated-module certificate.
type CMVPCertificate struct {
	CertificateNumber string   `json:"certificate_number"`
	Vendor            string   `json:"vendor"`
	ModuleName        string   `json:"module_name"`
	ValidationLevel   string   `json:"validation_level"`
	Algorithms        []string `json:"algorithms"`
	ExpiryDate        *string  `json:"expiry_date"`
	Status            string   `json:"status"`
	Description       string   `json:"description"`
}

// LibraryMapping links a crypto library to its CMVP certificates.
type LibraryMapping struct {
	LibraryName     string   `json:"library_name"`
	CommonPackages  []string `json:"common_packages"`
	CMVPCertNumbers []string `json:"cmvp_cert_numbers"`
	Notes           string   `json:"notes"`
}

type algorithmFile struct {
	Metadata                   Metadata                             `json:"metadata"`
	Algorithms                 map[string]AlgorithmRecord           `json:"algorithms"`
	ClassificationRequirements map[string]ClassificationRequirement `json:"classification_requirements"`
}

type cmvpFile struct {
	Metadata        Metadata                  `json:"metadata"`
	Certificates    []CMVPCertificate         `json:"certificates"`
	LibraryMappings map[string]LibraryMapping `json:"library_mappings"`
}

// Database is the loaded, read-only approval dataset. Safe for concurrent
// use after Load returns.
type Database struct {
	algorithms algorithmFile
	cmvp       cmvpFile
}

var (
	loadOnce sync.Once
	loaded   *Database
	loadErr  error
)

// Load parses the embedded datasets once and returns the shared database.
func Load() (*Database, error) {
	loadOnce.Do(func() {
		db := &Database{}

		raw, err := dataFS.ReadFile("data/cccs_algorithms.json")
		if err != nil {
			loadErr = fmt.Errorf("reading algorithm dataset: %w", err)
			return
		}
		if err := json.Unmarshal(raw, &db.algorithms); err != nil {
			loadErr = fmt.Errorf("parsing algorithm dataset: %w", err)
			return
		}

		raw, err = dataFS.ReadFile("data/cmvp_certificates.json")
		if err != nil {
			loadErr = fmt.Errorf("reading CMVP dataset: %w", err)
			return
		}
		if err := json.Unmarshal(raw, &db.cmvp); err != nil {
			loadErr = fmt.Errorf("parsing CMVP dataset: %w", err)
			return
		}

		loaded = db
	})
	return loaded, loadErr
}

// Lookup returns the record for an algorithm name, or nil if unknown.
func (db *Database) Lookup(name string) *AlgorithmRecord {
	rec, ok := db.algorithms.Algorithms[name]
	if !ok {
		return nil
	}
	return &rec
}

// Status returns the approval status for a detected primitive. Unknown
// primitives fall back to under-review, never approved.
func (db *Database) Status(p types.Primitive) types.ApprovalStatus {
	rec := db.Lookup(p.DatabaseKey())
	if rec == nil {
		return types.StatusUnderReview
	}
	return rec.Status()
}

// IsProhibited reports whether the primitive is prohibited for use.
func (db *Database) IsProhibited(p types.Primitive) bool {
	return db.Status(p) == types.StatusProhibited
}

// IsDeprecated reports whether the primitive is deprecated.
func (db *Database) IsDeprecated(p types.Primitive) bool {
	return db.Status(p) == types.StatusDeprecated
}

// Requirements returns the minimum strengths for a classification level.
func (db *Database) Requirements(c types.Classification) (ClassificationRequirement, bool) {
	req, ok := db.algorithms.ClassificationRequirements[c.DatabaseKey()]
	return req, ok
}

// ValidateKeySize reports whether a detected key size meets the minimum
// for the classification level. Primitives without a size requirement in
// this context validate trivially.
func (db *Database) ValidateKeySize(p types.Primitive, keySize int, c types.Classification) bool {
	req, ok := db.Requirements(c)
	if !ok {
		return false
	}
	switch p {
	case types.RSA:
		return keySize >= req.MinimumRSAKeySize
	case types.ECDSA, types.ECDH:
		return keySize >= req.MinimumECCKeySize
	}
	return true
}

// CMVPRequired reports whether module validation is mandatory at the level.
func (db *Database) CMVPRequired(c types.Classification) bool {
	req, ok := db.Requirements(c)
	return ok && req.CMVPRequired
}

// ApprovedAlgorithms lists algorithms approved at the classification level,
// gating key-sized algorithms on the level's minimums.
func (db *Database) ApprovedAlgorithms(c types.Classification) []string {
	req, ok := db.Requirements(c)
	if !ok {
		return nil
	}
	var names []string
	for name, rec := range db.algorithms.Algorithms {
		if rec.Status() != types.StatusApproved {
			continue
		}
		switch rec.Algorithm {
		case "AES":
			if !anyAtLeast(rec.ApprovedKeySizes, req.MinimumAESKeySize) {
				continue
			}
		case "RSA":
			if !anyAtLeast(rec.ApprovedKeySizes, req.MinimumRSAKeySize) {
				continue
			}
		}
		names = append(names, name)
	}
	return names
}

// ProhibitedAlgorithms lists every prohibited algorithm name.
func (db *Database) ProhibitedAlgorithms() []string {
	return db.namesWithStatus(types.StatusProhibited)
}

// DeprecatedAlgorithms lists every deprecated algorithm name.
func (db *Database) DeprecatedAlgorithms() []string {
	return db.namesWithStatus(types.StatusDeprecated)
}

func anyAtLeast(sizes []int, min int) bool {
	for _, size := range sizes {
		if size >= min {
			return true
		}
	}
	return false
}

func (db *Database) namesWithStatus(status types.ApprovalStatus) []string {
	var names []string
	for name, rec := range db.algorithms.Algorithms {
		if rec.Status() == status {
			names = append(names, name)
		}
	}
	return names
}

// ITSPReference returns the ITSP.40.111 section for a primitive, with the
// document itself as fallback for unknown entries.
func (db *Database) ITSPReference(p types.Primitive) string {
	rec := db.Lookup(p.DatabaseKey())
	if rec == nil {
		return "ITSP.40.111"
	}
	return rec.ITSPReference
}

// ApprovalConditions returns the use conditions for conditionally approved
// primitives, empty for everything else.
func (db *Database) ApprovalConditions(p types.Primitive) []string {
	switch p {
	case types.RSA, types.ECDSA, types.ECDH, types.DiffieHellman:
	default:
		return nil
	}
	rec := db.Lookup(p.DatabaseKey())
	if rec == nil {
		return nil
	}
	return rec.Conditions
}

// Certificate returns the CMVP certificate with the given number, or nil.
func (db *Database) Certificate(number string) *CMVPCertificate {
	for i := range db.cmvp.Certificates {
		if db.cmvp.Certificates[i].CertificateNumber == number {
			return &db.cmvp.Certificates[i]
		}
	}
	return nil
}

// CertificatesForLibrary resolves a library name to its CMVP certificates,
// trying an exact mapping key first and then substring matches against
// known package names.
func (db *Database) CertificatesForLibrary(library string) []CMVPCertificate {
	if mapping, ok := db.cmvp.LibraryMappings[library]; ok {
		return db.certificatesFor(mapping)
	}
	lower := strings.ToLower(library)
	for _, mapping := range db.cmvp.LibraryMappings {
		for _, pkg := range mapping.CommonPackages {
			if strings.Contains(lower, strings.ToLower(pkg)) {
				return db.certificatesFor(mapping)
			}
		}
	}
	return nil
}

func (db *Database) certificatesFor(mapping LibraryMapping) []CMVPCertificate {
	var certs []CMVPCertificate
	for _, num := range mapping.CMVPCertNumbers {
		if cert := db.Certificate(num); cert != nil {
			certs = append(certs, *cert)
		}
	}
	return certs
}

// Metadata returns the algorithm dataset's provenance record.
func (db *Database) Metadata() Metadata {
	return db.algorithms.Metadata
}
