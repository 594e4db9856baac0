// ABOUTME: Common types shared across the pqcaudit system.
// ABOUTME: Defines the crypto primitive taxonomy, severities, languages, and findings.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Primitive identifies a cryptographic algorithm family that the scanner
// can detect. The set is closed: adding a value requires both a detection
// rule in the pattern registry and an entry in the algorithm database, and
// the registry/database consistency tests fail until both exist.
type Primitive int

const (
	RSA Primitive = iota
	ECDSA
	ECDH
	DSA
	DiffieHellman
	SHA1
	MD5
	DES
	TripleDES
	RC4
)

// AllPrimitives lists every detectable primitive in declaration order.
var AllPrimitives = []Primitive{
	RSA, ECDSA, ECDH, DSA, DiffieHellman, SHA1, MD5, DES, TripleDES, RC4,
}

// String returns the display name, e.g. "RSA" or "SHA-1".
func (p Primitive) String() string {
	switch p {
	case RSA:
		return "RSA"
	case ECDSA:
		return "ECDSA"
	case ECDH:
		return "ECDH"
	case DSA:
		return "DSA"
	case DiffieHellman:
		return "Diffie-Hellman"
	case SHA1:
		return "SHA-1"
	case MD5:
		return "MD5"
	case DES:
		return "DES"
	case TripleDES:
		return "3DES"
	case RC4:
		return "RC4"
	}
	return fmt.Sprintf("Primitive(%d)", int(p))
}

// DatabaseKey returns the canonical name used to key the algorithm database.
func (p Primitive) DatabaseKey() string {
	if p == DiffieHellman {
		return "DH"
	}
	return p.String()
}

// QuantumVulnerable reports whether the primitive is broken by Shor's
// algorithm on a large quantum computer (but not necessarily classically).
func (p Primitive) QuantumVulnerable() bool {
	switch p {
	case RSA, ECDSA, ECDH, DSA, DiffieHellman:
		return true
	}
	return false
}

// Broken reports whether the primitive has known classical attacks making
// it unsafe regardless of quantum computing.
func (p Primitive) Broken() bool {
	switch p {
	case MD5, SHA1, DES, RC4:
		return true
	}
	return false
}

func (p Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Primitive) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, candidate := range AllPrimitives {
		if candidate.String() == s || candidate.DatabaseKey() == s {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown crypto primitive %q", s)
}

// Severity grades a finding. Values are ordered: comparisons with < and >
// follow increasing severity.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	case "critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", str)
	}
	return nil
}

// Language tags the audited source. The tag is informational only; the
// detector's pattern matching is language-agnostic.
type Language int

const (
	Rust Language = iota
	JavaScript
	TypeScript
	Python
	Java
	Go
	Cpp
	CSharp
)

func (l Language) String() string {
	switch l {
	case Rust:
		return "rust"
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	case Python:
		return "python"
	case Java:
		return "java"
	case Go:
		return "go"
	case Cpp:
		return "cpp"
	case CSharp:
		return "csharp"
	}
	return fmt.Sprintf("Language(%d)", int(l))
}

func (l Language) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Language) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	lang, ok := ParseLanguage(s)
	if !ok {
		return fmt.Errorf("unknown language %q", s)
	}
	*l = lang
	return nil
}

// ParseLanguage resolves a language tag or short alias, case-insensitively.
func ParseLanguage(tag string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "rust", "rs":
		return Rust, true
	case "javascript", "js":
		return JavaScript, true
	case "typescript", "ts":
		return TypeScript, true
	case "python", "py":
		return Python, true
	case "java":
		return Java, true
	case "go", "golang":
		return Go, true
	case "cpp", "c++", "cxx":
		return Cpp, true
	case "csharp", "cs", "c#":
		return CSharp, true
	}
	return 0, false
}

// LanguageForExtension maps a file extension (without dot) to a language.
// Used by the directory scanner to decide which files to audit.
func LanguageForExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case "rs":
		return Rust, true
	case "js", "mjs":
		return JavaScript, true
	case "ts":
		return TypeScript, true
	case "py":
		return Python, true
	case "java":
		return Java, true
	case "go":
		return Go, true
	case "cpp", "cc", "cxx":
		return Cpp, true
	case "cs":
		return CSharp, true
	}
	return 0, false
}
