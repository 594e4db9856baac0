// ABOUTME: Immutable pattern registry binding crypto primitives to detection rules.
// ABOUTME: Rules carry compiled regexes, remediation hints, and key-size extractors.

package registry

import (
	"regexp"

	"github.com/arcqubit/pqcaudit/internal/types"
)

// Rule binds one primitive to its text-matching rules. A rule matches a line
// when any of its matchers does; the finding's column is the start offset of
// the earliest match. KeySize, when set, captures a numeric key size from
// the line (capture group 1).
type Rule struct {
	Primitive      types.Primitive
	Matchers       []*regexp.Regexp
	KeySize        *regexp.Regexp
	Recommendation string
}

// Match returns the start offset of the earliest matcher hit, or (0, false)
// when no matcher applies. Matching is case-insensitive by construction.
func (r *Rule) Match(line string) (int, bool) {
	column := -1
	for _, m := range r.Matchers {
		if loc := m.FindStringIndex(line); loc != nil {
			if column < 0 || loc[0] < column {
				column = loc[0]
			}
		}
	}
	if column < 0 {
		return 0, false
	}
	return column, true
}

// Registry is a fixed set of detection rules, one per primitive, constructed
// once and shared read-only across concurrent scans.
type Registry struct {
	rules []Rule
}

// Rules returns the rules in registry order. Callers must not mutate them.
func (reg *Registry) Rules() []Rule {
	return reg.rules
}

// RuleFor returns the rule for the given primitive.
func (reg *Registry) RuleFor(p types.Primitive) (*Rule, bool) {
	for i := range reg.rules {
		if reg.rules[i].Primitive == p {
			return &reg.rules[i], true
		}
	}
	return nil, false
}

// New compiles the default detection rule set. Every member of
// types.AllPrimitives has exactly one rule; the registry consistency test
// enforces this.
func New() *Registry {
	return &Registry{rules: []Rule{
		{
			Primitive: types.RSA,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(rsa)[^a-zA-Z]*(\d{3,4})?|(generate.*rsa.*key|rsa.*keygen)`),
				regexp.MustCompile(`(?i)(rsa\.generate|generatekeypair.*rsa|keypairgenerator\.getinstance.*rsa|rsa\.generatekey)`),
			},
			KeySize:        regexp.MustCompile(`(?i)rsa[^0-9]*(512|1024|2048|3072|4096|8192)`),
			Recommendation: "Replace with CRYSTALS-Dilithium (signatures) or CRYSTALS-Kyber (encryption)",
		},
		{
			Primitive: types.ECDSA,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(ecdsa|ecc|elliptic.*curve|secp256k1|secp384r1|prime256v1|p-256|p-384|p-521)`),
			},
			Recommendation: "Replace with CRYSTALS-Dilithium or SPHINCS+ for post-quantum signatures",
		},
		{
			Primitive: types.ECDH,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(ecdh|elliptic.*diffie|curve25519)`),
			},
			Recommendation: "Replace with CRYSTALS-Kyber or NTRU for quantum-safe key exchange",
		},
		{
			Primitive: types.DSA,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(dsa)[^a-zA-Z]|(digital.*signature.*algorithm)`),
			},
			Recommendation: "Replace with CRYSTALS-Dilithium for post-quantum digital signatures",
		},
		{
			Primitive: types.DiffieHellman,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(diffie.*hellman|dh_|dhe)`),
			},
			Recommendation: "Replace with CRYSTALS-Kyber or FrodoKEM for quantum-safe key encapsulation",
		},
		{
			Primitive: types.SHA1,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(sha-?1)[^0-9]`),
			},
			Recommendation: "Replace with SHA-256, SHA-384, or SHA-512",
		},
		{
			Primitive: types.MD5,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)md5`),
			},
			Recommendation: "Replace with SHA-256 or SHA-3",
		},
		{
			Primitive: types.DES,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(des_|_des|\.des|des\.|\bdes\b)`),
			},
			Recommendation: "Replace with AES-256 or ChaCha20",
		},
		{
			Primitive: types.TripleDES,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(3des|tripledes|desede)`),
			},
			Recommendation: "Replace with AES-256 or ChaCha20-Poly1305",
		},
		{
			Primitive: types.RC4,
			Matchers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(rc4|arcfour)`),
			},
			Recommendation: "Replace with AES-GCM or ChaCha20-Poly1305",
		},
	}}
}
