// ABOUTME: Risk scoring policy for detected crypto primitives.
// ABOUTME: Single source of truth for severity grades, numeric scores, and messages.

package risk

import (
	"fmt"

	"github.com/arcqubit/pqcaudit/internal/types"
)

// Score returns the severity grade and numeric risk score (0-100) for a
// primitive and optional key size. This table is the only place these
// numbers live; the detector and assessor both read from it. An absent RSA
// key size is treated as unknown, never as safe.
func Score(p types.Primitive, keySize *int) (types.Severity, int) {
	switch p {
	case types.RSA:
		switch {
		case keySize == nil:
			return types.SeverityHigh, 85
		case *keySize < 2048:
			return types.SeverityCritical, 100
		case *keySize < 4096:
			return types.SeverityHigh, 85
		default:
			return types.SeverityHigh, 80
		}
	case types.ECDSA, types.ECDH:
		return types.SeverityHigh, 85
	case types.DSA:
		return types.SeverityHigh, 90
	case types.DiffieHellman:
		return types.SeverityHigh, 85
	case types.SHA1:
		return types.SeverityCritical, 95
	case types.MD5:
		return types.SeverityCritical, 100
	case types.DES:
		return types.SeverityCritical, 95
	case types.TripleDES:
		return types.SeverityHigh, 80
	case types.RC4:
		return types.SeverityCritical, 95
	}
	return types.SeverityHigh, 85
}

// Message describes why the primitive was flagged, specialized by key size
// where one was captured.
func Message(p types.Primitive, keySize *int) string {
	switch p {
	case types.RSA:
		switch {
		case keySize == nil:
			return "RSA detected - vulnerable to quantum attacks via Shor's algorithm"
		case *keySize < 2048:
			return fmt.Sprintf("RSA with %d-bit key is critically vulnerable to quantum attacks", *keySize)
		case *keySize < 4096:
			return fmt.Sprintf("RSA with %d-bit key will be vulnerable to quantum computers", *keySize)
		default:
			return fmt.Sprintf("RSA with %d-bit key is quantum-vulnerable (Shor's algorithm)", *keySize)
		}
	case types.ECDSA:
		return "ECDSA (Elliptic Curve Digital Signature Algorithm) is quantum-vulnerable"
	case types.ECDH:
		return "ECDH (Elliptic Curve Diffie-Hellman) is quantum-vulnerable"
	case types.DSA:
		return "DSA (Digital Signature Algorithm) is quantum-vulnerable"
	case types.DiffieHellman:
		return "Diffie-Hellman key exchange is quantum-vulnerable"
	case types.SHA1:
		return "SHA-1 is cryptographically broken and should not be used"
	case types.MD5:
		return "MD5 is cryptographically broken and must not be used"
	case types.DES:
		return "DES is obsolete and cryptographically weak"
	case types.TripleDES:
		return "3DES (Triple DES) is deprecated and should be replaced"
	case types.RC4:
		return "RC4 is cryptographically broken and must not be used"
	}
	return fmt.Sprintf("%s is not approved for new cryptographic use", p)
}
