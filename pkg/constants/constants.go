// Package constants defines system-wide constants for jwksd.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Signing Algorithm Constants
// ================================================================================

// Algorithm represents a supported JWT signing algorithm identifier.
// The set is closed: anything outside it is rejected at generation time.
type Algorithm string

const (
	// AlgorithmRS256 represents RSASSA-PKCS1-v1_5 with SHA-256
	AlgorithmRS256 Algorithm = "RS256"

	// AlgorithmRS384 represents RSASSA-PKCS1-v1_5 with SHA-384
	AlgorithmRS384 Algorithm = "RS384"

	// AlgorithmRS512 represents RSASSA-PKCS1-v1_5 with SHA-512
	AlgorithmRS512 Algorithm = "RS512"

	// AlgorithmES256 represents ECDSA with the P-256 curve and SHA-256
	AlgorithmES256 Algorithm = "ES256"

	// AlgorithmES384 represents ECDSA with the P-384 curve and SHA-384
	AlgorithmES384 Algorithm = "ES384"

	// AlgorithmES512 represents ECDSA with the P-521 curve and SHA-512
	AlgorithmES512 Algorithm = "ES512"

	// AlgorithmEd25519 represents EdDSA with the Ed25519 curve
	AlgorithmEd25519 Algorithm = "Ed25519"
)

// KeyFamily groups algorithms by their JWK key type (kty).
type KeyFamily string

const (
	// FamilyRSA covers the RS* algorithms (kty "RSA")
	FamilyRSA KeyFamily = "RSA"

	// FamilyEC covers the ES* algorithms (kty "EC")
	FamilyEC KeyFamily = "EC"

	// FamilyOKP covers the Edwards-curve algorithms (kty "OKP")
	FamilyOKP KeyFamily = "OKP"
)

// SupportedAlgorithms enumerates the closed algorithm set in a fixed order.
var SupportedAlgorithms = []Algorithm{
	AlgorithmRS256,
	AlgorithmRS384,
	AlgorithmRS512,
	AlgorithmES256,
	AlgorithmES384,
	AlgorithmES512,
	AlgorithmEd25519,
}

// Family returns the JWK key family for the algorithm, and whether the
// algorithm belongs to the supported set.
func (a Algorithm) Family() (KeyFamily, bool) {
	switch a {
	case AlgorithmRS256, AlgorithmRS384, AlgorithmRS512:
		return FamilyRSA, true
	case AlgorithmES256, AlgorithmES384, AlgorithmES512:
		return FamilyEC, true
	case AlgorithmEd25519:
		return FamilyOKP, true
	default:
		return "", false
	}
}

// JWKAlg returns the value published in the JWK "alg" member. Edwards keys
// publish "EdDSA" regardless of curve, per RFC 8037.
func (a Algorithm) JWKAlg() string {
	if a == AlgorithmEd25519 {
		return "EdDSA"
	}
	return string(a)
}

// RSAKeySizeBits is the modulus width used for every RS-variant.
const RSAKeySizeBits = 2048

// ================================================================================
// Key State Constants
// ================================================================================

// KeyState represents the derived lifecycle state of a key record.
// It is computed from the record's timestamps and is never stored.
type KeyState string

const (
	// KeyStateActive indicates both private and public material are usable
	KeyStateActive KeyState = "active"

	// KeyStatePrivateExpired indicates signing capability is revoked but the
	// public key is still published for in-flight token verification
	KeyStatePrivateExpired KeyState = "private_expired"

	// KeyStateExpired indicates the key is excluded from the published set
	// and retained only for audit and historical lookup
	KeyStateExpired KeyState = "expired"

	// KeyStateDeleted indicates the key was soft-deleted; terminal
	KeyStateDeleted KeyState = "deleted"
)

// ================================================================================
// Key Lifetime Defaults
// ================================================================================

const (
	// DefaultPrivateKeyTTL is the default signing lifetime of a key (1 day)
	DefaultPrivateKeyTTL = 24 * time.Hour

	// DefaultKeyTTL is the default total lifetime of a key (2 days)
	DefaultKeyTTL = 48 * time.Hour

	// DefaultSweepInterval is the default period between expiration sweeps
	DefaultSweepInterval = 1 * time.Minute

	// DefaultJWKSCacheTTL is the default lifetime of the cached published set
	DefaultJWKSCacheTTL = 15 * time.Second
)

// ================================================================================
// JWK Constants
// ================================================================================

const (
	// JWKUseSignature is the only "use" value this service publishes
	JWKUseSignature = "sig"

	// JWKSWellKnownPath is the conventional publication path for the key set
	JWKSWellKnownPath = "/.well-known/jwks.json"
)

// ================================================================================
// Audit Event Constants
// ================================================================================

// AuditEventType identifies a key lifecycle audit event.
type AuditEventType string

const (
	// AuditEventKeyCreated is emitted when a key pair is generated and stored
	AuditEventKeyCreated AuditEventType = "key.created"

	// AuditEventKeyPrivatePurged is emitted when private material is cleared
	AuditEventKeyPrivatePurged AuditEventType = "key.private_purged"

	// AuditEventKeyDeleted is emitted on explicit soft delete
	AuditEventKeyDeleted AuditEventType = "key.deleted"

	// AuditEventKeyAutoDeleted is emitted when the sweeper deletes a fully
	// expired key under the auto-delete policy
	AuditEventKeyAutoDeleted AuditEventType = "key.auto_deleted"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type used for context values set by the HTTP middleware.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request correlation id
	ContextKeyRequestID ContextKey = "request_id"
)
