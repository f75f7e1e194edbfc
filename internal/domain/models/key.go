package models

import (
	"time"

	"github.com/openjwks/jwksd/pkg/constants"
)

// KeyRecord is the stored representation of a signing key pair.
// Public material is kept in its store-ready JWK field form (base64url
// strings) so that publication never re-encodes native key types. Records are
// never physically removed: soft deletion sets DeletedAt and the row is
// retained for audit and historical verification.
type KeyRecord struct {
	// ID is the unique identifier of the key and doubles as the JWK kid.
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// Algorithm is the signing algorithm identifier from the closed set.
	Algorithm constants.Algorithm `gorm:"size:16;not null" json:"alg"`

	// Kty is the JWK key type: "RSA", "EC" or "OKP".
	Kty string `gorm:"size:8;not null" json:"kty"`

	// Crv is the curve name for EC and OKP keys.
	Crv *string `json:"crv,omitempty"`

	// X is the EC x coordinate or the raw OKP public key, base64url.
	X *string `json:"x,omitempty"`

	// Y is the EC y coordinate, base64url.
	Y *string `json:"y,omitempty"`

	// N is the RSA modulus, minimal unsigned big-endian, base64url.
	N *string `json:"n,omitempty"`

	// E is the RSA public exponent, base64url.
	E *string `json:"e,omitempty"`

	// X5c is the self-signed certificate for RSA keys, standard base64 DER.
	X5c *string `json:"x5c,omitempty"`

	// X5t is the base64url SHA-1 thumbprint of the certificate DER.
	X5t *string `json:"x5t,omitempty"`

	// PrivateKey is the base64url-encoded PKCS#8 DER private key. It is
	// cleared exactly once, when the key transitions to private-expired.
	PrivateKey *string `json:"private_key,omitempty"`

	// CreatedAt is when the key pair was generated. Immutable.
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// PrivateKeyExpiresAt is CreatedAt + private_key_ttl. Immutable.
	PrivateKeyExpiresAt time.Time `gorm:"not null" json:"-"`

	// KeyExpiresAt is CreatedAt + key_ttl, never earlier than
	// PrivateKeyExpiresAt. Immutable.
	KeyExpiresAt time.Time `gorm:"not null" json:"-"`

	// DeletedAt is set at most once, on explicit or policy-driven soft
	// delete. A set DeletedAt is terminal.
	DeletedAt *time.Time `json:"-"`
}

// HasPrivateKey reports whether the private material is still present.
func (k *KeyRecord) HasPrivateKey() bool {
	return k.PrivateKey != nil && *k.PrivateKey != ""
}

// IsDeleted reports whether the record has been soft-deleted.
func (k *KeyRecord) IsDeleted() bool {
	return k.DeletedAt != nil
}

// KeyMaterial holds freshly generated key material before a record is minted.
// Identifier and timestamps are assigned by the caller.
type KeyMaterial struct {
	Algorithm  constants.Algorithm
	Kty        string
	Crv        *string
	X          *string
	Y          *string
	N          *string
	E          *string
	X5c        *string
	X5t        *string
	PrivateKey string
}

// NewKeyRecord mints a record from generated material, stamping identity and
// lifecycle timestamps. keyTTL must have been validated to be no shorter than
// privateKeyTTL.
func NewKeyRecord(id string, m *KeyMaterial, now time.Time, privateKeyTTL, keyTTL time.Duration) *KeyRecord {
	priv := m.PrivateKey
	return &KeyRecord{
		ID:                  id,
		Algorithm:           m.Algorithm,
		Kty:                 m.Kty,
		Crv:                 m.Crv,
		X:                   m.X,
		Y:                   m.Y,
		N:                   m.N,
		E:                   m.E,
		X5c:                 m.X5c,
		X5t:                 m.X5t,
		PrivateKey:          &priv,
		CreatedAt:           now,
		PrivateKeyExpiresAt: now.Add(privateKeyTTL),
		KeyExpiresAt:        now.Add(keyTTL),
	}
}

// Jwk is a single published JSON Web Key. Only public members are ever set.
type Jwk struct {
	Kty string   `json:"kty"`
	Use string   `json:"use"`
	Alg string   `json:"alg"`
	Kid string   `json:"kid"`
	Crv string   `json:"crv,omitempty"`
	X   string   `json:"x,omitempty"`
	Y   string   `json:"y,omitempty"`
	N   string   `json:"n,omitempty"`
	E   string   `json:"e,omitempty"`
	X5c []string `json:"x5c,omitempty"`
	X5t string   `json:"x5t,omitempty"`
}

// Jwks is the published key set, the body of /.well-known/jwks.json.
type Jwks struct {
	Keys []Jwk `json:"keys"`
}
