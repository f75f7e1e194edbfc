// Package crypto provides key pair generation and JWK material encoding for
// the supported algorithm families: RSA (RS256/RS384/RS512), EC
// (ES256/ES384/ES512) and OKP (Ed25519).
package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"math/big"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/errors"
)

// EncodePublic converts a key record into its published JWK form. Private
// members are never included. It fails with an encoding_error when the stored
// public material is structurally inconsistent with the record's algorithm;
// given the generator's contract this is unreachable and indicates a bug or
// corrupted row.
func EncodePublic(key *models.KeyRecord) (models.Jwk, error) {
	family, ok := key.Algorithm.Family()
	if !ok {
		return models.Jwk{}, errors.ErrEncoding("unknown algorithm " + string(key.Algorithm))
	}
	if key.Kty != string(family) {
		return models.Jwk{}, errors.ErrEncoding("kty " + key.Kty + " does not match algorithm " + string(key.Algorithm))
	}

	jwk := models.Jwk{
		Kty: key.Kty,
		Use: constants.JWKUseSignature,
		Alg: key.Algorithm.JWKAlg(),
		Kid: key.ID,
	}

	switch family {
	case constants.FamilyRSA:
		if key.N == nil || key.E == nil {
			return models.Jwk{}, errors.ErrEncoding("rsa record missing n or e")
		}
		jwk.N = *key.N
		jwk.E = *key.E
		if key.X5c != nil {
			jwk.X5c = []string{*key.X5c}
		}
		if key.X5t != nil {
			jwk.X5t = *key.X5t
		}
	case constants.FamilyEC:
		if key.Crv == nil || key.X == nil || key.Y == nil {
			return models.Jwk{}, errors.ErrEncoding("ec record missing crv, x or y")
		}
		jwk.Crv = *key.Crv
		jwk.X = *key.X
		jwk.Y = *key.Y
	case constants.FamilyOKP:
		if key.Crv == nil || key.X == nil {
			return models.Jwk{}, errors.ErrEncoding("okp record missing crv or x")
		}
		jwk.Crv = *key.Crv
		jwk.X = *key.X
	}

	return jwk, nil
}

// ================================================================================
// Material Encoding (native key -> store-ready JWK fields)
// ================================================================================

// encodeRSAMaterial encodes an RSA private key plus its self-signed
// certificate into store-ready material. The modulus is the minimal unsigned
// big-endian encoding (big.Int.Bytes never emits a leading zero byte); the
// certificate travels as standard base64 per RFC 7517 §4.7 while its SHA-1
// thumbprint is base64url.
func encodeRSAMaterial(alg constants.Algorithm, priv *rsa.PrivateKey, certDER []byte) (*models.KeyMaterial, error) {
	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}

	n := base64.RawURLEncoding.EncodeToString(priv.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(priv.E)).Bytes())
	x5c := base64.StdEncoding.EncodeToString(certDER)
	thumb := sha1.Sum(certDER)
	x5t := base64.RawURLEncoding.EncodeToString(thumb[:])

	return &models.KeyMaterial{
		Algorithm:  alg,
		Kty:        string(constants.FamilyRSA),
		N:          &n,
		E:          &e,
		X5c:        &x5c,
		X5t:        &x5t,
		PrivateKey: base64.RawURLEncoding.EncodeToString(pkcs8),
	}, nil
}

// encodeECMaterial encodes an ECDSA private key into store-ready material.
// Coordinates are fixed-width big-endian, zero-padded to the byte width of
// the curve's field (32 for P-256, 48 for P-384, 66 for P-521).
func encodeECMaterial(alg constants.Algorithm, priv *ecdsa.PrivateKey) (*models.KeyMaterial, error) {
	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}

	params := priv.Curve.Params()
	byteLen := (params.BitSize + 7) / 8
	x := base64.RawURLEncoding.EncodeToString(priv.X.FillBytes(make([]byte, byteLen)))
	y := base64.RawURLEncoding.EncodeToString(priv.Y.FillBytes(make([]byte, byteLen)))
	crv := params.Name

	return &models.KeyMaterial{
		Algorithm:  alg,
		Kty:        string(constants.FamilyEC),
		Crv:        &crv,
		X:          &x,
		Y:          &y,
		PrivateKey: base64.RawURLEncoding.EncodeToString(pkcs8),
	}, nil
}

// encodeOKPMaterial encodes an Ed25519 private key into store-ready material.
// The x member is the raw 32-byte public key.
func encodeOKPMaterial(priv ed25519.PrivateKey) (*models.KeyMaterial, error) {
	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}

	pub := priv.Public().(ed25519.PublicKey)
	x := base64.RawURLEncoding.EncodeToString(pub)
	crv := "Ed25519"

	return &models.KeyMaterial{
		Algorithm:  constants.AlgorithmEd25519,
		Kty:        string(constants.FamilyOKP),
		Crv:        &crv,
		X:          &x,
		PrivateKey: base64.RawURLEncoding.EncodeToString(pkcs8),
	}, nil
}

// DecodePrivateKey parses the record's stored private material back into a
// native key. Used by consumers handed out a key for signing, and by tests
// proving the stored form round-trips.
func DecodePrivateKey(key *models.KeyRecord) (interface{}, error) {
	if !key.HasPrivateKey() {
		return nil, errors.ErrKeyGone(key.ID)
	}
	der, err := base64.RawURLEncoding.DecodeString(*key.PrivateKey)
	if err != nil {
		return nil, errors.ErrEncoding("private key is not valid base64url").WithCause(err)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errors.ErrEncoding("private key is not valid PKCS#8").WithCause(err)
	}
	return parsed, nil
}
