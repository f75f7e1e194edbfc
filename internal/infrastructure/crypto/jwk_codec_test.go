package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/errors"
	"github.com/openjwks/jwksd/pkg/logger"
)

func generateRecord(t *testing.T, alg constants.Algorithm) *models.KeyRecord {
	t.Helper()
	g := NewGenerator(service.NewRealClock(), logger.NewNoopLogger())
	material, err := g.Generate(alg)
	require.NoError(t, err)
	now := time.Now().UTC()
	return models.NewKeyRecord("test-"+string(alg), material, now, time.Hour, 2*time.Hour)
}

// parseWithJose round-trips the published JWK through an independent
// implementation, so any structural mistake in our encoding fails loudly.
func parseWithJose(t *testing.T, jwk models.Jwk) jose.JSONWebKey {
	t.Helper()
	raw, err := json.Marshal(jwk)
	require.NoError(t, err)

	var parsed jose.JSONWebKey
	require.NoError(t, parsed.UnmarshalJSON(raw))
	require.True(t, parsed.Valid())
	return parsed
}

func TestEncodePublicRSA(t *testing.T) {
	for _, alg := range []constants.Algorithm{
		constants.AlgorithmRS256,
		constants.AlgorithmRS384,
		constants.AlgorithmRS512,
	} {
		t.Run(string(alg), func(t *testing.T) {
			key := generateRecord(t, alg)
			jwk, err := EncodePublic(key)
			require.NoError(t, err)

			assert.Equal(t, "RSA", jwk.Kty)
			assert.Equal(t, "sig", jwk.Use)
			assert.Equal(t, string(alg), jwk.Alg)
			assert.Equal(t, key.ID, jwk.Kid)
			assert.Equal(t, "AQAB", jwk.E)
			assert.Empty(t, jwk.Crv)
			assert.Empty(t, jwk.X)

			// 2048-bit modulus, minimal unsigned big-endian.
			n, err := base64.RawURLEncoding.DecodeString(jwk.N)
			require.NoError(t, err)
			assert.Len(t, n, 256)
			assert.NotZero(t, n[0])

			require.Len(t, jwk.X5c, 1)
			certDER, err := base64.StdEncoding.DecodeString(jwk.X5c[0])
			require.NoError(t, err)
			thumb := sha1.Sum(certDER)
			assert.Equal(t, base64.RawURLEncoding.EncodeToString(thumb[:]), jwk.X5t)

			parsed := parseWithJose(t, jwk)
			pub, ok := parsed.Key.(*rsa.PublicKey)
			require.True(t, ok)

			priv, err := DecodePrivateKey(key)
			require.NoError(t, err)
			rsaPriv, ok := priv.(*rsa.PrivateKey)
			require.True(t, ok)
			assert.Equal(t, 0, rsaPriv.N.Cmp(pub.N))

			require.Len(t, parsed.Certificates, 1)
			assert.Equal(t, "ANONYMOUS", parsed.Certificates[0].Subject.CommonName)
		})
	}
}

func TestEncodePublicEC(t *testing.T) {
	tests := []struct {
		alg     constants.Algorithm
		crv     string
		byteLen int
	}{
		{constants.AlgorithmES256, "P-256", 32},
		{constants.AlgorithmES384, "P-384", 48},
		{constants.AlgorithmES512, "P-521", 66},
	}
	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			key := generateRecord(t, tt.alg)
			jwk, err := EncodePublic(key)
			require.NoError(t, err)

			assert.Equal(t, "EC", jwk.Kty)
			assert.Equal(t, string(tt.alg), jwk.Alg)
			assert.Equal(t, tt.crv, jwk.Crv)
			assert.Empty(t, jwk.N)
			assert.Empty(t, jwk.X5c)

			// Coordinates are zero-padded to the curve's field width, never
			// trimmed, so small leading bytes still decode to full length.
			x, err := base64.RawURLEncoding.DecodeString(jwk.X)
			require.NoError(t, err)
			assert.Len(t, x, tt.byteLen)
			y, err := base64.RawURLEncoding.DecodeString(jwk.Y)
			require.NoError(t, err)
			assert.Len(t, y, tt.byteLen)

			parsed := parseWithJose(t, jwk)
			pub, ok := parsed.Key.(*ecdsa.PublicKey)
			require.True(t, ok)
			assert.Equal(t, tt.crv, pub.Curve.Params().Name)

			priv, err := DecodePrivateKey(key)
			require.NoError(t, err)
			ecPriv, ok := priv.(*ecdsa.PrivateKey)
			require.True(t, ok)
			assert.Equal(t, 0, ecPriv.X.Cmp(pub.X))
			assert.Equal(t, 0, ecPriv.Y.Cmp(pub.Y))
		})
	}
}

func TestEncodePublicOKP(t *testing.T) {
	key := generateRecord(t, constants.AlgorithmEd25519)
	jwk, err := EncodePublic(key)
	require.NoError(t, err)

	assert.Equal(t, "OKP", jwk.Kty)
	assert.Equal(t, "EdDSA", jwk.Alg, "edwards keys publish EdDSA, not the curve name")
	assert.Equal(t, "Ed25519", jwk.Crv)
	assert.Empty(t, jwk.Y)
	assert.Empty(t, jwk.N)

	x, err := base64.RawURLEncoding.DecodeString(jwk.X)
	require.NoError(t, err)
	assert.Len(t, x, ed25519.PublicKeySize)

	parsed := parseWithJose(t, jwk)
	pub, ok := parsed.Key.(ed25519.PublicKey)
	require.True(t, ok)

	priv, err := DecodePrivateKey(key)
	require.NoError(t, err)
	edPriv, ok := priv.(ed25519.PrivateKey)
	require.True(t, ok)
	assert.Equal(t, pub, edPriv.Public().(ed25519.PublicKey))
}

func TestEncodePublicExcludesPrivateMembers(t *testing.T) {
	for _, alg := range constants.SupportedAlgorithms {
		key := generateRecord(t, alg)
		jwk, err := EncodePublic(key)
		require.NoError(t, err)

		raw, err := json.Marshal(jwk)
		require.NoError(t, err)

		var members map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &members))
		for _, private := range []string{"d", "p", "q", "dp", "dq", "qi", "private_key"} {
			assert.NotContains(t, members, private, "alg %s leaked %q", alg, private)
		}
	}
}

func TestEncodePublicRejectsInconsistentRecords(t *testing.T) {
	key := generateRecord(t, constants.AlgorithmES256)
	key.Kty = "RSA"
	_, err := EncodePublic(key)
	assert.Equal(t, errors.CodeEncodingError, errors.CodeOf(err))

	key = generateRecord(t, constants.AlgorithmES256)
	key.Y = nil
	_, err = EncodePublic(key)
	assert.Equal(t, errors.CodeEncodingError, errors.CodeOf(err))

	key = generateRecord(t, constants.AlgorithmRS256)
	key.N = nil
	_, err = EncodePublic(key)
	assert.Equal(t, errors.CodeEncodingError, errors.CodeOf(err))
}

func TestDecodePrivateKeyGoneAfterPurge(t *testing.T) {
	key := generateRecord(t, constants.AlgorithmES256)
	key.PrivateKey = nil
	_, err := DecodePrivateKey(key)
	assert.Equal(t, errors.CodeKeyGone, errors.CodeOf(err))
}
