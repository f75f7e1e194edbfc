package crypto

import (
	"crypto/x509"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/errors"
	"github.com/openjwks/jwksd/pkg/logger"
)

func newTestGenerator() *Generator {
	return NewGenerator(service.NewRealClock(), logger.NewNoopLogger())
}

func TestGenerateRejectsUnknownAlgorithm(t *testing.T) {
	g := newTestGenerator()

	for _, alg := range []string{"HS256", "none", "rs256", "ES256K", ""} {
		_, err := g.Generate(constants.Algorithm(alg))
		require.Error(t, err, "alg %q", alg)
		assert.Equal(t, errors.CodeUnsupportedAlgorithm, errors.CodeOf(err))
	}
}

func TestGenerateCoversSupportedSet(t *testing.T) {
	g := newTestGenerator()

	for _, alg := range constants.SupportedAlgorithms {
		material, err := g.Generate(alg)
		require.NoError(t, err, "alg %s", alg)

		family, _ := alg.Family()
		assert.Equal(t, string(family), material.Kty)
		assert.NotEmpty(t, material.PrivateKey)

		der, err := base64.RawURLEncoding.DecodeString(material.PrivateKey)
		require.NoError(t, err)
		_, err = x509.ParsePKCS8PrivateKey(der)
		require.NoError(t, err, "private material for %s must be valid PKCS#8", alg)
	}
}

func TestGenerateRSACarriesCertificate(t *testing.T) {
	g := newTestGenerator()

	material, err := g.Generate(constants.AlgorithmRS384)
	require.NoError(t, err)
	require.NotNil(t, material.X5c)
	require.NotNil(t, material.X5t)

	certDER, err := base64.StdEncoding.DecodeString(*material.X5c)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(certDER)
	require.NoError(t, err)

	assert.Equal(t, "ANONYMOUS", cert.Subject.CommonName)
	assert.Equal(t, x509.SHA384WithRSA, cert.SignatureAlgorithm)
	assert.NoError(t, cert.CheckSignatureFrom(cert), "certificate must be self-signed")
}

func TestGenerateEdwardsOmitsCertificate(t *testing.T) {
	g := newTestGenerator()

	material, err := g.Generate(constants.AlgorithmEd25519)
	require.NoError(t, err)
	assert.Nil(t, material.X5c)
	assert.Nil(t, material.X5t)
	assert.Nil(t, material.N)
	assert.Nil(t, material.E)
}

func TestGenerateProducesDistinctKeys(t *testing.T) {
	g := newTestGenerator()

	first, err := g.Generate(constants.AlgorithmES256)
	require.NoError(t, err)
	second, err := g.Generate(constants.AlgorithmES256)
	require.NoError(t, err)

	assert.NotEqual(t, first.PrivateKey, second.PrivateKey)
	assert.NotEqual(t, *first.X, *second.X)
}
