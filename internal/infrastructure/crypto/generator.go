package crypto

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"

	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/errors"
	"github.com/openjwks/jwksd/pkg/logger"
)

// certValidity is the validity window of the self-signed certificate minted
// for RSA keys. The certificate is informational (x5c/x5t members); key
// publication is governed by the record's own lifecycle timestamps.
const certValidity = 365 * 24 * time.Hour

// Generator produces fresh key pairs for the closed algorithm set, using
// crypto/rand exclusively. Generation is CPU-bound and touches no shared
// state, so callers are free to run it before acquiring any store resources.
type Generator struct {
	clock  service.Clock
	logger logger.Logger
}

// NewGenerator creates a key pair generator.
func NewGenerator(clock service.Clock, log logger.Logger) *Generator {
	return &Generator{
		clock:  clock,
		logger: log.WithComponent("KeyGenerator"),
	}
}

// Generate produces a fresh key pair for the requested algorithm and returns
// its store-ready material. Identifiers and lifecycle timestamps are assigned
// by the caller.
//
// An identifier outside the supported set fails with unsupported_algorithm.
// A primitive failure fails with generation_error and is logged; it is not
// retried here, since retrying a broken primitive can mask entropy problems.
func (g *Generator) Generate(alg constants.Algorithm) (*models.KeyMaterial, error) {
	family, ok := alg.Family()
	if !ok {
		return nil, errors.ErrUnsupportedAlgorithm(string(alg))
	}

	var (
		material *models.KeyMaterial
		err      error
	)
	switch family {
	case constants.FamilyRSA:
		material, err = g.generateRSA(alg)
	case constants.FamilyEC:
		material, err = g.generateEC(alg)
	case constants.FamilyOKP:
		material, err = g.generateEd25519()
	}
	if err != nil {
		g.logger.Error(context.Background(), "key generation failed", err, logger.String("algorithm", string(alg)))
		return nil, errors.ErrGeneration(string(alg), err)
	}
	return material, nil
}

func (g *Generator) generateRSA(alg constants.Algorithm) (*models.KeyMaterial, error) {
	priv, err := rsa.GenerateKey(rand.Reader, constants.RSAKeySizeBits)
	if err != nil {
		return nil, err
	}

	certDER, err := g.selfSignCertificate(alg, priv)
	if err != nil {
		return nil, err
	}

	return encodeRSAMaterial(alg, priv, certDER)
}

// selfSignCertificate mints the single-entry x5c chain for an RSA key: a
// self-signed X.509v3 certificate with CN=ANONYMOUS, signed with the digest
// matching the key's algorithm.
func (g *Generator) selfSignCertificate(alg constants.Algorithm, priv *rsa.PrivateKey) ([]byte, error) {
	var sigAlg x509.SignatureAlgorithm
	switch alg {
	case constants.AlgorithmRS256:
		sigAlg = x509.SHA256WithRSA
	case constants.AlgorithmRS384:
		sigAlg = x509.SHA384WithRSA
	case constants.AlgorithmRS512:
		sigAlg = x509.SHA512WithRSA
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()
	template := &x509.Certificate{
		SerialNumber:       serial,
		Subject:            pkix.Name{CommonName: "ANONYMOUS"},
		NotBefore:          now,
		NotAfter:           now.Add(certValidity),
		SignatureAlgorithm: sigAlg,
	}
	return x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
}

func (g *Generator) generateEC(alg constants.Algorithm) (*models.KeyMaterial, error) {
	var curve elliptic.Curve
	switch alg {
	case constants.AlgorithmES256:
		curve = elliptic.P256()
	case constants.AlgorithmES384:
		curve = elliptic.P384()
	case constants.AlgorithmES512:
		curve = elliptic.P521()
	}

	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, err
	}
	return encodeECMaterial(alg, priv)
}

func (g *Generator) generateEd25519() (*models.KeyMaterial, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return encodeOKPMaterial(priv)
}
