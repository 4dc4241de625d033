package keys

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/tracing"
)

const keyBits = 2048

type rsaKeyProvider struct{}

// NewRSAKeyProvider returns a DKIM key provider generating a fresh RSA-2048
// keypair per domain. The public key is base64 DER, ready for the p= tag.
func NewRSAKeyProvider() interfaces.DKIMKeyProvider {
	return &rsaKeyProvider{}
}

func (p *rsaKeyProvider) GenerateKeyPair(ctx context.Context) (string, string, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "RSAKeyProvider.GenerateKeyPair")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	privateKey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "rsa key generation failed"))
		return "", "", err
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "public key encoding failed"))
		return "", "", err
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	return base64.StdEncoding.EncodeToString(publicDER), string(privatePEM), nil
}
