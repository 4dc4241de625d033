package interfaces

import "context"

// DKIMKeyProvider generates the keypair published in a domain's DKIM record.
// The public key is returned base64-encoded, ready for the TXT p= tag.
type DKIMKeyProvider interface {
	GenerateKeyPair(ctx context.Context) (publicKey string, privateKey string, err error)
}
