package dnsrecords

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
)

const (
	recordTTL = 300

	// 32 chars over a 36-symbol alphabet gives well over 128 bits of entropy
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenLength   = 32
)

// Generator produces the four authentication records a sending domain must publish.
type Generator struct {
	cfg *config.DNSConfig
}

func NewGenerator(cfg *config.DNSConfig) (*Generator, error) {
	if cfg == nil || cfg.SPFIncludeHost == "" || cfg.DMARCReportAddress == "" {
		return nil, errors.New("dns provider configuration is incomplete")
	}
	return &Generator{cfg: cfg}, nil
}

// GenerateRecords is deterministic for a given domain and DKIM key, except for
// the ownership verification token which is drawn from crypto/rand.
func (g *Generator) GenerateRecords(domainName, dkimPublicKey string) ([]models.DNSRecord, error) {
	if domainName == "" {
		return nil, errors.New("domain name is required")
	}

	token, err := gonanoid.Generate(tokenAlphabet, tokenLength)
	if err != nil {
		return nil, errors.Wrap(err, "verification token generation failed")
	}

	records := []models.DNSRecord{
		{
			Type:  enum.DNSRecordTypeTXT,
			Name:  domainName,
			Value: fmt.Sprintf("v=spf1 include:%s ~all", g.cfg.SPFIncludeHost),
			TTL:   recordTTL,
		},
		{
			Type:  enum.DNSRecordTypeTXT,
			Name:  fmt.Sprintf("%s._domainkey.%s", g.cfg.DKIMSelector, domainName),
			Value: fmt.Sprintf("v=DKIM1; k=rsa; p=%s", dkimPublicKey),
			TTL:   recordTTL,
		},
		{
			Type:  enum.DNSRecordTypeTXT,
			Name:  fmt.Sprintf("_dmarc.%s", domainName),
			Value: fmt.Sprintf("v=DMARC1; p=quarantine; rua=mailto:%s", g.cfg.DMARCReportAddress),
			TTL:   recordTTL,
		},
		{
			Type:  enum.DNSRecordTypeTXT,
			Name:  fmt.Sprintf("_verification.%s", domainName),
			Value: fmt.Sprintf("%s-verification=%s", g.cfg.VerificationPrefix, token),
			TTL:   recordTTL,
		},
	}

	return records, nil
}
