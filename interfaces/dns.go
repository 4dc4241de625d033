package interfaces

import (
	"context"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/models"
)

// Resolver is the DNS lookup capability the verifier runs against.
// Implementations must honor per-query timeouts and report lookup failures.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
	LookupCNAME(ctx context.Context, name string) (string, error)
	LookupMX(ctx context.Context, name string) ([]string, error)
}

// DNSVerifier checks the observed presence of a domain's expected records.
// Lookup failures are folded into the result per record, never returned.
type DNSVerifier interface {
	VerifyDomainRecords(ctx context.Context, domain *models.Domain) *dto.DomainVerificationResult
}
