package interfaces

import (
	"context"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
)

// DomainService owns the Domain lifecycle: registration, DNS verification,
// reputation scoring and domain-level alerting.
type DomainService interface {
	CreateDomain(ctx context.Context, domainName string) (*models.Domain, error)
	GetDomain(ctx context.Context, domainName string) (*models.Domain, error)
	ListDomains(ctx context.Context) ([]models.Domain, error)
	VerifyDomain(ctx context.Context, domainID string) (*dto.DomainVerificationResult, error)
	CreateSetupWizard(ctx context.Context, domainID string) (*dto.SetupWizard, error)
	UpdateDomainReputation(ctx context.Context, domainID string) (*models.DomainReputation, error)
	GetDomainReputation(ctx context.Context, domainID string) (*models.DomainReputation, error)
	CreateAlert(ctx context.Context, domainID string, alertType enum.DomainAlertType, severity enum.AlertSeverity, message string, details models.JSONMap) (*models.DomainAlert, error)
	GetDomainAlerts(ctx context.Context, domainID string, includeResolved bool) ([]models.DomainAlert, error)
	ResolveAlert(ctx context.Context, alertID string) error
	// AuthenticationScore is the mean DNS-authentication score across the
	// tenant's domains, 50 when the tenant only uses the shared sending domain.
	AuthenticationScore(ctx context.Context, tenant string) (int, error)
}
