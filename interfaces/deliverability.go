package interfaces

import (
	"context"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/models"
)

// DeliverabilityService aggregates tenant send/engagement history into rate
// metrics and reputation scores, and raises tenant-level alerts.
type DeliverabilityService interface {
	GetDeliverabilityMetrics(ctx context.Context, tenant string, windowDays int) (*dto.DeliverabilityMetrics, error)
	ValidateEmailAuthentication(ctx context.Context, domainName string) (*dto.AuthenticationValidation, error)
	MonitorSenderReputation(ctx context.Context, tenant string) (*dto.ReputationMetrics, error)
	OptimizeDeliveryRates(ctx context.Context, tenant string) (*dto.OptimizationResult, error)
	CheckThresholds(ctx context.Context, tenant string) ([]models.DeliverabilityAlert, error)
	GetAlerts(ctx context.Context, tenant string, includeResolved bool) ([]models.DeliverabilityAlert, error)
	ResolveAlert(ctx context.Context, alertID string) error
	GetDashboardSummary(ctx context.Context, tenant string) (*dto.DashboardSummary, error)
}
