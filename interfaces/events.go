package interfaces

import (
	"context"

	"github.com/relaypoint/mailguard/internal/models"
)

// AlertPublisher fans alert notifications out to downstream consumers.
// Publishing is best-effort, callers log and swallow failures.
type AlertPublisher interface {
	PublishDomainAlert(ctx context.Context, alert *models.DomainAlert) error
	PublishDeliverabilityAlert(ctx context.Context, alert *models.DeliverabilityAlert) error
	Close() error
}
