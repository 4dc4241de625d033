package models

import (
	"time"

	"github.com/relaypoint/mailguard/internal/enum"
)

// EmailEvent is a normalized send-lifecycle event ingested by an external collaborator.
type EmailEvent struct {
	ID         string              `gorm:"primary_key;type:uuid;default:gen_random_uuid()" json:"id"`
	Tenant     string              `gorm:"column:tenant;type:varchar(255);NOT NULL;index:idx_email_events_tenant_occurred" json:"tenant"`
	CampaignID string              `gorm:"column:campaign_id;type:varchar(255)" json:"campaignId,omitempty"`
	EventType  enum.EmailEventType `gorm:"column:event_type;type:varchar(30);NOT NULL" json:"eventType"`
	OccurredAt time.Time           `gorm:"column:occurred_at;type:timestamp;NOT NULL;index:idx_email_events_tenant_occurred" json:"occurredAt"`
	CreatedAt  time.Time           `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
}

func (EmailEvent) TableName() string {
	return "email_events"
}
