package models

import (
	"time"

	"github.com/relaypoint/mailguard/internal/enum"
)

type DeliverabilityAlert struct {
	ID              string                       `gorm:"primary_key;type:uuid;default:gen_random_uuid()" json:"id"`
	Tenant          string                       `gorm:"column:tenant;type:varchar(255);NOT NULL;index" json:"tenant"`
	Type            enum.DeliverabilityAlertType `gorm:"column:type;type:varchar(50);NOT NULL" json:"type"`
	Severity        enum.AlertSeverity           `gorm:"column:severity;type:varchar(20);NOT NULL" json:"severity"`
	Message         string                       `gorm:"column:message;type:text" json:"message"`
	Metrics         JSONMap                      `gorm:"column:metrics;type:jsonb" json:"metrics"`
	Recommendations StringArray                  `gorm:"column:recommendations;type:jsonb" json:"recommendations"`
	IsResolved      bool                         `gorm:"column:is_resolved;type:boolean;NOT NULL;DEFAULT:false" json:"isResolved"`
	CreatedAt       time.Time                    `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	ResolvedAt      *time.Time                   `gorm:"column:resolved_at;type:timestamp" json:"resolvedAt,omitempty"`
}

func (DeliverabilityAlert) TableName() string {
	return "deliverability_alerts"
}
