package models

import "time"

// TenantDeliverabilityScore is a persisted metrics snapshot used for trend reconstruction.
type TenantDeliverabilityScore struct {
	ID                  string    `gorm:"primary_key;type:uuid;default:gen_random_uuid()" json:"id"`
	Tenant              string    `gorm:"column:tenant;type:varchar(255);NOT NULL;index" json:"tenant"`
	CreatedAt           time.Time `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	WindowDays          int       `gorm:"column:window_days;type:integer" json:"windowDays"`
	DeliveryRate        float64   `gorm:"column:delivery_rate;type:decimal(5,2)" json:"deliveryRate"`
	BounceRate          float64   `gorm:"column:bounce_rate;type:decimal(5,2)" json:"bounceRate"`
	ComplaintRate       float64   `gorm:"column:complaint_rate;type:decimal(5,2)" json:"complaintRate"`
	OpenRate            float64   `gorm:"column:open_rate;type:decimal(5,2)" json:"openRate"`
	ClickRate           float64   `gorm:"column:click_rate;type:decimal(5,2)" json:"clickRate"`
	SpamRate            float64   `gorm:"column:spam_rate;type:decimal(5,2)" json:"spamRate"`
	UnsubscribeRate     float64   `gorm:"column:unsubscribe_rate;type:decimal(5,2)" json:"unsubscribeRate"`
	ReputationScore     int       `gorm:"column:reputation_score;type:integer" json:"reputationScore"`
	AuthenticationScore int       `gorm:"column:authentication_score;type:integer" json:"authenticationScore"`
}

func (TenantDeliverabilityScore) TableName() string {
	return "tenant_deliverability_scores"
}
