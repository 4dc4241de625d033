package models

import (
	"time"

	"github.com/relaypoint/mailguard/internal/enum"
)

type Domain struct {
	ID                  string            `gorm:"primary_key;type:uuid;default:gen_random_uuid()" json:"id"`
	Tenant              string            `gorm:"column:tenant;type:varchar(255);NOT NULL;uniqueIndex:idx_domains_tenant_domain" json:"tenant"`
	Domain              string            `gorm:"column:domain;type:varchar(255);NOT NULL;uniqueIndex:idx_domains_tenant_domain" json:"domain"`
	Status              enum.DomainStatus `gorm:"column:status;type:varchar(50);NOT NULL;DEFAULT:'pending'" json:"status"`
	DkimPublicKey       string            `gorm:"column:dkim_public_key;type:text" json:"dkimPublicKey"`
	DkimPrivateKey      string            `gorm:"column:dkim_private_key;type:text" json:"-"`
	VerificationRecords DNSRecords        `gorm:"column:verification_records;type:jsonb" json:"verificationRecords"`
	VerifiedAt          *time.Time        `gorm:"column:verified_at;type:timestamp" json:"verifiedAt,omitempty"`
	CreatedAt           time.Time         `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;type:timestamp;DEFAULT:current_timestamp" json:"updatedAt"`
}

func (Domain) TableName() string {
	return "domains"
}
