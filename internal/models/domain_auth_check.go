package models

import "time"

// DomainAuthCheck captures one SPF/DKIM/DMARC validation pass for a domain.
type DomainAuthCheck struct {
	ID           string    `gorm:"primary_key;type:uuid;default:gen_random_uuid()" json:"id"`
	Tenant       string    `gorm:"column:tenant;type:varchar(255);NOT NULL" json:"tenant"`
	Domain       string    `gorm:"column:domain;type:varchar(255);NOT NULL;index" json:"domain"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	SPFScore     int       `gorm:"column:spf_score;type:integer" json:"spfScore"`
	DKIMScore    int       `gorm:"column:dkim_score;type:integer" json:"dkimScore"`
	DMARCScore   int       `gorm:"column:dmarc_score;type:integer" json:"dmarcScore"`
	OverallScore int       `gorm:"column:overall_score;type:integer" json:"overallScore"`
	IsValid      bool      `gorm:"column:is_valid;type:boolean;NOT NULL;DEFAULT:false" json:"isValid"`
}

func (DomainAuthCheck) TableName() string {
	return "domain_auth_checks"
}
