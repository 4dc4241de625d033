package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/relaypoint/mailguard/internal/enum"
)

// ReputationFactor is one weighted component of a domain reputation score.
type ReputationFactor struct {
	Name        string            `json:"name"`
	Score       float64           `json:"score"`
	Weight      float64           `json:"weight"`
	Description string            `json:"description"`
	Status      enum.FactorStatus `json:"status"`
}

type ReputationFactors []ReputationFactor

func (f ReputationFactors) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *ReputationFactors) Scan(value interface{}) error {
	if value == nil {
		*f = ReputationFactors{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, f)
}

// DomainReputation is the current snapshot for a domain, one row per domain.
type DomainReputation struct {
	ID              string            `gorm:"primary_key;type:uuid;default:gen_random_uuid()" json:"id"`
	Tenant          string            `gorm:"column:tenant;type:varchar(255);NOT NULL" json:"tenant"`
	DomainID        string            `gorm:"column:domain_id;type:uuid;NOT NULL;uniqueIndex" json:"domainId"`
	Domain          string            `gorm:"column:domain;type:varchar(255);NOT NULL" json:"domain"`
	Score           int               `gorm:"column:score;type:integer" json:"score"`
	Factors         ReputationFactors `gorm:"column:factors;type:jsonb" json:"factors"`
	Recommendations StringArray       `gorm:"column:recommendations;type:jsonb" json:"recommendations"`
	LastUpdated     time.Time         `gorm:"column:last_updated;type:timestamp;DEFAULT:current_timestamp" json:"lastUpdated"`
}

func (DomainReputation) TableName() string {
	return "domain_reputations"
}
