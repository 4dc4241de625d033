package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/relaypoint/mailguard/internal/enum"
)

// DNSRecord is an immutable expected authentication record for a sending domain.
type DNSRecord struct {
	Type     enum.DNSRecordType `json:"type"`
	Name     string             `json:"name"`
	Value    string             `json:"value"`
	TTL      int                `json:"ttl"`
	Priority *int               `json:"priority,omitempty"`
}

// DNSRecords is the JSON column type holding the four verification records.
type DNSRecords []DNSRecord

func (r DNSRecords) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *DNSRecords) Scan(value interface{}) error {
	if value == nil {
		*r = DNSRecords{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, r)
}
