package dto

import "github.com/relaypoint/mailguard/internal/models"

// RecordCheck is the observed state of one expected DNS record.
type RecordCheck struct {
	Record        models.DNSRecord `json:"record"`
	IsPresent     bool             `json:"isPresent"`
	ObservedValue string           `json:"observedValue,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// DomainVerificationResult is transient, it drives the status transition and alerting.
type DomainVerificationResult struct {
	Domain     string        `json:"domain"`
	IsVerified bool          `json:"isVerified"`
	Records    []RecordCheck `json:"records"`
	Errors     []string      `json:"errors"`
}

// SetupStep pairs a DNS record with operator-facing installation guidance.
type SetupStep struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Record      models.DNSRecord `json:"record"`
}

type SetupWizard struct {
	Domain string      `json:"domain"`
	Steps  []SetupStep `json:"steps"`
}
