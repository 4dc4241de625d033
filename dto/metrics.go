package dto

import "github.com/relaypoint/mailguard/internal/enum"

// DeliverabilityMetrics are rate metrics derived from the tenant event history.
// Rates are percentages; the two scores are 0-100.
type DeliverabilityMetrics struct {
	Tenant              string  `json:"tenant"`
	WindowDays          int     `json:"windowDays"`
	DeliveryRate        float64 `json:"deliveryRate"`
	BounceRate          float64 `json:"bounceRate"`
	ComplaintRate       float64 `json:"complaintRate"`
	OpenRate            float64 `json:"openRate"`
	ClickRate           float64 `json:"clickRate"`
	SpamRate            float64 `json:"spamRate"`
	UnsubscribeRate     float64 `json:"unsubscribeRate"`
	ReputationScore     int     `json:"reputationScore"`
	AuthenticationScore int     `json:"authenticationScore"`
}

type ReputationFactor struct {
	Name        string            `json:"name"`
	Impact      float64           `json:"impact"`
	Status      enum.FactorStatus `json:"status"`
	Description string            `json:"description"`
}

type ReputationMetrics struct {
	SenderScore  int                  `json:"senderScore"`
	DomainScore  int                  `json:"domainScore"`
	IPScore      int                  `json:"ipScore"`
	OverallScore int                  `json:"overallScore"`
	Factors      []ReputationFactor   `json:"factors"`
	Trend        enum.ReputationTrend `json:"trend"`
}

type AuthenticationValidation struct {
	Domain       string `json:"domain"`
	SPFScore     int    `json:"spfScore"`
	DKIMScore    int    `json:"dkimScore"`
	DMARCScore   int    `json:"dmarcScore"`
	OverallScore int    `json:"overallScore"`
	IsValid      bool   `json:"isValid"`
}

type OptimizationResult struct {
	Metrics              DeliverabilityMetrics `json:"metrics"`
	Recommendations      []string              `json:"recommendations"`
	EstimatedImprovement float64               `json:"estimatedImprovement"`
}

type DashboardSummary struct {
	Metrics          DeliverabilityMetrics `json:"metrics"`
	Reputation       ReputationMetrics     `json:"reputation"`
	UnresolvedAlerts int                   `json:"unresolvedAlerts"`
	DomainCount      int                   `json:"domainCount"`
	VerifiedDomains  int                   `json:"verifiedDomains"`
}
