package enum

type DomainAlertType string

const (
	DomainAlertVerificationFailed    DomainAlertType = "verification_failed"
	DomainAlertDNSRecordMissing      DomainAlertType = "dns_record_missing"
	DomainAlertReputationDecline     DomainAlertType = "reputation_decline"
	DomainAlertAuthenticationFailure DomainAlertType = "authentication_failure"
	DomainAlertDeliveryIssues        DomainAlertType = "delivery_issues"
)

func (t DomainAlertType) String() string {
	return string(t)
}

type DeliverabilityAlertType string

const (
	DeliverabilityAlertHighBounceRate        DeliverabilityAlertType = "high_bounce_rate"
	DeliverabilityAlertHighComplaintRate     DeliverabilityAlertType = "high_complaint_rate"
	DeliverabilityAlertLowDeliveryRate       DeliverabilityAlertType = "low_delivery_rate"
	DeliverabilityAlertAuthenticationFailure DeliverabilityAlertType = "authentication_failure"
	DeliverabilityAlertReputationDecline     DeliverabilityAlertType = "reputation_decline"
	DeliverabilityAlertSpamContentDetected   DeliverabilityAlertType = "spam_content_detected"
	DeliverabilityAlertBlacklistDetection    DeliverabilityAlertType = "blacklist_detection"
)

func (t DeliverabilityAlertType) String() string {
	return string(t)
}

type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

func (t AlertSeverity) String() string {
	return string(t)
}

type FactorStatus string

const (
	FactorStatusGood     FactorStatus = "good"
	FactorStatusWarning  FactorStatus = "warning"
	FactorStatusCritical FactorStatus = "critical"
)

func (t FactorStatus) String() string {
	return string(t)
}

type ReputationTrend string

const (
	TrendImproving ReputationTrend = "improving"
	TrendStable    ReputationTrend = "stable"
	TrendDeclining ReputationTrend = "declining"
)

func (t ReputationTrend) String() string {
	return string(t)
}
