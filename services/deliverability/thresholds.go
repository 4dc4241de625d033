package deliverability

import (
	"fmt"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/enum"
)

// Two-tier threshold table. All comparisons are exclusive: a value sitting
// exactly on a threshold does not breach it.
type thresholdTier struct {
	Warning  float64
	Critical float64
}

var thresholds = struct {
	DeliveryRate    thresholdTier
	BounceRate      thresholdTier
	ComplaintRate   thresholdTier
	SpamScore       thresholdTier
	ReputationScore thresholdTier
}{
	DeliveryRate:    thresholdTier{Warning: 95, Critical: 90},
	BounceRate:      thresholdTier{Warning: 5, Critical: 10},
	ComplaintRate:   thresholdTier{Warning: 0.1, Critical: 0.5},
	SpamScore:       thresholdTier{Warning: 50, Critical: 70},
	ReputationScore: thresholdTier{Warning: 70, Critical: 50},
}

type breach struct {
	Type            enum.DeliverabilityAlertType
	Severity        enum.AlertSeverity
	Message         string
	Recommendations []string
}

// evaluateThresholds runs the four metric checks and returns one breach per
// metric at most, at the highest tier it crossed.
func evaluateThresholds(m dto.DeliverabilityMetrics) []breach {
	var breaches []breach

	if m.DeliveryRate < thresholds.DeliveryRate.Critical {
		breaches = append(breaches, deliveryBreach(m, enum.AlertSeverityCritical))
	} else if m.DeliveryRate < thresholds.DeliveryRate.Warning {
		breaches = append(breaches, deliveryBreach(m, enum.AlertSeverityMedium))
	}

	if m.BounceRate > thresholds.BounceRate.Critical {
		breaches = append(breaches, bounceBreach(m, enum.AlertSeverityCritical))
	} else if m.BounceRate > thresholds.BounceRate.Warning {
		breaches = append(breaches, bounceBreach(m, enum.AlertSeverityMedium))
	}

	if m.ComplaintRate > thresholds.ComplaintRate.Critical {
		breaches = append(breaches, complaintBreach(m, enum.AlertSeverityCritical))
	} else if m.ComplaintRate > thresholds.ComplaintRate.Warning {
		breaches = append(breaches, complaintBreach(m, enum.AlertSeverityMedium))
	}

	if float64(m.ReputationScore) < thresholds.ReputationScore.Critical {
		breaches = append(breaches, reputationBreach(m, enum.AlertSeverityCritical))
	} else if float64(m.ReputationScore) < thresholds.ReputationScore.Warning {
		breaches = append(breaches, reputationBreach(m, enum.AlertSeverityMedium))
	}

	return breaches
}

func deliveryBreach(m dto.DeliverabilityMetrics, severity enum.AlertSeverity) breach {
	return breach{
		Type:     enum.DeliverabilityAlertLowDeliveryRate,
		Severity: severity,
		Message:  fmt.Sprintf("Delivery rate dropped to %.0f%%", m.DeliveryRate),
		Recommendations: []string{
			"Verify SPF, DKIM and DMARC are published for all sending domains",
			"Remove invalid addresses from your lists before the next send",
		},
	}
}

func bounceBreach(m dto.DeliverabilityMetrics, severity enum.AlertSeverity) breach {
	return breach{
		Type:     enum.DeliverabilityAlertHighBounceRate,
		Severity: severity,
		Message:  fmt.Sprintf("Bounce rate reached %.2f%%", m.BounceRate),
		Recommendations: []string{
			"Run list hygiene: suppress hard bounces and validate new signups",
			"Slow down sending volume until the bounce rate recovers",
		},
	}
}

func complaintBreach(m dto.DeliverabilityMetrics, severity enum.AlertSeverity) breach {
	return breach{
		Type:     enum.DeliverabilityAlertHighComplaintRate,
		Severity: severity,
		Message:  fmt.Sprintf("Complaint rate reached %.2f%%", m.ComplaintRate),
		Recommendations: []string{
			"Review recent campaign content and targeting for relevance",
			"Make unsubscribing easy and honor opt-outs immediately",
		},
	}
}

func reputationBreach(m dto.DeliverabilityMetrics, severity enum.AlertSeverity) breach {
	return breach{
		Type:     enum.DeliverabilityAlertReputationDecline,
		Severity: severity,
		Message:  fmt.Sprintf("Sender reputation score fell to %d", m.ReputationScore),
		Recommendations: []string{
			"Reduce sending volume and prioritize your most engaged recipients",
			"Address bounce and complaint sources before ramping back up",
		},
	}
}
