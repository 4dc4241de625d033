package deliverability

import (
	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/internal/utils"
)

// Rate derivation and scoring are pure functions over aggregate event counts
// so the numbers stay reproducible from the raw event history.

// computeRates derives percentage rates from event counts. Delivery, open and
// click rates are whole percents; bounce, complaint, spam and unsubscribe
// rates keep two decimals because their thresholds sit below one percent.
func computeRates(counts repository.EventCounts) dto.DeliverabilityMetrics {
	sent := float64(counts.Get(enum.EmailEventSent))
	delivered := float64(counts.Get(enum.EmailEventDelivered))
	bounced := float64(counts.Get(enum.EmailEventBounced))
	complained := float64(counts.Get(enum.EmailEventComplained))
	opened := float64(counts.Get(enum.EmailEventOpened))
	clicked := float64(counts.Get(enum.EmailEventClicked))
	unsubscribed := float64(counts.Get(enum.EmailEventUnsubscribed))

	metrics := dto.DeliverabilityMetrics{}
	if sent > 0 {
		metrics.DeliveryRate = float64(utils.RoundToInt(delivered / sent * 100))
		metrics.BounceRate = utils.RoundTo2Decimals(bounced / sent * 100)
		metrics.ComplaintRate = utils.RoundTo2Decimals(complained / sent * 100)
		metrics.SpamRate = utils.RoundTo2Decimals((complained + 0.3*bounced) / sent * 100)
	}
	if delivered > 0 {
		metrics.OpenRate = float64(utils.RoundToInt(opened / delivered * 100))
		metrics.ClickRate = float64(utils.RoundToInt(clicked / delivered * 100))
		metrics.UnsubscribeRate = utils.RoundTo2Decimals(unsubscribed / delivered * 100)
	}
	return metrics
}

// reputationScore starts from 100, penalizes bounce/complaint/delivery
// shortfalls and rewards engagement, clamped to [0,100].
func reputationScore(m dto.DeliverabilityMetrics) int {
	score := 100.0

	if m.BounceRate > 5 {
		score -= (m.BounceRate - 5) * 2
	}
	if m.ComplaintRate > 0.1 {
		score -= (m.ComplaintRate - 0.1) * 50
	}
	if m.DeliveryRate < 95 {
		score -= (95 - m.DeliveryRate) * 1.5
	}

	if m.OpenRate > 20 {
		reward := (m.OpenRate - 20) * 0.2
		if reward > 10 {
			reward = 10
		}
		score += reward
	}
	if m.ClickRate > 2 {
		reward := (m.ClickRate - 2) * 0.5
		if reward > 5 {
			reward = 5
		}
		score += reward
	}

	return utils.RoundToInt(utils.ClampFloat(score, 0, 100))
}

// reputationTrend compares the mean reputation score of the newest seven
// snapshots against the oldest seven. Short histories shrink the window so
// the two halves never overlap. Under two snapshots there is no trend.
func reputationTrend(history []float64) enum.ReputationTrend {
	if len(history) < 2 {
		return enum.TrendStable
	}

	window := 7
	if len(history) < 2*window {
		window = len(history) / 2
	}

	earliest := mean(history[:window])
	recent := mean(history[len(history)-window:])

	switch {
	case recent-earliest > 5:
		return enum.TrendImproving
	case recent-earliest < -5:
		return enum.TrendDeclining
	default:
		return enum.TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// estimatedImprovement sums a fraction of the authentication, reputation and
// delivery-rate shortfalls, capped at 25 percentage points.
func estimatedImprovement(m dto.DeliverabilityMetrics) float64 {
	var improvement float64
	if m.AuthenticationScore < 70 {
		improvement += float64(70-m.AuthenticationScore) * 0.2
	}
	if m.ReputationScore < 70 {
		improvement += float64(70-m.ReputationScore) * 0.3
	}
	if m.DeliveryRate < 95 {
		improvement += (95 - m.DeliveryRate) * 0.5
	}
	if improvement > 25 {
		improvement = 25
	}
	return utils.RoundTo2Decimals(improvement)
}
