package deliverability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/repository"
)

func TestComputeRates(t *testing.T) {
	counts := repository.EventCounts{
		enum.EmailEventSent:         100,
		enum.EmailEventDelivered:    95,
		enum.EmailEventBounced:      5,
		enum.EmailEventComplained:   0,
		enum.EmailEventOpened:       20,
		enum.EmailEventClicked:      5,
		enum.EmailEventUnsubscribed: 1,
	}

	metrics := computeRates(counts)

	assert.Equal(t, 95.0, metrics.DeliveryRate)
	assert.Equal(t, 5.0, metrics.BounceRate)
	assert.Equal(t, 0.0, metrics.ComplaintRate)
	assert.Equal(t, 21.0, metrics.OpenRate)
	assert.Equal(t, 5.0, metrics.ClickRate)
	assert.Equal(t, 1.05, metrics.UnsubscribeRate)
	assert.Equal(t, 1.5, metrics.SpamRate)
}

func TestComputeRates_ZeroDenominators(t *testing.T) {
	metrics := computeRates(repository.EventCounts{})

	assert.Equal(t, 0.0, metrics.DeliveryRate)
	assert.Equal(t, 0.0, metrics.BounceRate)
	assert.Equal(t, 0.0, metrics.OpenRate)
	assert.Equal(t, 0.0, metrics.UnsubscribeRate)
	assert.Equal(t, 0.0, metrics.SpamRate)
}

func TestComputeRates_SpamRateBlendsBounces(t *testing.T) {
	counts := repository.EventCounts{
		enum.EmailEventSent:       1000,
		enum.EmailEventBounced:    20,
		enum.EmailEventComplained: 3,
	}

	metrics := computeRates(counts)

	// (3 + 0.3*20) / 1000 = 0.9%
	assert.Equal(t, 0.9, metrics.SpamRate)
}

func TestReputationScore_HealthySender(t *testing.T) {
	score := reputationScore(dto.DeliverabilityMetrics{
		DeliveryRate: 95, BounceRate: 5, ComplaintRate: 0, OpenRate: 21, ClickRate: 5,
	})

	// no penalties at the exact boundaries, small engagement rewards, clamped
	assert.Equal(t, 100, score)
}

func TestReputationScore_Penalties(t *testing.T) {
	score := reputationScore(dto.DeliverabilityMetrics{
		DeliveryRate: 85, BounceRate: 12, ComplaintRate: 0.6, OpenRate: 10, ClickRate: 1,
	})

	// 100 - 2*7 - 50*0.5 - 1.5*10 = 46
	assert.Equal(t, 46, score)
}

func TestReputationScore_RewardsCapped(t *testing.T) {
	score := reputationScore(dto.DeliverabilityMetrics{
		DeliveryRate: 90, BounceRate: 0, ComplaintRate: 0, OpenRate: 90, ClickRate: 40,
	})

	// 100 - 1.5*5 + 10 + 5 = 107.5 -> clamped
	assert.Equal(t, 100, score)
}

func TestReputationScore_ClampedAtZero(t *testing.T) {
	score := reputationScore(dto.DeliverabilityMetrics{
		DeliveryRate: 0, BounceRate: 100, ComplaintRate: 5,
	})

	assert.Equal(t, 0, score)
}

func TestReputationTrend(t *testing.T) {
	assert.Equal(t, enum.TrendStable, reputationTrend(nil))
	assert.Equal(t, enum.TrendStable, reputationTrend([]float64{80}))
	assert.Equal(t, enum.TrendStable, reputationTrend([]float64{80, 82}))
	assert.Equal(t, enum.TrendImproving, reputationTrend([]float64{70, 80}))
	assert.Equal(t, enum.TrendDeclining, reputationTrend([]float64{80, 70}))

	// odd short history, disjoint one-point windows around the midpoint
	assert.Equal(t, enum.TrendImproving, reputationTrend([]float64{70, 75, 80}))
	assert.Equal(t, enum.TrendDeclining, reputationTrend([]float64{80, 75, 70}))

	// ten points, halves must not share snapshots
	history := []float64{60, 60, 60, 60, 60, 80, 80, 80, 80, 80}
	assert.Equal(t, enum.TrendImproving, reputationTrend(history))

	// 14 points, earliest seven average 60, latest seven average 75
	history = []float64{60, 60, 60, 60, 60, 60, 60, 75, 75, 75, 75, 75, 75, 75}
	assert.Equal(t, enum.TrendImproving, reputationTrend(history))
}

func TestEstimatedImprovement(t *testing.T) {
	// healthy tenant, nothing to gain
	assert.Equal(t, 0.0, estimatedImprovement(dto.DeliverabilityMetrics{
		DeliveryRate: 98, AuthenticationScore: 90, ReputationScore: 85,
	}))

	// 0.2*20 + 0.3*30 + 0.5*10 = 18
	assert.Equal(t, 18.0, estimatedImprovement(dto.DeliverabilityMetrics{
		DeliveryRate: 85, AuthenticationScore: 50, ReputationScore: 40,
	}))

	// capped at 25
	assert.Equal(t, 25.0, estimatedImprovement(dto.DeliverabilityMetrics{
		DeliveryRate: 40, AuthenticationScore: 0, ReputationScore: 0,
	}))
}
