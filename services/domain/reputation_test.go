package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
)

func TestReputationFactors_Verified(t *testing.T) {
	factors := reputationFactors(true)

	require.Len(t, factors, 3)
	assert.Equal(t, "DNS Authentication", factors[0].Name)
	assert.Equal(t, 100.0, factors[0].Score)
	assert.Equal(t, 0.3, factors[0].Weight)
	assert.Equal(t, enum.FactorStatusGood, factors[0].Status)
	assert.Equal(t, 85.0, factors[1].Score)
	assert.Equal(t, 0.4, factors[1].Weight)
	assert.Equal(t, 95.0, factors[2].Score)
	assert.Equal(t, 0.3, factors[2].Weight)
}

func TestReputationFactors_Unverified(t *testing.T) {
	factors := reputationFactors(false)

	assert.Equal(t, 0.0, factors[0].Score)
	assert.Equal(t, enum.FactorStatusCritical, factors[0].Status)
}

func TestReputationScore_VerifiedDefault(t *testing.T) {
	// 100*0.3 + 85*0.4 + 95*0.3 = 92.5 -> 92
	assert.Equal(t, 92, reputationScore(reputationFactors(true)))
}

func TestReputationScore_UnverifiedDefault(t *testing.T) {
	// 0*0.3 + 85*0.4 + 95*0.3 = 62.5 -> 62
	assert.Equal(t, 62, reputationScore(reputationFactors(false)))
}

func TestReputationScore_Clamped(t *testing.T) {
	high := models.ReputationFactors{{Score: 200, Weight: 1}}
	assert.Equal(t, 100, reputationScore(high))

	low := models.ReputationFactors{{Score: -50, Weight: 1}}
	assert.Equal(t, 0, reputationScore(low))
}

func TestReputationRecommendations(t *testing.T) {
	assert.Empty(t, reputationRecommendations(enum.DomainStatusVerified, 92))

	recommendations := reputationRecommendations(enum.DomainStatusFailed, 62)
	assert.Len(t, recommendations, 2)

	recommendations = reputationRecommendations(enum.DomainStatusVerified, 60)
	assert.Len(t, recommendations, 1)
}
