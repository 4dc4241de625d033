package domain

import (
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/utils"
)

const (
	defaultSendingHistoryScore = 85
	defaultComplaintRateScore  = 95
)

// reputationFactors builds the three weighted components of a domain's score.
// DNS authentication is binary on verified status; sending history and
// complaint rate use neutral defaults until real per-domain history feeds in.
func reputationFactors(verified bool) models.ReputationFactors {
	authScore := float64(0)
	authStatus := enum.FactorStatusCritical
	authDescription := "Domain is not verified, receiving servers cannot authenticate your mail"
	if verified {
		authScore = 100
		authStatus = enum.FactorStatusGood
		authDescription = "SPF, DKIM and DMARC records are published and verified"
	}

	return models.ReputationFactors{
		{
			Name:        "DNS Authentication",
			Score:       authScore,
			Weight:      0.3,
			Description: authDescription,
			Status:      authStatus,
		},
		{
			Name:        "Sending History",
			Score:       defaultSendingHistoryScore,
			Weight:      0.4,
			Description: "Consistent sending volume with no recent incidents",
			Status:      enum.FactorStatusGood,
		},
		{
			Name:        "Complaint Rate",
			Score:       defaultComplaintRateScore,
			Weight:      0.3,
			Description: "Complaint volume is within acceptable bounds",
			Status:      enum.FactorStatusGood,
		},
	}
}

func reputationScore(factors models.ReputationFactors) int {
	var weighted float64
	for _, factor := range factors {
		weighted += factor.Score * factor.Weight
	}
	return utils.RoundToInt(utils.ClampFloat(weighted, 0, 100))
}

func reputationRecommendations(status enum.DomainStatus, score int) models.StringArray {
	var recommendations models.StringArray
	if status != enum.DomainStatusVerified {
		recommendations = append(recommendations,
			"Complete DNS verification: publish the SPF, DKIM, DMARC and ownership records and trigger verification")
	}
	if score < 70 {
		recommendations = append(recommendations,
			"Warm up sending gradually and keep complaint rates low to rebuild reputation")
	}
	return recommendations
}
