package interfaces

import (
	"context"

	"github.com/relaypoint/mailguard/dto"
)

// SpamAnalyzer scores subject/body/sender triples before send.
type SpamAnalyzer interface {
	AnalyzeSpamScore(ctx context.Context, content *dto.EmailContent) (*dto.SpamScoreResult, error)
}
