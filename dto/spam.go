package dto

import "github.com/relaypoint/mailguard/internal/enum"

// EmailContent is the subject/body/sender triple analyzed before send.
type EmailContent struct {
	Subject   string `json:"subject"`
	HTMLBody  string `json:"htmlBody"`
	TextBody  string `json:"textBody,omitempty"`
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName,omitempty"`
}

type SpamFactor struct {
	Name        string             `json:"name"`
	Score       float64            `json:"score"`
	Weight      float64            `json:"weight"`
	Description string             `json:"description"`
	Severity    enum.AlertSeverity `json:"severity"`
}

type SpamScoreResult struct {
	Score           float64      `json:"score"`
	Factors         []SpamFactor `json:"factors"`
	Recommendations []string     `json:"recommendations"`
	IsLikelySpam    bool         `json:"isLikelySpam"`
}
