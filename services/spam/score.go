package spam

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/enum"
)

// Factor scoring is deliberately split into pure functions over explicit
// inputs so each heuristic stays deterministic and testable in isolation.

var promotionalKeywords = []string{
	"FREE", "URGENT", "ACT NOW", "LIMITED TIME", "GUARANTEED", "WINNER",
}

var punctuationRunPattern = regexp.MustCompile(`[!?]{2,}`)

func scoreSubjectCapitalization(subject string) *dto.SpamFactor {
	var letters, upper int
	for _, r := range subject {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 || float64(upper)/float64(letters) <= 0.5 {
		return nil
	}
	return &dto.SpamFactor{
		Name:        "subject_capitalization",
		Score:       15,
		Weight:      1.2,
		Description: "Subject is mostly uppercase",
		Severity:    enum.AlertSeverityMedium,
	}
}

func scoreSubjectKeywords(subject string) *dto.SpamFactor {
	upperSubject := strings.ToUpper(subject)
	count := 0
	for _, keyword := range promotionalKeywords {
		count += strings.Count(upperSubject, keyword)
	}
	if count == 0 {
		return nil
	}

	severity := enum.AlertSeverityMedium
	switch {
	case count >= 3:
		severity = enum.AlertSeverityCritical
	case count == 2:
		severity = enum.AlertSeverityHigh
	}

	return &dto.SpamFactor{
		Name:        "subject_keywords",
		Score:       float64(10 * count),
		Weight:      1.5,
		Description: "Subject contains promotional keywords",
		Severity:    severity,
	}
}

func scoreSubjectPunctuation(subject string) *dto.SpamFactor {
	runs := len(punctuationRunPattern.FindAllString(subject, -1))
	if runs == 0 {
		return nil
	}
	return &dto.SpamFactor{
		Name:        "subject_punctuation",
		Score:       float64(5 * runs),
		Weight:      1.0,
		Description: "Subject contains repeated punctuation",
		Severity:    enum.AlertSeverityLow,
	}
}

func scoreBodyLength(strippedText string) *dto.SpamFactor {
	if len(strippedText) >= 50 {
		return nil
	}
	return &dto.SpamFactor{
		Name:        "body_too_short",
		Score:       10,
		Weight:      1.0,
		Description: "Message body has almost no text content",
		Severity:    enum.AlertSeverityLow,
	}
}

// scoreLinkDensity flags bodies that are mostly links: the ratio is links per
// hundred characters of stripped text.
func scoreLinkDensity(linkCount int, strippedText string) *dto.SpamFactor {
	if linkCount == 0 {
		return nil
	}
	length := len(strippedText)
	if length == 0 {
		length = 1
	}
	ratio := float64(linkCount) / float64(length) * 100
	if ratio <= 3 {
		return nil
	}

	score := ratio * 3
	if score > 20 {
		score = 20
	}
	return &dto.SpamFactor{
		Name:        "link_density",
		Score:       score,
		Weight:      1.3,
		Description: "High link count relative to text content",
		Severity:    enum.AlertSeverityMedium,
	}
}

func scoreImageHeavyBody(imageCount int, strippedText string) *dto.SpamFactor {
	if imageCount == 0 || len(strippedText) >= 100 {
		return nil
	}
	return &dto.SpamFactor{
		Name:        "image_heavy_body",
		Score:       15,
		Weight:      1.2,
		Description: "Images with little accompanying text",
		Severity:    enum.AlertSeverityMedium,
	}
}

func scoreNoReplySender(fromEmail string) *dto.SpamFactor {
	localPart := fromEmail
	if at := strings.Index(fromEmail, "@"); at >= 0 {
		localPart = fromEmail[:at]
	}
	localPart = strings.ToLower(localPart)
	if !strings.Contains(localPart, "noreply") && !strings.Contains(localPart, "no-reply") {
		return nil
	}
	return &dto.SpamFactor{
		Name:        "noreply_sender",
		Score:       5,
		Weight:      0.8,
		Description: "Sender address discourages replies",
		Severity:    enum.AlertSeverityLow,
	}
}

// scoreSenderNameMismatch flags a from-name that shares no token with the
// sending domain's labels. Short names are skipped, they match nothing by accident.
func scoreSenderNameMismatch(fromName string, domainLabels []string) *dto.SpamFactor {
	if len(fromName) <= 3 || len(domainLabels) == 0 {
		return nil
	}

	nameTokens := strings.Fields(strings.ToLower(fromName))
	for _, token := range nameTokens {
		for _, label := range domainLabels {
			if token == label || strings.Contains(label, token) || strings.Contains(token, label) {
				return nil
			}
		}
	}

	return &dto.SpamFactor{
		Name:        "sender_name_mismatch",
		Score:       8,
		Weight:      1.1,
		Description: "Sender name is unrelated to the sending domain",
		Severity:    enum.AlertSeverityLow,
	}
}

func totalScore(factors []dto.SpamFactor) float64 {
	var total float64
	for _, factor := range factors {
		total += factor.Score * factor.Weight
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}
