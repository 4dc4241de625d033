package spam

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/tracing"
)

type analyzer struct{}

// NewAnalyzer returns the stateless content spam scorer.
func NewAnalyzer() interfaces.SpamAnalyzer {
	return &analyzer{}
}

func (a *analyzer) AnalyzeSpamScore(ctx context.Context, content *dto.EmailContent) (*dto.SpamScoreResult, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "SpamAnalyzer.AnalyzeSpamScore")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if content == nil {
		err := errors.New("email content is required")
		tracing.TraceErr(span, err)
		return nil, err
	}

	strippedText, linkCount, imageCount, err := inspectBody(content)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var factors []dto.SpamFactor
	appendFactor := func(factor *dto.SpamFactor) {
		if factor != nil {
			factors = append(factors, *factor)
		}
	}

	appendFactor(scoreSubjectCapitalization(content.Subject))
	appendFactor(scoreSubjectKeywords(content.Subject))
	appendFactor(scoreSubjectPunctuation(content.Subject))
	appendFactor(scoreBodyLength(strippedText))
	appendFactor(scoreLinkDensity(linkCount, strippedText))
	appendFactor(scoreImageHeavyBody(imageCount, strippedText))
	appendFactor(scoreNoReplySender(content.FromEmail))
	appendFactor(scoreSenderNameMismatch(content.FromName, senderDomainLabels(content.FromEmail)))

	score := totalScore(factors)
	result := &dto.SpamScoreResult{
		Score:           score,
		Factors:         factors,
		Recommendations: recommendationsFor(factors),
		IsLikelySpam:    score > 50,
	}

	span.LogKV("result.score", result.Score, "result.isLikelySpam", result.IsLikelySpam)
	return result, nil
}

// inspectBody strips HTML down to text and counts anchors and images. Plain
// text bodies pass through untouched.
func inspectBody(content *dto.EmailContent) (string, int, int, error) {
	if content.HTMLBody == "" {
		return strings.TrimSpace(content.TextBody), 0, 0, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTMLBody))
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "html body parsing failed")
	}

	text := strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
	linkCount := doc.Find("a[href]").Length()
	imageCount := doc.Find("img").Length()

	return text, linkCount, imageCount, nil
}

// senderDomainLabels returns the registrable-domain labels of the sender
// address, e.g. "news@mail.acme.io" -> ["acme", "io"].
func senderDomainLabels(fromEmail string) []string {
	at := strings.LastIndex(fromEmail, "@")
	if at < 0 || at == len(fromEmail)-1 {
		return nil
	}

	host := strings.ToLower(fromEmail[at+1:])
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = registrable
	}

	return strings.Split(host, ".")
}

func recommendationsFor(factors []dto.SpamFactor) []string {
	var subjectHit, bodyHit, senderHit bool
	for _, factor := range factors {
		switch factor.Name {
		case "subject_capitalization", "subject_keywords", "subject_punctuation":
			subjectHit = true
		case "body_too_short", "link_density", "image_heavy_body":
			bodyHit = true
		case "noreply_sender", "sender_name_mismatch":
			senderHit = true
		}
	}

	var recommendations []string
	if subjectHit {
		recommendations = append(recommendations, "Rewrite the subject line: avoid all-caps, promotional keywords and repeated punctuation")
	}
	if bodyHit {
		recommendations = append(recommendations, "Balance the body content: add meaningful text and reduce the link and image density")
	}
	if senderHit {
		recommendations = append(recommendations, "Send from a monitored, recognizable address that matches your sending domain")
	}
	return recommendations
}
