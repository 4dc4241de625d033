package deliverability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/cache"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/internal/tracing"
	"github.com/relaypoint/mailguard/internal/utils"
)

// DefaultWindowDays is the metrics aggregation window when callers don't ask
// for a specific one. Cache invalidation keys off the same value.
const DefaultWindowDays = 30

type deliverabilityService struct {
	log           logger.Logger
	repositories  *repository.Repositories
	metricsCache  *cache.MetricsCache
	resolver      interfaces.Resolver
	domainService interfaces.DomainService
	publisher     interfaces.AlertPublisher
	dnsConfig     *config.DNSConfig
}

func NewDeliverabilityService(
	log logger.Logger,
	repositories *repository.Repositories,
	metricsCache *cache.MetricsCache,
	resolver interfaces.Resolver,
	domainService interfaces.DomainService,
	publisher interfaces.AlertPublisher,
	dnsConfig *config.DNSConfig,
) interfaces.DeliverabilityService {
	return &deliverabilityService{
		log:           log,
		repositories:  repositories,
		metricsCache:  metricsCache,
		resolver:      resolver,
		domainService: domainService,
		publisher:     publisher,
		dnsConfig:     dnsConfig,
	}
}

// GetDeliverabilityMetrics recomputes rate metrics from the event history and
// persists a snapshot for trend reconstruction. Cached reads skip both.
func (s *deliverabilityService) GetDeliverabilityMetrics(ctx context.Context, tenant string, windowDays int) (*dto.DeliverabilityMetrics, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.GetDeliverabilityMetrics")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, tenant)

	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	span.LogKV("windowDays", windowDays)

	if cached, ok := s.metricsCache.GetMetrics(ctx, tenant, windowDays); ok {
		span.LogKV("cache", "hit")
		return cached, nil
	}

	// day-aligned cutoff so every read within a day aggregates the same window
	since := utils.StartOfDayInUTC(utils.Now().AddDate(0, 0, -windowDays))
	counts, err := s.repositories.EmailEventRepository.CountEventsByType(ctx, tenant, since)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	metrics := computeRates(counts)
	metrics.Tenant = tenant
	metrics.WindowDays = windowDays
	metrics.ReputationScore = reputationScore(metrics)

	authScore, err := s.domainService.AuthenticationScore(ctx, tenant)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	metrics.AuthenticationScore = authScore

	snapshot := &models.TenantDeliverabilityScore{
		Tenant:              tenant,
		WindowDays:          windowDays,
		DeliveryRate:        metrics.DeliveryRate,
		BounceRate:          metrics.BounceRate,
		ComplaintRate:       metrics.ComplaintRate,
		OpenRate:            metrics.OpenRate,
		ClickRate:           metrics.ClickRate,
		SpamRate:            metrics.SpamRate,
		UnsubscribeRate:     metrics.UnsubscribeRate,
		ReputationScore:     metrics.ReputationScore,
		AuthenticationScore: metrics.AuthenticationScore,
	}
	if err := s.repositories.DeliverabilityScoreRepository.CreateSnapshot(ctx, snapshot); err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("deliverability snapshot for tenant %s failed: %v", tenant, err)
	}

	if err := s.metricsCache.SetMetrics(ctx, &metrics); err != nil {
		s.log.Warnf("metrics cache write for tenant %s failed: %v", tenant, err)
	}

	return &metrics, nil
}

// ValidateEmailAuthentication re-derives SPF/DKIM/DMARC validity from live DNS
// and records the check.
func (s *deliverabilityService) ValidateEmailAuthentication(ctx context.Context, domainName string) (*dto.AuthenticationValidation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.ValidateEmailAuthentication")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomain(span, domainName)

	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		err := errors.New("domain name is required")
		tracing.TraceErr(span, err)
		return nil, err
	}

	validation := &dto.AuthenticationValidation{
		Domain:     domainName,
		SPFScore:   s.spfScore(ctx, domainName),
		DKIMScore:  s.dkimScore(ctx, domainName),
		DMARCScore: s.dmarcScore(ctx, domainName),
	}
	validation.OverallScore = utils.RoundToInt(
		float64(validation.SPFScore)*0.3 + float64(validation.DKIMScore)*0.4 + float64(validation.DMARCScore)*0.3)
	validation.IsValid = validation.OverallScore >= 70

	check := &models.DomainAuthCheck{
		Tenant:       utils.GetTenantFromContext(ctx),
		Domain:       domainName,
		SPFScore:     validation.SPFScore,
		DKIMScore:    validation.DKIMScore,
		DMARCScore:   validation.DMARCScore,
		OverallScore: validation.OverallScore,
		IsValid:      validation.IsValid,
	}
	if err := s.repositories.AuthCheckRepository.CreateAuthCheck(ctx, check); err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("auth check persistence for %s failed: %v", domainName, err)
	}

	span.LogKV("result.overallScore", validation.OverallScore)
	return validation, nil
}

func (s *deliverabilityService) spfScore(ctx context.Context, domainName string) int {
	values, err := s.resolver.LookupTXT(ctx, domainName)
	if err != nil {
		return 0
	}
	for _, value := range values {
		if strings.HasPrefix(value, "v=spf1") {
			return 100
		}
	}
	return 0
}

func (s *deliverabilityService) dkimScore(ctx context.Context, domainName string) int {
	name := fmt.Sprintf("%s._domainkey.%s", s.dnsConfig.DKIMSelector, domainName)
	values, err := s.resolver.LookupTXT(ctx, name)
	if err != nil {
		return 0
	}
	for _, value := range values {
		if strings.Contains(value, "v=DKIM1") {
			return 100
		}
	}
	return 0
}

// dkim gets full credit on presence; dmarc is graded by policy strictness.
func (s *deliverabilityService) dmarcScore(ctx context.Context, domainName string) int {
	values, err := s.resolver.LookupTXT(ctx, "_dmarc."+domainName)
	if err != nil {
		return 0
	}
	for _, value := range values {
		if !strings.Contains(value, "v=DMARC1") {
			continue
		}
		if strings.Contains(value, "p=reject") || strings.Contains(value, "p=quarantine") {
			return 100
		}
		return 70
	}
	return 0
}

// MonitorSenderReputation blends current metrics, the snapshot history, domain
// reputation and a 24h bounce/complaint spike proxy for IP standing.
func (s *deliverabilityService) MonitorSenderReputation(ctx context.Context, tenant string) (*dto.ReputationMetrics, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.MonitorSenderReputation")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, tenant)

	metrics, err := s.GetDeliverabilityMetrics(ctx, tenant, DefaultWindowDays)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	result, err := s.senderReputation(ctx, tenant, metrics)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.LogKV("result.overallScore", result.OverallScore, "result.trend", result.Trend.String())
	return result, nil
}

// senderReputation derives the composite from metrics the caller already
// computed, so one dashboard read snapshots the score history exactly once.
func (s *deliverabilityService) senderReputation(ctx context.Context, tenant string, metrics *dto.DeliverabilityMetrics) (*dto.ReputationMetrics, error) {
	senderScore := metrics.ReputationScore
	domainScore, err := s.domainReputationScore(ctx, tenant)
	if err != nil {
		return nil, err
	}
	ipScore, err := s.ipReputationScore(ctx, tenant)
	if err != nil {
		return nil, err
	}

	history, err := s.repositories.DeliverabilityScoreRepository.GetSnapshotsSince(ctx, tenant, utils.Now().AddDate(0, 0, -DefaultWindowDays))
	if err != nil {
		return nil, err
	}
	scores := make([]float64, 0, len(history))
	for _, snapshot := range history {
		scores = append(scores, float64(snapshot.ReputationScore))
	}

	result := &dto.ReputationMetrics{
		SenderScore:  senderScore,
		DomainScore:  domainScore,
		IPScore:      ipScore,
		OverallScore: utils.RoundToInt(float64(senderScore)*0.4 + float64(domainScore)*0.4 + float64(ipScore)*0.2),
		Trend:        reputationTrend(scores),
		Factors: []dto.ReputationFactor{
			{
				Name:        "Sending Behavior",
				Impact:      0.4,
				Status:      factorStatus(senderScore),
				Description: "Delivery, bounce and complaint performance over the last 30 days",
			},
			{
				Name:        "Domain Reputation",
				Impact:      0.4,
				Status:      factorStatus(domainScore),
				Description: "Authentication and standing of your sending domains",
			},
			{
				Name:        "IP Reputation",
				Impact:      0.2,
				Status:      factorStatus(ipScore),
				Description: "Short-term bounce and complaint spikes on shared sending IPs",
			},
		},
	}

	return result, nil
}

func (s *deliverabilityService) domainReputationScore(ctx context.Context, tenant string) (int, error) {
	reputations, err := s.repositories.DomainReputationRepository.GetByTenant(ctx, tenant)
	if err != nil {
		return 0, err
	}
	if len(reputations) == 0 {
		// shared-domain senders inherit a neutral standing
		return 70, nil
	}
	total := 0
	for _, reputation := range reputations {
		total += reputation.Score
	}
	return utils.RoundToInt(float64(total) / float64(len(reputations))), nil
}

// ipReputationScore penalizes the last 24 hours of bounce/complaint spikes.
func (s *deliverabilityService) ipReputationScore(ctx context.Context, tenant string) (int, error) {
	counts, err := s.repositories.EmailEventRepository.CountEventsByType(ctx, tenant, utils.Now().Add(-24*time.Hour))
	if err != nil {
		return 0, err
	}

	recent := computeRates(counts)
	score := 100.0
	if recent.BounceRate > 5 {
		score -= 20
	}
	if recent.ComplaintRate > 0.1 {
		score -= 30
	}
	return utils.RoundToInt(utils.ClampFloat(score, 0, 100)), nil
}

func factorStatus(score int) enum.FactorStatus {
	switch {
	case score >= 70:
		return enum.FactorStatusGood
	case score >= 50:
		return enum.FactorStatusWarning
	default:
		return enum.FactorStatusCritical
	}
}

// OptimizeDeliveryRates ranks recommendations by which thresholds are breached
// and estimates the achievable improvement.
func (s *deliverabilityService) OptimizeDeliveryRates(ctx context.Context, tenant string) (*dto.OptimizationResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.OptimizeDeliveryRates")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, tenant)

	metrics, err := s.GetDeliverabilityMetrics(ctx, tenant, DefaultWindowDays)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var recommendations []string
	if metrics.AuthenticationScore < 70 {
		recommendations = append(recommendations,
			"Verify your sending domains: SPF, DKIM and DMARC have the largest single impact on inbox placement")
	}
	if metrics.BounceRate > thresholds.BounceRate.Warning {
		recommendations = append(recommendations,
			"Clean your lists: suppress hard bounces and validate addresses at signup")
	}
	if metrics.ReputationScore < 70 {
		recommendations = append(recommendations,
			"Rebuild reputation: send smaller volumes to your most engaged recipients first")
	}
	if metrics.DeliveryRate < thresholds.DeliveryRate.Warning {
		recommendations = append(recommendations,
			"Ramp up volume gradually: sudden spikes look like spam to receiving servers")
	}

	return &dto.OptimizationResult{
		Metrics:              *metrics,
		Recommendations:      recommendations,
		EstimatedImprovement: estimatedImprovement(*metrics),
	}, nil
}

// CheckThresholds inserts one alert per breached metric. Repeated checks with
// the same breach insert new rows, alerting is deliberately not deduplicated.
func (s *deliverabilityService) CheckThresholds(ctx context.Context, tenant string) ([]models.DeliverabilityAlert, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.CheckThresholds")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, tenant)

	metrics, err := s.GetDeliverabilityMetrics(ctx, tenant, DefaultWindowDays)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var created []models.DeliverabilityAlert
	for _, b := range evaluateThresholds(*metrics) {
		alert := models.DeliverabilityAlert{
			ID:       uuid.New().String(),
			Tenant:   tenant,
			Type:     b.Type,
			Severity: b.Severity,
			Message:  b.Message,
			Metrics: models.JSONMap{
				"deliveryRate":    metrics.DeliveryRate,
				"bounceRate":      metrics.BounceRate,
				"complaintRate":   metrics.ComplaintRate,
				"reputationScore": metrics.ReputationScore,
			},
			Recommendations: b.Recommendations,
		}
		if err := s.repositories.DeliverabilityAlertRepository.CreateAlert(ctx, &alert); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		if err := s.publisher.PublishDeliverabilityAlert(ctx, &alert); err != nil {
			s.log.Warnf("publishing deliverability alert %s failed: %v", alert.ID, err)
		}
		created = append(created, alert)
	}

	span.LogKV("result.alerts", len(created))
	return created, nil
}

func (s *deliverabilityService) GetAlerts(ctx context.Context, tenant string, includeResolved bool) ([]models.DeliverabilityAlert, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.GetAlerts")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, tenant)

	return s.repositories.DeliverabilityAlertRepository.GetAlertsByTenant(ctx, tenant, includeResolved)
}

func (s *deliverabilityService) ResolveAlert(ctx context.Context, alertID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.ResolveAlert")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, alertID)

	return s.repositories.DeliverabilityAlertRepository.ResolveAlert(ctx, alertID)
}

func (s *deliverabilityService) GetDashboardSummary(ctx context.Context, tenant string) (*dto.DashboardSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeliverabilityService.GetDashboardSummary")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, tenant)

	metrics, err := s.GetDeliverabilityMetrics(ctx, tenant, DefaultWindowDays)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	reputation, err := s.senderReputation(ctx, tenant, metrics)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	unresolved, err := s.repositories.DeliverabilityAlertRepository.CountUnresolved(ctx, tenant)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	domains, err := s.repositories.DomainRepository.GetDomains(ctx, tenant)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	verified := 0
	for _, domain := range domains {
		if domain.Status == enum.DomainStatusVerified {
			verified++
		}
	}

	return &dto.DashboardSummary{
		Metrics:          *metrics,
		Reputation:       *reputation,
		UnresolvedAlerts: int(unresolved),
		DomainCount:      len(domains),
		VerifiedDomains:  verified,
	}, nil
}
