package deliverability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/repository"
)

type fakeEventRepo struct {
	repository.EmailEventRepository
	counts repository.EventCounts
}

func (r *fakeEventRepo) CountEventsByType(_ context.Context, _ string, _ time.Time) (repository.EventCounts, error) {
	return r.counts, nil
}

type fakeDeliverabilityAlertRepo struct {
	repository.DeliverabilityAlertRepository
	alerts []*models.DeliverabilityAlert
}

func (r *fakeDeliverabilityAlertRepo) CreateAlert(_ context.Context, alert *models.DeliverabilityAlert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *fakeDeliverabilityAlertRepo) CountUnresolved(_ context.Context, _ string) (int64, error) {
	var count int64
	for _, alert := range r.alerts {
		if !alert.IsResolved {
			count++
		}
	}
	return count, nil
}

type fakeScoreRepo struct {
	repository.DeliverabilityScoreRepository
	snapshots []*models.TenantDeliverabilityScore
}

func (r *fakeScoreRepo) CreateSnapshot(_ context.Context, score *models.TenantDeliverabilityScore) error {
	score.ID = fmt.Sprintf("snapshot-%d", len(r.snapshots)+1)
	r.snapshots = append(r.snapshots, score)
	return nil
}

func (r *fakeScoreRepo) GetSnapshotsSince(_ context.Context, _ string, _ time.Time) ([]models.TenantDeliverabilityScore, error) {
	var result []models.TenantDeliverabilityScore
	for _, snapshot := range r.snapshots {
		result = append(result, *snapshot)
	}
	return result, nil
}

type fakeReputationRepo struct {
	repository.DomainReputationRepository
	reputations []models.DomainReputation
}

func (r *fakeReputationRepo) GetByTenant(_ context.Context, _ string) ([]models.DomainReputation, error) {
	return r.reputations, nil
}

type fakeTenantDomainRepo struct {
	repository.DomainRepository
	domains []models.Domain
}

func (r *fakeTenantDomainRepo) GetDomains(_ context.Context, _ string) ([]models.Domain, error) {
	return r.domains, nil
}

type fakeDomainService struct {
	interfaces.DomainService
	authScore int
}

func (s *fakeDomainService) AuthenticationScore(_ context.Context, _ string) (int, error) {
	return s.authScore, nil
}

type fakeResolver struct {
	txt map[string][]string
}

func (f *fakeResolver) LookupTXT(_ context.Context, name string) ([]string, error) {
	return f.txt[name], nil
}
func (f *fakeResolver) LookupCNAME(context.Context, string) (string, error) { return "", nil }
func (f *fakeResolver) LookupMX(context.Context, string) ([]string, error) { return nil, nil }

type fakeAuthCheckRepo struct {
	repository.AuthCheckRepository
	checks []*models.DomainAuthCheck
}

func (r *fakeAuthCheckRepo) CreateAuthCheck(_ context.Context, check *models.DomainAuthCheck) error {
	r.checks = append(r.checks, check)
	return nil
}

type fakePublisher struct {
	published int
}

func (p *fakePublisher) PublishDomainAlert(context.Context, *models.DomainAlert) error { return nil }
func (p *fakePublisher) PublishDeliverabilityAlert(context.Context, *models.DeliverabilityAlert) error {
	p.published++
	return nil
}
func (p *fakePublisher) Close() error { return nil }

type serviceFixture struct {
	service   *deliverabilityService
	events    *fakeEventRepo
	alerts    *fakeDeliverabilityAlertRepo
	scores    *fakeScoreRepo
	publisher *fakePublisher
	resolver  *fakeResolver
}

func newServiceFixture(t *testing.T, counts repository.EventCounts) *serviceFixture {
	t.Helper()

	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()

	events := &fakeEventRepo{counts: counts}
	alerts := &fakeDeliverabilityAlertRepo{}
	scores := &fakeScoreRepo{}
	publisher := &fakePublisher{}
	resolver := &fakeResolver{txt: map[string][]string{}}

	repos := &repository.Repositories{
		DomainRepository: &fakeTenantDomainRepo{domains: []models.Domain{
			{ID: "d1", Tenant: "acme", Domain: "acme.com", Status: enum.DomainStatusVerified},
			{ID: "d2", Tenant: "acme", Domain: "acme.io", Status: enum.DomainStatusPending},
		}},
		EmailEventRepository:          events,
		DeliverabilityAlertRepository: alerts,
		DeliverabilityScoreRepository: scores,
		DomainReputationRepository:    &fakeReputationRepo{},
		AuthCheckRepository:           &fakeAuthCheckRepo{},
	}

	dnsConfig := &config.DNSConfig{DKIMSelector: "mail"}
	service := NewDeliverabilityService(
		appLogger, repos, nil, resolver, &fakeDomainService{authScore: 50}, publisher, dnsConfig,
	).(*deliverabilityService)

	return &serviceFixture{
		service:   service,
		events:    events,
		alerts:    alerts,
		scores:    scores,
		publisher: publisher,
		resolver:  resolver,
	}
}

func TestGetDeliverabilityMetrics(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{
		enum.EmailEventSent:         100,
		enum.EmailEventDelivered:    95,
		enum.EmailEventBounced:      5,
		enum.EmailEventOpened:       20,
		enum.EmailEventClicked:      5,
		enum.EmailEventUnsubscribed: 1,
	})

	metrics, err := f.service.GetDeliverabilityMetrics(context.Background(), "acme", 0)
	require.NoError(t, err)

	assert.Equal(t, "acme", metrics.Tenant)
	assert.Equal(t, 30, metrics.WindowDays)
	assert.Equal(t, 95.0, metrics.DeliveryRate)
	assert.Equal(t, 5.0, metrics.BounceRate)
	assert.Equal(t, 21.0, metrics.OpenRate)
	assert.Equal(t, 1.05, metrics.UnsubscribeRate)
	assert.Equal(t, 100, metrics.ReputationScore)
	assert.Equal(t, 50, metrics.AuthenticationScore)

	// a snapshot is persisted per computation
	require.Len(t, f.scores.snapshots, 1)
	assert.Equal(t, 100, f.scores.snapshots[0].ReputationScore)
}

func TestCheckThresholds_RaisesAndPublishesAlerts(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{
		enum.EmailEventSent:       100,
		enum.EmailEventDelivered:  80,
		enum.EmailEventBounced:    15,
		enum.EmailEventComplained: 2,
	})

	alerts, err := f.service.CheckThresholds(context.Background(), "acme")
	require.NoError(t, err)

	// delivery 80, bounce 15, complaint 2 and the collapsed reputation all breach
	require.Len(t, alerts, 4)
	for _, alert := range alerts {
		assert.Equal(t, "acme", alert.Tenant)
		assert.Equal(t, enum.AlertSeverityCritical, alert.Severity)
		assert.NotEmpty(t, alert.ID)
		assert.NotEmpty(t, alert.Recommendations)
	}
	assert.Equal(t, 4, f.publisher.published)
	assert.Len(t, f.alerts.alerts, 4)
}

func TestCheckThresholds_NoDedup(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{
		enum.EmailEventSent:    100,
		enum.EmailEventBounced: 15,
	})

	_, err := f.service.CheckThresholds(context.Background(), "acme")
	require.NoError(t, err)
	before := len(f.alerts.alerts)

	_, err = f.service.CheckThresholds(context.Background(), "acme")
	require.NoError(t, err)

	// identical breach inserts new rows every time
	assert.Equal(t, before*2, len(f.alerts.alerts))
}

func TestValidateEmailAuthentication(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{})
	f.resolver.txt = map[string][]string{
		"acme.com":                 {"v=spf1 include:spf.relaypoint.io ~all"},
		"mail._domainkey.acme.com": {"v=DKIM1; k=rsa; p=KEY"},
		"_dmarc.acme.com":          {"v=DMARC1; p=quarantine; rua=mailto:d@acme.com"},
	}

	validation, err := f.service.ValidateEmailAuthentication(context.Background(), "acme.com")
	require.NoError(t, err)

	assert.Equal(t, 100, validation.SPFScore)
	assert.Equal(t, 100, validation.DKIMScore)
	assert.Equal(t, 100, validation.DMARCScore)
	assert.Equal(t, 100, validation.OverallScore)
	assert.True(t, validation.IsValid)
}

func TestValidateEmailAuthentication_PartialSetup(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{})
	f.resolver.txt = map[string][]string{
		"acme.com": {"v=spf1 include:spf.relaypoint.io ~all"},
	}

	validation, err := f.service.ValidateEmailAuthentication(context.Background(), "acme.com")
	require.NoError(t, err)

	// spf only: 100*0.3 = 30
	assert.Equal(t, 100, validation.SPFScore)
	assert.Equal(t, 0, validation.DKIMScore)
	assert.Equal(t, 0, validation.DMARCScore)
	assert.Equal(t, 30, validation.OverallScore)
	assert.False(t, validation.IsValid)
}

func TestValidateEmailAuthentication_RelaxedDMARCPolicy(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{})
	f.resolver.txt = map[string][]string{
		"_dmarc.acme.com": {"v=DMARC1; p=none; rua=mailto:d@acme.com"},
	}

	validation, err := f.service.ValidateEmailAuthentication(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.Equal(t, 70, validation.DMARCScore)
}

func TestMonitorSenderReputation(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{
		enum.EmailEventSent:      100,
		enum.EmailEventDelivered: 98,
		enum.EmailEventOpened:    30,
	})

	reputation, err := f.service.MonitorSenderReputation(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, 100, reputation.SenderScore)
	assert.Equal(t, 70, reputation.DomainScore)
	assert.Equal(t, 100, reputation.IPScore)
	// 100*0.4 + 70*0.4 + 100*0.2 = 88
	assert.Equal(t, 88, reputation.OverallScore)
	assert.Equal(t, enum.TrendStable, reputation.Trend)
	assert.Len(t, reputation.Factors, 3)
}

func TestGetDashboardSummary_SingleSnapshotPerRead(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{
		enum.EmailEventSent:      100,
		enum.EmailEventDelivered: 98,
	})

	summary, err := f.service.GetDashboardSummary(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.DomainCount)
	assert.Equal(t, 1, summary.VerifiedDomains)
	assert.Equal(t, 0, summary.UnresolvedAlerts)
	assert.Equal(t, summary.Metrics.ReputationScore, summary.Reputation.SenderScore)

	// the reputation block reuses the metrics computed for the summary,
	// a dashboard read must not inflate the score history
	assert.Len(t, f.scores.snapshots, 1)
}

func TestOptimizeDeliveryRates(t *testing.T) {
	f := newServiceFixture(t, repository.EventCounts{
		enum.EmailEventSent:      100,
		enum.EmailEventDelivered: 85,
		enum.EmailEventBounced:   12,
	})

	result, err := f.service.OptimizeDeliveryRates(context.Background(), "acme")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Recommendations)
	assert.Greater(t, result.EstimatedImprovement, 0.0)
	assert.LessOrEqual(t, result.EstimatedImprovement, 25.0)
}
