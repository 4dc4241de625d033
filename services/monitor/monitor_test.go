package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/enum"
	er "github.com/relaypoint/mailguard/internal/errors"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/repository"
)

type fakeDomainRepo struct {
	repository.DomainRepository
	domains []models.Domain
}

func (r *fakeDomainRepo) GetDomainsByStatusCrossTenant(_ context.Context, status enum.DomainStatus) ([]models.Domain, error) {
	var result []models.Domain
	for _, domain := range r.domains {
		if domain.Status == status {
			result = append(result, domain)
		}
	}
	return result, nil
}

type fakeDomainService struct {
	interfaces.DomainService

	mu         sync.Mutex
	verified   []string
	refreshed  []string
	alerts     []enum.DomainAlertType
	failVerify map[string]bool
	repScore   int
}

func (s *fakeDomainService) VerifyDomain(_ context.Context, domainID string) (*dto.DomainVerificationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failVerify[domainID] {
		return nil, errors.New("dns lookup exploded")
	}
	s.verified = append(s.verified, domainID)
	return &dto.DomainVerificationResult{IsVerified: true}, nil
}

func (s *fakeDomainService) UpdateDomainReputation(_ context.Context, domainID string) (*models.DomainReputation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed = append(s.refreshed, domainID)
	return &models.DomainReputation{DomainID: domainID, Score: s.repScore}, nil
}

func (s *fakeDomainService) CreateAlert(_ context.Context, _ string, alertType enum.DomainAlertType, _ enum.AlertSeverity, _ string, _ models.JSONMap) (*models.DomainAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alertType)
	return &models.DomainAlert{}, nil
}

type fakeDeliverabilityService struct {
	interfaces.DeliverabilityService
	metrics dto.DeliverabilityMetrics
}

func (s *fakeDeliverabilityService) GetDeliverabilityMetrics(_ context.Context, tenant string, _ int) (*dto.DeliverabilityMetrics, error) {
	m := s.metrics
	m.Tenant = tenant
	return &m, nil
}

func testLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func testMonitorConfig() *config.MonitorConfig {
	return &config.MonitorConfig{
		CheckIntervalMinutes:     60,
		ReputationScoreThreshold: 70,
		DeliveryRateThreshold:    95,
		BounceRateThreshold:      5,
		CheckDNSRecords:          true,
		CheckReputation:          true,
		CheckDeliverability:      true,
	}
}

func verifiedDomains(names ...string) []models.Domain {
	var domains []models.Domain
	for _, name := range names {
		domains = append(domains, models.Domain{
			ID:     name,
			Tenant: "acme",
			Domain: name,
			Status: enum.DomainStatusVerified,
		})
	}
	return domains
}

func newTestMonitor(domains []models.Domain, ds *fakeDomainService, dls *fakeDeliverabilityService) *domainMonitor {
	repos := &repository.Repositories{
		DomainRepository: &fakeDomainRepo{domains: domains},
	}
	return NewDomainMonitor(testLogger(), testMonitorConfig(), repos, ds, dls).(*domainMonitor)
}

func TestRunCycle_ProcessesAllDomains(t *testing.T) {
	ds := &fakeDomainService{repScore: 92}
	dls := &fakeDeliverabilityService{metrics: dto.DeliverabilityMetrics{DeliveryRate: 98, BounceRate: 1}}
	m := newTestMonitor(verifiedDomains("a.com", "b.com", "c.com"), ds, dls)

	require.NoError(t, m.RunCycle(context.Background()))

	assert.ElementsMatch(t, []string{"a.com", "b.com", "c.com"}, ds.verified)
	assert.ElementsMatch(t, []string{"a.com", "b.com", "c.com"}, ds.refreshed)
	assert.Empty(t, ds.alerts)
}

func TestRunCycle_OneFailureDoesNotAbortOthers(t *testing.T) {
	ds := &fakeDomainService{repScore: 92, failVerify: map[string]bool{"b.com": true}}
	dls := &fakeDeliverabilityService{metrics: dto.DeliverabilityMetrics{DeliveryRate: 98, BounceRate: 1}}
	m := newTestMonitor(verifiedDomains("a.com", "b.com", "c.com"), ds, dls)

	require.NoError(t, m.RunCycle(context.Background()))

	assert.ElementsMatch(t, []string{"a.com", "c.com"}, ds.verified)
	// the failing domain still gets its remaining checks
	assert.ElementsMatch(t, []string{"a.com", "b.com", "c.com"}, ds.refreshed)
}

func TestRunCycle_RaisesReputationAlert(t *testing.T) {
	ds := &fakeDomainService{repScore: 55}
	dls := &fakeDeliverabilityService{metrics: dto.DeliverabilityMetrics{DeliveryRate: 98, BounceRate: 1}}
	m := newTestMonitor(verifiedDomains("a.com"), ds, dls)

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, ds.alerts, 1)
	assert.Equal(t, enum.DomainAlertReputationDecline, ds.alerts[0])
}

func TestRunCycle_RaisesDeliveryIssuesAlert(t *testing.T) {
	ds := &fakeDomainService{repScore: 92}
	dls := &fakeDeliverabilityService{metrics: dto.DeliverabilityMetrics{DeliveryRate: 88, BounceRate: 9}}
	m := newTestMonitor(verifiedDomains("a.com"), ds, dls)

	require.NoError(t, m.RunCycle(context.Background()))

	require.Len(t, ds.alerts, 1)
	assert.Equal(t, enum.DomainAlertDeliveryIssues, ds.alerts[0])
}

func TestRunCycle_SkipsQuietTenants(t *testing.T) {
	ds := &fakeDomainService{repScore: 92}
	dls := &fakeDeliverabilityService{metrics: dto.DeliverabilityMetrics{}}
	m := newTestMonitor(verifiedDomains("a.com"), ds, dls)

	require.NoError(t, m.RunCycle(context.Background()))

	assert.Empty(t, ds.alerts)
}

func TestRunCycle_SingleFlight(t *testing.T) {
	ds := &fakeDomainService{repScore: 92}
	dls := &fakeDeliverabilityService{metrics: dto.DeliverabilityMetrics{DeliveryRate: 98, BounceRate: 1}}
	m := newTestMonitor(nil, ds, dls)

	m.busy.Store(true)
	assert.ErrorIs(t, m.RunCycle(context.Background()), er.ErrMonitorAlreadyRunning)

	m.busy.Store(false)
	assert.NoError(t, m.RunCycle(context.Background()))
}

func TestStartStopLifecycle(t *testing.T) {
	ds := &fakeDomainService{repScore: 92}
	dls := &fakeDeliverabilityService{metrics: dto.DeliverabilityMetrics{DeliveryRate: 98, BounceRate: 1}}
	m := newTestMonitor(verifiedDomains("a.com"), ds, dls)

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsRunning())
	assert.ErrorIs(t, m.Start(context.Background()), er.ErrMonitorAlreadyRunning)

	// give the immediate cycle a moment to run
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())
	assert.ErrorIs(t, m.Stop(), er.ErrMonitorNotStarted)
}
