package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/internal/enum"
	er "github.com/relaypoint/mailguard/internal/errors"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/internal/utils"
	"github.com/relaypoint/mailguard/services/dnsrecords"
)

type fakeDomainRepo struct {
	domains map[string]*models.Domain
}

func newFakeDomainRepo() *fakeDomainRepo {
	return &fakeDomainRepo{domains: map[string]*models.Domain{}}
}

func (r *fakeDomainRepo) CreateDomain(_ context.Context, domain *models.Domain) error {
	if domain.ID == "" {
		domain.ID = fmt.Sprintf("domain-%d", len(r.domains)+1)
	}
	r.domains[domain.ID] = domain
	return nil
}

func (r *fakeDomainRepo) GetDomainByID(_ context.Context, id string) (*models.Domain, error) {
	return r.domains[id], nil
}

func (r *fakeDomainRepo) GetDomain(_ context.Context, tenant, name string) (*models.Domain, error) {
	for _, domain := range r.domains {
		if domain.Tenant == tenant && domain.Domain == name {
			return domain, nil
		}
	}
	return nil, nil
}

func (r *fakeDomainRepo) GetDomains(_ context.Context, tenant string) ([]models.Domain, error) {
	var result []models.Domain
	for _, domain := range r.domains {
		if domain.Tenant == tenant {
			result = append(result, *domain)
		}
	}
	return result, nil
}

func (r *fakeDomainRepo) GetDomainsByStatusCrossTenant(_ context.Context, status enum.DomainStatus) ([]models.Domain, error) {
	var result []models.Domain
	for _, domain := range r.domains {
		if domain.Status == status {
			result = append(result, *domain)
		}
	}
	return result, nil
}

func (r *fakeDomainRepo) UpdateStatus(_ context.Context, id string, status enum.DomainStatus) error {
	r.domains[id].Status = status
	return nil
}

func (r *fakeDomainRepo) MarkVerified(_ context.Context, id string) error {
	r.domains[id].Status = enum.DomainStatusVerified
	r.domains[id].VerifiedAt = utils.NowPtr()
	return nil
}

type fakeAlertRepo struct {
	alerts []*models.DomainAlert
}

func (r *fakeAlertRepo) CreateAlert(_ context.Context, alert *models.DomainAlert) error {
	if alert.ID == "" {
		alert.ID = fmt.Sprintf("alert-%d", len(r.alerts)+1)
	}
	alert.CreatedAt = utils.Now()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *fakeAlertRepo) GetAlertByID(_ context.Context, id string) (*models.DomainAlert, error) {
	for _, alert := range r.alerts {
		if alert.ID == id {
			return alert, nil
		}
	}
	return nil, nil
}

func (r *fakeAlertRepo) GetAlertsByDomain(_ context.Context, domainID string, includeResolved bool) ([]models.DomainAlert, error) {
	var result []models.DomainAlert
	for _, alert := range r.alerts {
		if alert.DomainID == domainID && (includeResolved || !alert.IsResolved) {
			result = append(result, *alert)
		}
	}
	return result, nil
}

func (r *fakeAlertRepo) ResolveAlert(_ context.Context, id string) error {
	for _, alert := range r.alerts {
		if alert.ID == id {
			alert.IsResolved = true
			alert.ResolvedAt = utils.NowPtr()
		}
	}
	return nil
}

type fakeReputationRepo struct {
	byDomain map[string]*models.DomainReputation
}

func (r *fakeReputationRepo) UpsertReputation(_ context.Context, reputation *models.DomainReputation) error {
	r.byDomain[reputation.DomainID] = reputation
	return nil
}

func (r *fakeReputationRepo) GetByDomainID(_ context.Context, domainID string) (*models.DomainReputation, error) {
	return r.byDomain[domainID], nil
}

func (r *fakeReputationRepo) GetByTenant(_ context.Context, tenant string) ([]models.DomainReputation, error) {
	var result []models.DomainReputation
	for _, reputation := range r.byDomain {
		if reputation.Tenant == tenant {
			result = append(result, *reputation)
		}
	}
	return result, nil
}

type fakeVerifier struct {
	verified bool
}

func (v *fakeVerifier) VerifyDomainRecords(_ context.Context, domain *models.Domain) *dto.DomainVerificationResult {
	result := &dto.DomainVerificationResult{Domain: domain.Domain, IsVerified: v.verified}
	for _, record := range domain.VerificationRecords {
		check := dto.RecordCheck{Record: record, IsPresent: v.verified}
		result.Records = append(result.Records, check)
		if !v.verified {
			result.Errors = append(result.Errors, "record not found")
		}
	}
	return result
}

type fakeKeyProvider struct{}

func (fakeKeyProvider) GenerateKeyPair(context.Context) (string, string, error) {
	return "PUBKEY", "PRIVKEY", nil
}

type fakePublisher struct {
	domainAlerts int
}

func (p *fakePublisher) PublishDomainAlert(context.Context, *models.DomainAlert) error {
	p.domainAlerts++
	return nil
}

func (p *fakePublisher) PublishDeliverabilityAlert(context.Context, *models.DeliverabilityAlert) error {
	return nil
}
func (p *fakePublisher) Close() error { return nil }

type fixture struct {
	service   *domainService
	domains   *fakeDomainRepo
	alerts    *fakeAlertRepo
	verifier  *fakeVerifier
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()

	generator, err := dnsrecords.NewGenerator(&config.DNSConfig{
		SPFIncludeHost:     "spf.relaypoint.io",
		DMARCReportAddress: "dmarc@relaypoint.io",
		DKIMSelector:       "mail",
		VerificationPrefix: "mailguard",
	})
	require.NoError(t, err)

	domains := newFakeDomainRepo()
	alerts := &fakeAlertRepo{}
	verifier := &fakeVerifier{verified: true}
	publisher := &fakePublisher{}

	repos := &repository.Repositories{
		DomainRepository:           domains,
		DomainAlertRepository:      alerts,
		DomainReputationRepository: &fakeReputationRepo{byDomain: map[string]*models.DomainReputation{}},
	}

	service := NewDomainService(appLogger, repos, generator, verifier, fakeKeyProvider{}, publisher).(*domainService)

	return &fixture{
		service:   service,
		domains:   domains,
		alerts:    alerts,
		verifier:  verifier,
		publisher: publisher,
	}
}

func tenantContext(tenant string) context.Context {
	return utils.SetTenantInContext(context.Background(), tenant)
}

func TestCreateDomain(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext("acme")

	domain, err := f.service.CreateDomain(ctx, "Acme.COM")
	require.NoError(t, err)

	assert.Equal(t, "acme.com", domain.Domain)
	assert.Equal(t, enum.DomainStatusPending, domain.Status)
	assert.Equal(t, "PUBKEY", domain.DkimPublicKey)
	assert.Equal(t, "PRIVKEY", domain.DkimPrivateKey)
	assert.Len(t, domain.VerificationRecords, 4)
}

func TestCreateDomain_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext("acme")

	_, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)

	_, err = f.service.CreateDomain(ctx, "acme.com")
	assert.ErrorIs(t, err, er.ErrDomainAlreadyExists)

	// same name under another tenant is fine
	_, err = f.service.CreateDomain(tenantContext("globex"), "acme.com")
	assert.NoError(t, err)
}

func TestCreateDomain_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateDomain(context.Background(), "acme.com")
	assert.ErrorIs(t, err, er.ErrTenantMissing)

	_, err = f.service.CreateDomain(tenantContext("acme"), "not a domain")
	assert.ErrorIs(t, err, er.ErrInvalidDomainName)
}

func TestVerifyDomain_Success(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext("acme")

	domain, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)

	result, err := f.service.VerifyDomain(ctx, domain.ID)
	require.NoError(t, err)

	assert.True(t, result.IsVerified)
	stored := f.domains.domains[domain.ID]
	assert.Equal(t, enum.DomainStatusVerified, stored.Status)
	assert.NotNil(t, stored.VerifiedAt)
	assert.Empty(t, f.alerts.alerts)
}

func TestVerifyDomain_FailureRaisesAlert(t *testing.T) {
	f := newFixture(t)
	f.verifier.verified = false
	ctx := tenantContext("acme")

	domain, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)

	result, err := f.service.VerifyDomain(ctx, domain.ID)
	require.NoError(t, err)

	assert.False(t, result.IsVerified)
	assert.Equal(t, enum.DomainStatusFailed, f.domains.domains[domain.ID].Status)

	require.Len(t, f.alerts.alerts, 1)
	alert := f.alerts.alerts[0]
	assert.Equal(t, enum.DomainAlertVerificationFailed, alert.Type)
	assert.Equal(t, enum.AlertSeverityHigh, alert.Severity)
	assert.Contains(t, alert.Message, "acme.com")
	assert.Contains(t, alert.Message, "_verification.acme.com")
	assert.Equal(t, 1, f.publisher.domainAlerts)
}

func TestVerifyDomain_RetryAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.verifier.verified = false
	ctx := tenantContext("acme")

	domain, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)

	_, err = f.service.VerifyDomain(ctx, domain.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.DomainStatusFailed, f.domains.domains[domain.ID].Status)

	f.verifier.verified = true
	result, err := f.service.VerifyDomain(ctx, domain.ID)
	require.NoError(t, err)
	assert.True(t, result.IsVerified)
	assert.Equal(t, enum.DomainStatusVerified, f.domains.domains[domain.ID].Status)
}

func TestVerifyDomain_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.VerifyDomain(context.Background(), "missing")
	assert.ErrorIs(t, err, er.ErrDomainNotFound)
}

func TestCreateSetupWizard(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext("acme")

	domain, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)

	wizard, err := f.service.CreateSetupWizard(ctx, domain.ID)
	require.NoError(t, err)

	require.Len(t, wizard.Steps, 4)
	assert.Contains(t, wizard.Steps[0].Title, "SPF")
	assert.Contains(t, wizard.Steps[1].Title, "DKIM")
	assert.Contains(t, wizard.Steps[2].Title, "DMARC")
	assert.Contains(t, wizard.Steps[3].Title, "verification")
	assert.Equal(t, domain.VerificationRecords[0], wizard.Steps[0].Record)
}

func TestUpdateDomainReputation(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext("acme")

	domain, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)

	reputation, err := f.service.UpdateDomainReputation(ctx, domain.ID)
	require.NoError(t, err)
	assert.Equal(t, 62, reputation.Score)
	assert.NotEmpty(t, reputation.Recommendations)

	_, err = f.service.VerifyDomain(ctx, domain.ID)
	require.NoError(t, err)

	reputation, err = f.service.UpdateDomainReputation(ctx, domain.ID)
	require.NoError(t, err)
	assert.Equal(t, 92, reputation.Score)
	assert.Empty(t, reputation.Recommendations)
}

func TestAuthenticationScore(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext("acme")

	score, err := f.service.AuthenticationScore(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 50, score)

	first, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)
	_, err = f.service.CreateDomain(ctx, "acme.io")
	require.NoError(t, err)

	score, err = f.service.AuthenticationScore(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	_, err = f.service.VerifyDomain(ctx, first.ID)
	require.NoError(t, err)

	score, err = f.service.AuthenticationScore(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 50, score)
}

func TestResolveAlert(t *testing.T) {
	f := newFixture(t)
	f.verifier.verified = false
	ctx := tenantContext("acme")

	domain, err := f.service.CreateDomain(ctx, "acme.com")
	require.NoError(t, err)
	_, err = f.service.VerifyDomain(ctx, domain.ID)
	require.NoError(t, err)

	require.Len(t, f.alerts.alerts, 1)
	alertID := f.alerts.alerts[0].ID

	require.NoError(t, f.service.ResolveAlert(ctx, alertID))
	assert.True(t, f.alerts.alerts[0].IsResolved)
	assert.NotNil(t, f.alerts.alerts[0].ResolvedAt)

	assert.ErrorIs(t, f.service.ResolveAlert(ctx, "missing"), er.ErrAlertNotFound)
}
