package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/enum"
	er "github.com/relaypoint/mailguard/internal/errors"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/internal/tracing"
	"github.com/relaypoint/mailguard/internal/utils"
	"github.com/relaypoint/mailguard/services/dnsrecords"
)

var domainNamePattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

type domainService struct {
	log          logger.Logger
	repositories *repository.Repositories
	generator    *dnsrecords.Generator
	verifier     interfaces.DNSVerifier
	keyProvider  interfaces.DKIMKeyProvider
	publisher    interfaces.AlertPublisher
}

func NewDomainService(
	log logger.Logger,
	repositories *repository.Repositories,
	generator *dnsrecords.Generator,
	verifier interfaces.DNSVerifier,
	keyProvider interfaces.DKIMKeyProvider,
	publisher interfaces.AlertPublisher,
) interfaces.DomainService {
	return &domainService{
		log:          log,
		repositories: repositories,
		generator:    generator,
		verifier:     verifier,
		keyProvider:  keyProvider,
		publisher:    publisher,
	}
}

func (s *domainService) CreateDomain(ctx context.Context, domainName string) (*models.Domain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.CreateDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomain(span, domainName)

	tenant := utils.GetTenantFromContext(ctx)
	if tenant == "" {
		tracing.TraceErr(span, er.ErrTenantMissing)
		return nil, er.ErrTenantMissing
	}

	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if !domainNamePattern.MatchString(domainName) {
		err := errors.Wrap(er.ErrInvalidDomainName, domainName)
		tracing.TraceErr(span, err)
		return nil, err
	}

	existing, err := s.repositories.DomainRepository.GetDomain(ctx, tenant, domainName)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if existing != nil {
		tracing.TraceErr(span, er.ErrDomainAlreadyExists)
		return nil, er.ErrDomainAlreadyExists
	}

	publicKey, privateKey, err := s.keyProvider.GenerateKeyPair(ctx)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "dkim key generation failed"))
		return nil, err
	}

	records, err := s.generator.GenerateRecords(domainName, publicKey)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	domain := &models.Domain{
		Tenant:              tenant,
		Domain:              domainName,
		Status:              enum.DomainStatusPending,
		DkimPublicKey:       publicKey,
		DkimPrivateKey:      privateKey,
		VerificationRecords: records,
	}
	if err := s.repositories.DomainRepository.CreateDomain(ctx, domain); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Infof("registered domain %s for tenant %s", domainName, tenant)
	return domain, nil
}

func (s *domainService) GetDomain(ctx context.Context, domainName string) (*models.Domain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.GetDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomain(span, domainName)

	tenant := utils.GetTenantFromContext(ctx)
	if tenant == "" {
		tracing.TraceErr(span, er.ErrTenantMissing)
		return nil, er.ErrTenantMissing
	}

	domain, err := s.repositories.DomainRepository.GetDomain(ctx, tenant, strings.ToLower(domainName))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if domain == nil {
		return nil, er.ErrDomainNotFound
	}
	return domain, nil
}

func (s *domainService) ListDomains(ctx context.Context) ([]models.Domain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.ListDomains")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	tenant := utils.GetTenantFromContext(ctx)
	if tenant == "" {
		tracing.TraceErr(span, er.ErrTenantMissing)
		return nil, er.ErrTenantMissing
	}

	return s.repositories.DomainRepository.GetDomains(ctx, tenant)
}

// VerifyDomain re-checks all verification records and moves the domain between
// statuses. Re-entrant: Failed domains retry, Verified domains can regress to
// Failed when a record disappears.
func (s *domainService) VerifyDomain(ctx context.Context, domainID string) (*dto.DomainVerificationResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.VerifyDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, domainID)

	domain, err := s.repositories.DomainRepository.GetDomainByID(ctx, domainID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if domain == nil {
		tracing.TraceErr(span, er.ErrDomainNotFound)
		return nil, er.ErrDomainNotFound
	}
	if domain.Status == enum.DomainStatusSuspended {
		err := errors.Errorf("domain %s is suspended", domain.Domain)
		tracing.TraceErr(span, err)
		return nil, err
	}

	if err := s.repositories.DomainRepository.UpdateStatus(ctx, domain.ID, enum.DomainStatusVerifying); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	result := s.verifier.VerifyDomainRecords(ctx, domain)

	if result.IsVerified {
		if err := s.repositories.DomainRepository.MarkVerified(ctx, domain.ID); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		s.log.Infof("domain %s verified for tenant %s", domain.Domain, domain.Tenant)
		return result, nil
	}

	if err := s.repositories.DomainRepository.UpdateStatus(ctx, domain.ID, enum.DomainStatusFailed); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	message := fmt.Sprintf("DNS verification failed for %s: %s", domain.Domain, describeMissingRecords(result))
	_, alertErr := s.CreateAlert(ctx, domain.ID, enum.DomainAlertVerificationFailed, enum.AlertSeverityHigh, message, models.JSONMap{
		"records": result.Records,
	})
	if alertErr != nil {
		tracing.TraceErr(span, alertErr)
		s.log.Errorf("verification alert for domain %s failed: %v", domain.Domain, alertErr)
	}

	return result, nil
}

func describeMissingRecords(result *dto.DomainVerificationResult) string {
	var missing []string
	for _, check := range result.Records {
		if check.IsPresent {
			continue
		}
		if check.Error != "" {
			missing = append(missing, fmt.Sprintf("%s %s (%s)", check.Record.Type, check.Record.Name, check.Error))
		} else {
			missing = append(missing, fmt.Sprintf("%s %s", check.Record.Type, check.Record.Name))
		}
	}
	return strings.Join(missing, "; ")
}

// CreateSetupWizard pairs the verification records with installation guidance,
// in the fixed order SPF, DKIM, DMARC, ownership verification.
func (s *domainService) CreateSetupWizard(ctx context.Context, domainID string) (*dto.SetupWizard, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.CreateSetupWizard")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, domainID)

	domain, err := s.repositories.DomainRepository.GetDomainByID(ctx, domainID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if domain == nil {
		tracing.TraceErr(span, er.ErrDomainNotFound)
		return nil, er.ErrDomainNotFound
	}

	titles := []string{
		"Publish the SPF record",
		"Publish the DKIM record",
		"Publish the DMARC record",
		"Publish the ownership verification record",
	}
	descriptions := []string{
		"Authorizes our sending infrastructure to send on behalf of your domain.",
		"Lets receiving servers validate message signatures against your public key.",
		"Tells receiving servers how to handle messages that fail authentication.",
		"Proves to us that you control this domain before sending is enabled.",
	}

	wizard := &dto.SetupWizard{Domain: domain.Domain}
	for i, record := range domain.VerificationRecords {
		step := dto.SetupStep{Record: record}
		if i < len(titles) {
			step.Title = titles[i]
			step.Description = descriptions[i]
		}
		wizard.Steps = append(wizard.Steps, step)
	}

	return wizard, nil
}

// UpdateDomainReputation recomputes the weighted factor snapshot and upserts it.
func (s *domainService) UpdateDomainReputation(ctx context.Context, domainID string) (*models.DomainReputation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.UpdateDomainReputation")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, domainID)

	domain, err := s.repositories.DomainRepository.GetDomainByID(ctx, domainID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if domain == nil {
		tracing.TraceErr(span, er.ErrDomainNotFound)
		return nil, er.ErrDomainNotFound
	}

	factors := reputationFactors(domain.Status == enum.DomainStatusVerified)
	score := reputationScore(factors)

	reputation := &models.DomainReputation{
		Tenant:          domain.Tenant,
		DomainID:        domain.ID,
		Domain:          domain.Domain,
		Score:           score,
		Factors:         factors,
		Recommendations: reputationRecommendations(domain.Status, score),
		LastUpdated:     utils.Now(),
	}
	if err := s.repositories.DomainReputationRepository.UpsertReputation(ctx, reputation); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.LogKV("result.score", score)
	return reputation, nil
}

func (s *domainService) GetDomainReputation(ctx context.Context, domainID string) (*models.DomainReputation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.GetDomainReputation")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, domainID)

	reputation, err := s.repositories.DomainReputationRepository.GetByDomainID(ctx, domainID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if reputation == nil {
		return s.UpdateDomainReputation(ctx, domainID)
	}
	return reputation, nil
}

func (s *domainService) CreateAlert(ctx context.Context, domainID string, alertType enum.DomainAlertType, severity enum.AlertSeverity, message string, details models.JSONMap) (*models.DomainAlert, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.CreateAlert")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, domainID)

	domain, err := s.repositories.DomainRepository.GetDomainByID(ctx, domainID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if domain == nil {
		tracing.TraceErr(span, er.ErrDomainNotFound)
		return nil, er.ErrDomainNotFound
	}

	alert := &models.DomainAlert{
		ID:       uuid.New().String(),
		Tenant:   domain.Tenant,
		DomainID: domain.ID,
		Type:     alertType,
		Severity: severity,
		Message:  message,
		Details:  details,
	}
	if err := s.repositories.DomainAlertRepository.CreateAlert(ctx, alert); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	// best-effort fan-out, the persisted alert is the source of truth
	if err := s.publisher.PublishDomainAlert(ctx, alert); err != nil {
		s.log.Warnf("publishing domain alert %s failed: %v", alert.ID, err)
	}

	return alert, nil
}

func (s *domainService) GetDomainAlerts(ctx context.Context, domainID string, includeResolved bool) ([]models.DomainAlert, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.GetDomainAlerts")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, domainID)

	return s.repositories.DomainAlertRepository.GetAlertsByDomain(ctx, domainID, includeResolved)
}

func (s *domainService) ResolveAlert(ctx context.Context, alertID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.ResolveAlert")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, alertID)

	alert, err := s.repositories.DomainAlertRepository.GetAlertByID(ctx, alertID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if alert == nil {
		tracing.TraceErr(span, er.ErrAlertNotFound)
		return er.ErrAlertNotFound
	}

	return s.repositories.DomainAlertRepository.ResolveAlert(ctx, alertID)
}

// AuthenticationScore averages the DNS-authentication standing of the tenant's
// domains. Tenants without custom domains send through the shared domain and
// get a neutral 50.
func (s *domainService) AuthenticationScore(ctx context.Context, tenant string) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainService.AuthenticationScore")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, tenant)

	domains, err := s.repositories.DomainRepository.GetDomains(ctx, tenant)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}
	if len(domains) == 0 {
		return 50, nil
	}

	total := 0
	for _, domain := range domains {
		if domain.Status == enum.DomainStatusVerified {
			total += 100
		}
	}
	return utils.RoundToInt(float64(total) / float64(len(domains))), nil
}
