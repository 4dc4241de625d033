package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/opentracing/opentracing-go"
	"github.com/robfig/cron/v3"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/enum"
	er "github.com/relaypoint/mailguard/internal/errors"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/internal/tracing"
)

// domainMonitor periodically re-validates every verified domain. One cycle
// fans out across domains; checks for the same domain run sequentially since
// reputation depends on the status verification just wrote.
type domainMonitor struct {
	log                   logger.Logger
	cfg                   *config.MonitorConfig
	repositories          *repository.Repositories
	domainService         interfaces.DomainService
	deliverabilityService interfaces.DeliverabilityService

	cron    *cron.Cron
	running atomic.Bool
	busy    atomic.Bool
}

func NewDomainMonitor(
	log logger.Logger,
	cfg *config.MonitorConfig,
	repositories *repository.Repositories,
	domainService interfaces.DomainService,
	deliverabilityService interfaces.DeliverabilityService,
) interfaces.DomainMonitor {
	return &domainMonitor{
		log:                   log,
		cfg:                   cfg,
		repositories:          repositories,
		domainService:         domainService,
		deliverabilityService: deliverabilityService,
	}
}

// Start runs one cycle immediately, then re-runs on the configured interval.
// Overlapping scheduled cycles are skipped rather than queued. Cycles run on
// their own context, the caller's request may be gone before they finish.
func (m *domainMonitor) Start(_ context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return er.ErrMonitorAlreadyRunning
	}

	m.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	schedule := fmt.Sprintf("@every %dm", m.cfg.CheckIntervalMinutes)
	_, err := m.cron.AddFunc(schedule, func() {
		if err := m.RunCycle(context.Background()); err != nil {
			m.log.Warnf("monitor cycle skipped: %v", err)
		}
	})
	if err != nil {
		m.running.Store(false)
		return err
	}

	m.cron.Start()
	m.log.Infof("domain monitor started, interval %dm", m.cfg.CheckIntervalMinutes)

	go func() {
		if err := m.RunCycle(context.Background()); err != nil {
			m.log.Warnf("initial monitor cycle skipped: %v", err)
		}
	}()

	return nil
}

// Stop cancels the recurring trigger and waits for an in-flight cycle to finish.
func (m *domainMonitor) Stop() error {
	if !m.running.CompareAndSwap(true, false) {
		return er.ErrMonitorNotStarted
	}

	<-m.cron.Stop().Done()
	m.log.Info("domain monitor stopped")
	return nil
}

func (m *domainMonitor) IsRunning() bool {
	return m.running.Load()
}

// RunCycle processes every verified domain once. Single-flight: a cycle in
// progress rejects concurrent manual triggers instead of queuing them.
func (m *domainMonitor) RunCycle(ctx context.Context) error {
	if !m.busy.CompareAndSwap(false, true) {
		return er.ErrMonitorAlreadyRunning
	}
	defer m.busy.Store(false)

	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainMonitor.RunCycle")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	domains, err := m.repositories.DomainRepository.GetDomainsByStatusCrossTenant(ctx, enum.DomainStatusVerified)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	span.LogKV("domains", len(domains))

	var wg sync.WaitGroup
	for _, domain := range domains {
		wg.Add(1)
		go func(domain models.Domain) {
			defer wg.Done()
			m.checkDomain(ctx, domain)
		}(domain)
	}
	wg.Wait()

	return nil
}

// checkDomain runs the enabled checks for one domain. A panic or error here
// is contained, the remaining domains in the cycle still get processed.
func (m *domainMonitor) checkDomain(ctx context.Context, domain models.Domain) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("monitor check for domain %s panicked: %v", domain.Domain, r)
		}
	}()

	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainMonitor.checkDomain")
	defer span.Finish()
	tracing.TagComponentCronJob(span)
	tracing.TagTenant(span, domain.Tenant)
	tracing.TagDomain(span, domain.Domain)

	if m.cfg.CheckDNSRecords {
		if _, err := m.domainService.VerifyDomain(ctx, domain.ID); err != nil {
			tracing.TraceErr(span, err)
			m.log.Errorf("monitor verification for domain %s failed: %v", domain.Domain, err)
		}
	}

	if m.cfg.CheckReputation {
		reputation, err := m.domainService.UpdateDomainReputation(ctx, domain.ID)
		if err != nil {
			tracing.TraceErr(span, err)
			m.log.Errorf("monitor reputation refresh for domain %s failed: %v", domain.Domain, err)
		} else if float64(reputation.Score) < m.cfg.ReputationScoreThreshold {
			m.raiseReputationAlert(ctx, domain, reputation.Score)
		}
	}

	if m.cfg.CheckDeliverability {
		m.checkDeliverability(ctx, domain)
	}
}

func (m *domainMonitor) raiseReputationAlert(ctx context.Context, domain models.Domain, score int) {
	message := fmt.Sprintf("Reputation score for %s dropped to %d (threshold %.0f)",
		domain.Domain, score, m.cfg.ReputationScoreThreshold)
	_, err := m.domainService.CreateAlert(ctx, domain.ID, enum.DomainAlertReputationDecline, enum.AlertSeverityMedium, message, models.JSONMap{
		"score":     score,
		"threshold": m.cfg.ReputationScoreThreshold,
	})
	if err != nil {
		m.log.Errorf("reputation alert for domain %s failed: %v", domain.Domain, err)
	}
}

func (m *domainMonitor) checkDeliverability(ctx context.Context, domain models.Domain) {
	metrics, err := m.deliverabilityService.GetDeliverabilityMetrics(ctx, domain.Tenant, 0)
	if err != nil {
		m.log.Errorf("monitor deliverability check for tenant %s failed: %v", domain.Tenant, err)
		return
	}

	// no traffic in the window means nothing to alert on
	if metrics.DeliveryRate == 0 && metrics.BounceRate == 0 {
		return
	}
	if metrics.DeliveryRate >= m.cfg.DeliveryRateThreshold && metrics.BounceRate <= m.cfg.BounceRateThreshold {
		return
	}

	message := fmt.Sprintf("Delivery issues for %s: delivery rate %.0f%%, bounce rate %.2f%%",
		domain.Domain, metrics.DeliveryRate, metrics.BounceRate)
	_, err = m.domainService.CreateAlert(ctx, domain.ID, enum.DomainAlertDeliveryIssues, enum.AlertSeverityMedium, message, models.JSONMap{
		"deliveryRate": metrics.DeliveryRate,
		"bounceRate":   metrics.BounceRate,
	})
	if err != nil {
		m.log.Errorf("delivery issues alert for domain %s failed: %v", domain.Domain, err)
	}
}
