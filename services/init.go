package services

import (
	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/cache"
	"github.com/relaypoint/mailguard/internal/logger"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/services/deliverability"
	"github.com/relaypoint/mailguard/services/dnsrecords"
	"github.com/relaypoint/mailguard/services/dnsverify"
	"github.com/relaypoint/mailguard/services/domain"
	"github.com/relaypoint/mailguard/services/events"
	"github.com/relaypoint/mailguard/services/keys"
	"github.com/relaypoint/mailguard/services/monitor"
	"github.com/relaypoint/mailguard/services/spam"
)

type Services struct {
	DomainService         interfaces.DomainService
	DeliverabilityService interfaces.DeliverabilityService
	SpamAnalyzer          interfaces.SpamAnalyzer
	DomainMonitor         interfaces.DomainMonitor
	AlertPublisher        interfaces.AlertPublisher
	MetricsCache          *cache.MetricsCache
}

func InitServices(cfg *config.Config, repositories *repository.Repositories, log logger.Logger) (*Services, error) {
	generator, err := dnsrecords.NewGenerator(cfg.DNSConfig)
	if err != nil {
		return nil, err
	}

	resolver := dnsverify.NewLiveResolver(cfg.DNSConfig)
	verifier := dnsverify.NewVerifier(resolver)
	keyProvider := keys.NewRSAKeyProvider()

	publisher, err := events.NewAlertPublisher(cfg.EventsConfig, log)
	if err != nil {
		return nil, err
	}

	metricsCache, err := cache.NewMetricsCache(cfg.RedisConfig)
	if err != nil {
		// cache is an optimization, a dead redis must not block startup
		log.Warnf("metrics cache disabled: %v", err)
		metricsCache = nil
	}

	domainService := domain.NewDomainService(log, repositories, generator, verifier, keyProvider, publisher)
	deliverabilityService := deliverability.NewDeliverabilityService(
		log, repositories, metricsCache, resolver, domainService, publisher, cfg.DNSConfig)
	domainMonitor := monitor.NewDomainMonitor(log, cfg.MonitorConfig, repositories, domainService, deliverabilityService)

	return &Services{
		DomainService:         domainService,
		DeliverabilityService: deliverabilityService,
		SpamAnalyzer:          spam.NewAnalyzer(),
		DomainMonitor:         domainMonitor,
		AlertPublisher:        publisher,
		MetricsCache:          metricsCache,
	}, nil
}
