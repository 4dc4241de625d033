package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/relaypoint/mailguard/api/handlers"
	"github.com/relaypoint/mailguard/api/middleware"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/internal/tracing"
	"github.com/relaypoint/mailguard/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Health check and status endpoints (no custom context needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(s.DomainMonitor))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-MAILGUARD-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.TenantValidationMiddleware())
	api.Use(middleware.CustomContextMiddleware("mailguard"))
	api.Use(middleware.TracingMiddleware())
	{
		domains := api.Group("/domains")
		{
			domains.POST("", handlers.CreateDomain(s.DomainService))
			domains.GET("", handlers.ListDomains(s.DomainService))
			domains.GET("/by-name/:domain", handlers.GetDomain(s.DomainService))
			domains.POST("/:id/verify", handlers.VerifyDomain(s.DomainService))
			domains.GET("/:id/setup", handlers.GetSetupWizard(s.DomainService))
			domains.GET("/:id/reputation", handlers.GetDomainReputation(s.DomainService))
			domains.POST("/:id/reputation/refresh", handlers.RefreshDomainReputation(s.DomainService))
			domains.GET("/:id/alerts", handlers.ListDomainAlerts(s.DomainService))
			domains.POST("/:id/alerts/:alertId/resolve", handlers.ResolveDomainAlert(s.DomainService))
		}

		deliverability := api.Group("/deliverability")
		{
			deliverability.GET("/metrics", handlers.GetDeliverabilityMetrics(s.DeliverabilityService))
			deliverability.GET("/dashboard", handlers.GetDashboardSummary(s.DeliverabilityService))
			deliverability.GET("/reputation", handlers.GetSenderReputation(s.DeliverabilityService))
			deliverability.GET("/optimize", handlers.OptimizeDeliveryRates(s.DeliverabilityService))
			deliverability.GET("/authentication/:domain", handlers.ValidateAuthentication(s.DeliverabilityService))
			deliverability.POST("/check", handlers.CheckThresholds(s.DeliverabilityService))
			deliverability.GET("/alerts", handlers.ListDeliverabilityAlerts(s.DeliverabilityService))
			deliverability.POST("/alerts/:alertId/resolve", handlers.ResolveDeliverabilityAlert(s.DeliverabilityService))
		}

		content := api.Group("/content")
		{
			content.POST("/analyze", handlers.AnalyzeContent(s.SpamAnalyzer))
		}

		events := api.Group("/events")
		{
			events.POST("", handlers.IngestEmailEvent(repos.EmailEventRepository, s.MetricsCache))
		}

		monitor := api.Group("/monitor")
		{
			monitor.POST("/start", handlers.StartMonitor(s.DomainMonitor))
			monitor.POST("/stop", handlers.StopMonitor(s.DomainMonitor))
			monitor.GET("/status", handlers.MonitorStatus(s.DomainMonitor))
			monitor.POST("/run", handlers.TriggerMonitorCycle(s.DomainMonitor))
		}
	}
}
