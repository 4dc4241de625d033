package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/utils"
)

func GetDeliverabilityMetrics(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		windowDays, _ := strconv.Atoi(c.DefaultQuery("windowDays", "30"))

		metrics, err := s.GetDeliverabilityMetrics(c.Request.Context(), utils.GetTenantFromContext(c.Request.Context()), windowDays)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, metrics)
	}
}

func GetDashboardSummary(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := s.GetDashboardSummary(c.Request.Context(), utils.GetTenantFromContext(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func GetSenderReputation(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reputation, err := s.MonitorSenderReputation(c.Request.Context(), utils.GetTenantFromContext(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, reputation)
	}
}

func OptimizeDeliveryRates(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := s.OptimizeDeliveryRates(c.Request.Context(), utils.GetTenantFromContext(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ValidateAuthentication(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		validation, err := s.ValidateEmailAuthentication(c.Request.Context(), c.Param("domain"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, validation)
	}
}

// CheckThresholds runs the per-tenant threshold evaluation on demand and
// returns the alerts it raised.
func CheckThresholds(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		alerts, err := s.CheckThresholds(c.Request.Context(), utils.GetTenantFromContext(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		if alerts == nil {
			alerts = []models.DeliverabilityAlert{}
		}
		c.JSON(http.StatusOK, gin.H{"alerts": alerts})
	}
}

func ListDeliverabilityAlerts(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		includeResolved := c.Query("includeResolved") == "true"
		alerts, err := s.GetAlerts(c.Request.Context(), utils.GetTenantFromContext(c.Request.Context()), includeResolved)
		if err != nil {
			respondError(c, err)
			return
		}
		if alerts == nil {
			alerts = []models.DeliverabilityAlert{}
		}
		c.JSON(http.StatusOK, gin.H{"alerts": alerts})
	}
}

func ResolveDeliverabilityAlert(s interfaces.DeliverabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.ResolveAlert(c.Request.Context(), c.Param("alertId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"resolved": true})
	}
}
