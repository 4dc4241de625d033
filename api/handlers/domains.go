package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaypoint/mailguard/interfaces"
	"github.com/relaypoint/mailguard/internal/models"
)

type createDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

func CreateDomain(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request createDomainRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		domain, err := s.CreateDomain(c.Request.Context(), request.Domain)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, domain)
	}
}

func ListDomains(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		domains, err := s.ListDomains(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"domains": domains})
	}
}

func GetDomain(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		domain, err := s.GetDomain(c.Request.Context(), c.Param("domain"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, domain)
	}
}

func VerifyDomain(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := s.VerifyDomain(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetSetupWizard(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		wizard, err := s.CreateSetupWizard(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, wizard)
	}
}

func GetDomainReputation(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reputation, err := s.GetDomainReputation(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, reputation)
	}
}

func RefreshDomainReputation(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reputation, err := s.UpdateDomainReputation(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, reputation)
	}
}

func ListDomainAlerts(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		includeResolved := c.Query("includeResolved") == "true"
		alerts, err := s.GetDomainAlerts(c.Request.Context(), c.Param("id"), includeResolved)
		if err != nil {
			respondError(c, err)
			return
		}
		if alerts == nil {
			alerts = []models.DomainAlert{}
		}
		c.JSON(http.StatusOK, gin.H{"alerts": alerts})
	}
}

func ResolveDomainAlert(s interfaces.DomainService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.ResolveAlert(c.Request.Context(), c.Param("alertId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"resolved": true})
	}
}
