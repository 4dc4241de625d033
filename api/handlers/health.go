package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaypoint/mailguard/interfaces"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func Status(monitor interfaces.DomainMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"monitorRunning": monitor.IsRunning(),
		})
	}
}
