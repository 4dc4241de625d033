package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaypoint/mailguard/interfaces"
)

func StartMonitor(m interfaces.DomainMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.Start(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"running": true})
	}
}

func StopMonitor(m interfaces.DomainMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.Stop(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"running": false})
	}
}

func MonitorStatus(m interfaces.DomainMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"running": m.IsRunning()})
	}
}

// TriggerMonitorCycle runs one cycle immediately; a cycle already in flight
// is a conflict, not a queue.
func TriggerMonitorCycle(m interfaces.DomainMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.RunCycle(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"completed": true})
	}
}
