package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	er "github.com/relaypoint/mailguard/internal/errors"
)

// respondError maps known domain errors onto HTTP statuses; anything
// unrecognized is a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, er.ErrDomainNotFound), errors.Is(err, er.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, er.ErrDomainAlreadyExists), errors.Is(err, er.ErrMonitorAlreadyRunning), errors.Is(err, er.ErrMonitorNotStarted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, er.ErrTenantMissing), errors.Is(err, er.ErrInvalidDomainName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
