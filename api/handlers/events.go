package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/relaypoint/mailguard/internal/cache"
	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/repository"
	"github.com/relaypoint/mailguard/internal/utils"
	"github.com/relaypoint/mailguard/services/deliverability"
)

type ingestEventRequest struct {
	CampaignID string     `json:"campaignId"`
	EventType  string     `json:"eventType" binding:"required"`
	OccurredAt *time.Time `json:"occurredAt"`
}

var validEventTypes = map[enum.EmailEventType]bool{
	enum.EmailEventSent:         true,
	enum.EmailEventDelivered:    true,
	enum.EmailEventBounced:      true,
	enum.EmailEventOpened:       true,
	enum.EmailEventClicked:      true,
	enum.EmailEventComplained:   true,
	enum.EmailEventUnsubscribed: true,
}

// IngestEmailEvent accepts normalized send-lifecycle events from the sending
// pipeline. Events missing a timestamp are stamped on arrival.
func IngestEmailEvent(events repository.EmailEventRepository, metricsCache *cache.MetricsCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request ingestEventRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eventType := enum.EmailEventType(request.EventType)
		if !validEventTypes[eventType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type: " + request.EventType})
			return
		}

		occurredAt := utils.Now()
		if request.OccurredAt != nil {
			occurredAt = request.OccurredAt.UTC()
		}

		event := &models.EmailEvent{
			ID:         uuid.New().String(),
			Tenant:     utils.GetTenantFromContext(c.Request.Context()),
			CampaignID: request.CampaignID,
			EventType:  eventType,
			OccurredAt: occurredAt,
		}
		if err := events.CreateEvent(c.Request.Context(), event); err != nil {
			respondError(c, err)
			return
		}

		// new events change the rates, cached reads must not outlive them
		metricsCache.InvalidateMetrics(c.Request.Context(), event.Tenant, deliverability.DefaultWindowDays)

		c.JSON(http.StatusCreated, event)
	}
}
