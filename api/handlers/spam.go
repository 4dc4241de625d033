package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaypoint/mailguard/dto"
	"github.com/relaypoint/mailguard/interfaces"
)

type analyzeContentRequest struct {
	Subject   string `json:"subject" binding:"required"`
	HTMLBody  string `json:"htmlBody"`
	TextBody  string `json:"textBody"`
	FromEmail string `json:"fromEmail" binding:"required"`
	FromName  string `json:"fromName"`
}

// AnalyzeContent scores message content before send.
func AnalyzeContent(s interfaces.SpamAnalyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request analyzeContentRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := s.AnalyzeSpamScore(c.Request.Context(), &dto.EmailContent{
			Subject:   request.Subject,
			HTMLBody:  request.HTMLBody,
			TextBody:  request.TextBody,
			FromEmail: request.FromEmail,
			FromName:  request.FromName,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
