package handlers

import (
	"net/http"

	"restaurant_manager/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type WebhookHandler struct {
	webhookService services.WebhookService
	logger         zerolog.Logger
}

func NewWebhookHandler(webhookService services.WebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger.With().Str("component", "webhook_handler").Logger(),
	}
}

// HandleDelivery receives courier push events. The provider retries
// non-2xx replies, so receipt is acknowledged even when downstream
// processing fails; the failure is logged for diagnosis instead.
func (h *WebhookHandler) HandleDelivery(c *gin.Context) {
	var event services.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	if err := h.webhookService.HandleEvent(c.Request.Context(), &event); err != nil {
		h.logger.Error().Err(err).
			Str("event", event.Event).
			Str("delivery_id", event.Data.OrderID).
			Msg("webhook processing failed")
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
