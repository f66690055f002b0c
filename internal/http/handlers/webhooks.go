package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"leatherlane.com/app/internal/modules/payments"
	"leatherlane.com/app/internal/shared/apperr"
)

type WebhookHandler struct {
	Logger     *slog.Logger
	WebhookSvc *payments.WebhookService
}

func NewWebhookHandler(logger *slog.Logger, svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{Logger: logger, WebhookSvc: svc}
}

// POST /events?event=<id>
// The gateway pushes an event reference; the service pulls the full event
// and reconciles. 5xx answers make the gateway redeliver, 4xx answers mean
// the event can never apply (integrity violation or unknown order).
func (h *WebhookHandler) Handle(c *gin.Context) {
	eventID := c.Query("event")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing event reference"})
		return
	}

	if err := h.WebhookSvc.HandleEvent(c.Request.Context(), eventID); err != nil {
		status := apperr.HTTPStatus(mapDomainError(err))
		h.Logger.Error("webhook reconciliation failed", "event_id", eventID, "status", status, "err", err)
		c.JSON(status, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
