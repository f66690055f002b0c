package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leatherlane.com/app/internal/modules/payments"
)

type ReturnsHandler struct {
	ReturnSvc *payments.ReturnService
}

func NewReturnsHandler(svc *payments.ReturnService) *ReturnsHandler {
	return &ReturnsHandler{ReturnSvc: svc}
}

// GET /return?instrumentId=<id>&orderId=<key>
// Landing point for the browser coming back from the hosted instrument UI.
// Always renders one of three pages, whatever happened internally.
func (h *ReturnsHandler) Handle(c *gin.Context) {
	instrumentID := c.Query("instrumentId")
	orderKey := c.Query("orderId")

	outcome := payments.OutcomeFailure
	if instrumentID != "" {
		outcome = h.ReturnSvc.HandleReturn(c.Request.Context(), instrumentID, orderKey)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	switch outcome {
	case payments.OutcomeSuccess:
		c.String(http.StatusOK, "<html><h1>Transaction Success</h1></html>")
	case payments.OutcomePending:
		c.String(http.StatusOK, "<html><h1>Waiting for client actions to complete the transaction</h1></html>")
	default:
		c.String(http.StatusOK, "<html><h1>Transaction Error</h1></html>")
	}
}
