package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leatherlane.com/app/internal/http/middleware"
	"leatherlane.com/app/internal/http/validation"
	"leatherlane.com/app/internal/modules/payments"
	"leatherlane.com/app/internal/shared/apperr"
)

type ChargesHandler struct {
	Pay *payments.Service
}

func NewChargesHandler(pay *payments.Service) *ChargesHandler {
	return &ChargesHandler{Pay: pay}
}

type createChargeInput struct {
	MerchantTransactionID string `form:"merchantTransactionId" json:"merchantTransactionId" binding:"required"`
	ChargeType            string `form:"chargeType" json:"chargeType" binding:"required,max=64"`
}

// POST /create-charge
// Called by the hosted forms widget; responds with the gateway's charge
// object verbatim so the widget can continue instrument collection.
func (h *ChargesHandler) Create(c *gin.Context) {
	var in createChargeInput
	if err := c.ShouldBind(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid charge request.", validation.FromBindError(err, &in)))
		return
	}

	orderID, err := strconv.ParseUint(in.MerchantTransactionID, 10, 64)
	if err != nil || orderID == 0 {
		middleware.Fail(c, apperr.InvalidErr("Invalid merchant transaction id.", nil))
		return
	}

	ch, err := h.Pay.InitiateCharge(c.Request.Context(), payments.InitiateChargeInput{
		OrderID:    orderID,
		ChargeType: in.ChargeType,
	})
	if err != nil {
		middleware.Fail(c, mapDomainError(err))
		return
	}

	c.Data(http.StatusOK, "application/json", ch.Raw)
}
