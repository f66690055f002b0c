package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leatherlane.com/app/internal/http/middleware"
	"leatherlane.com/app/internal/modules/orders"
	"leatherlane.com/app/internal/shared/apperr"
)

type OrdersHandler struct {
	Store *orders.Store
}

func NewOrdersHandler(store *orders.Store) *OrdersHandler {
	return &OrdersHandler{Store: store}
}

// GET /orders — read-only diagnostic dump.
func (h *OrdersHandler) List(c *gin.Context) {
	list, err := h.Store.List(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, list)
}
