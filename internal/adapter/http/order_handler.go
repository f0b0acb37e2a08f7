package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *usecase.OrderLog
}

func NewOrderHandler(orders *usecase.OrderLog) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GET /v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GET /v1/orders/:id
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	o, err := h.orders.Find(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, o)
}
