package queue

import (
	"context"
	"fmt"

	"github.com/aq2208/gstore-api/internal/usecase"
	"go.uber.org/zap"
)

// OrderPlacedHandler is the notifier side of the order.placed event: it
// records the confirmation that would be mailed to the shopper.
type OrderPlacedHandler struct {
	log  *zap.Logger
	sent func(msg usecase.OrderPlacedMsg)
}

func NewOrderPlacedHandler(log *zap.Logger) *OrderPlacedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderPlacedHandler{log: log}
}

// OnSent registers a hook called after each handled event.
func (h *OrderPlacedHandler) OnSent(fn func(msg usecase.OrderPlacedMsg)) { h.sent = fn }

func (h *OrderPlacedHandler) HandleOrderPlaced(ctx context.Context, msg usecase.OrderPlacedMsg) error {
	if msg.OrderID == "" || msg.Email == "" {
		return fmt.Errorf("%w: order %q without recipient", ErrPoison, msg.OrderID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h.log.Info("order confirmation",
		zap.String("order_id", msg.OrderID),
		zap.String("email", msg.Email),
		zap.String("name", msg.FullName),
		zap.Int("items", msg.ItemCount),
		zap.String("total", msg.Total),
		zap.String("payment", msg.Payment),
	)
	if msg.Newsletter {
		h.log.Info("newsletter subscription", zap.String("email", msg.Email))
	}
	if h.sent != nil {
		h.sent(msg)
	}
	return nil
}
