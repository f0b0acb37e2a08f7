package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/aq2208/gstore-api/internal/usecase"
	"go.uber.org/zap"
)

// HandlerFunc processes a decoded event.
type HandlerFunc func(ctx context.Context, ev usecase.OrderPlacedMsg) error

// Consumer consumes a topic with a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
	Logger *zap.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{Group: group, Topics: topics, Handle: h, Logger: log}
}

// Start blocks until ctx is cancelled or the group fails.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &cgHandler{handle: c.Handle, log: c.Logger}
	for {
		if err := c.Group.Consume(ctx, c.Topics, handler); err != nil {
			return err
		}
		// Consume returns on rebalance or cancellation.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
	log    *zap.Logger
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var ev usecase.OrderPlacedMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			h.log.Warn("kafka decode error", zap.Error(err), zap.Int64("offset", msg.Offset))
			// mark to avoid reprocessing poison
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(sess.Context(), ev); err != nil {
			h.log.Warn("handler error",
				zap.Error(err),
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
			)
			// not marked; retried after the next rebalance
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
