package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/aq2208/gstore-api/internal/usecase"
)

var _ usecase.OrderEventPublisher = (*Producer)(nil)

// Producer writes order events keyed by order id.
type Producer struct {
	sp    sarama.SyncProducer
	topic string
}

func NewProducer(sp sarama.SyncProducer, topic string) *Producer {
	return &Producer{sp: sp, topic: topic}
}

func (p *Producer) PublishOrderPlaced(ctx context.Context, msg usecase.OrderPlacedMsg) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, _, err = p.sp.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(msg.OrderID),
		Value:     sarama.ByteEncoder(body),
		Timestamp: msg.PlacedAt,
	})
	if err != nil {
		return fmt.Errorf("kafka send: %w", err)
	}
	return nil
}

func (p *Producer) Close() error { return p.sp.Close() }
