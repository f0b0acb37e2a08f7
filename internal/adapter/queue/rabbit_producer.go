package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aq2208/gstore-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Topology struct {
	Exchange   string
	RoutingKey string
	Queue      string
}

var _ usecase.OrderEventPublisher = (*RabbitProducer)(nil)

// RabbitProducer publishes order events to a topic exchange with publisher
// confirms. An amqp.Channel is not safe for concurrent publishing, so calls
// are serialized.
type RabbitProducer struct {
	mu   sync.Mutex
	ch   *amqp.Channel
	topo Topology
}

// Declare sets up the exchange, queue and binding. Consumers call it too so
// either side can start first.
func Declare(ch *amqp.Channel, t Topology) error {
	// 1. declare exchange (topic type, durable)
	if err := ch.ExchangeDeclare(
		t.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// 2. declare queue
	q, err := ch.QueueDeclare(t.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// 3. bind queue → exchange
	if err := ch.QueueBind(q.Name, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	return nil
}

func NewRabbitProducer(ch *amqp.Channel, t Topology) (*RabbitProducer, error) {
	if err := Declare(ch, t); err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &RabbitProducer{ch: ch, topo: t}, nil
}

// PublishOrderPlaced sends the event and waits for the broker ack.
func (p *RabbitProducer) PublishOrderPlaced(ctx context.Context, msg usecase.OrderPlacedMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.OrderID,
		Timestamp:    msg.PlacedAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conf, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.topo.Exchange, p.topo.RoutingKey, false, false, pub)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	ok, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("publish confirm: %w", err)
	}
	if !ok {
		return fmt.Errorf("publish: broker nacked %s", msg.OrderID)
	}
	return nil
}
