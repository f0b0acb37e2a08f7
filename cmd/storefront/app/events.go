package app

import (
	"fmt"

	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/adapter/kafka"
	"github.com/aq2208/gstore-api/internal/adapter/queue"
	"github.com/aq2208/gstore-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

func rabbitTopology(cfg configs.Config) queue.Topology {
	return queue.Topology{
		Exchange:   cfg.Rabbit.Exchange,
		RoutingKey: cfg.Rabbit.RoutingKey,
		Queue:      cfg.Rabbit.Queue,
	}
}

// openPublishers connects every enabled broker. A disabled broker is simply
// absent; an enabled one that cannot be reached fails startup.
func openPublishers(cfg configs.Config) ([]usecase.OrderEventPublisher, func(), error) {
	var (
		pubs    []usecase.OrderEventPublisher
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Rabbit.Enabled {
		// init rabbitmq
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("rabbitmq dial: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		ch, err := conn.Channel()
		if err != nil {
			return nil, cleanup, fmt.Errorf("rabbitmq channel: %w", err)
		}
		p, err := queue.NewRabbitProducer(ch, rabbitTopology(cfg))
		if err != nil {
			return nil, cleanup, err
		}
		pubs = append(pubs, p)
	}

	if cfg.Kafka.Enabled {
		// init kafka
		sp, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, cleanup, fmt.Errorf("kafka producer: %w", err)
		}
		p := kafka.NewProducer(sp, cfg.Kafka.Topic)
		closers = append(closers, func() { _ = p.Close() })
		pubs = append(pubs, p)
	}

	return pubs, cleanup, nil
}
