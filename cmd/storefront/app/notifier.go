package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/adapter/kafka"
	"github.com/aq2208/gstore-api/internal/adapter/queue"
	"github.com/aq2208/gstore-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RunNotifier consumes order.placed events from the configured source and
// blocks until ctx is cancelled.
func RunNotifier(ctx context.Context, cfg configs.Config, log *zap.Logger) error {
	h := queue.NewOrderPlacedHandler(log)

	switch cfg.Notifier.Source {
	case "rabbitmq":
		if cfg.Rabbit.URL == "" {
			return errors.New("rabbitmq.url required for the notifier")
		}
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return fmt.Errorf("rabbitmq dial: %w", err)
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("rabbitmq channel: %w", err)
		}
		if err := queue.Declare(ch, rabbitTopology(cfg)); err != nil {
			return err
		}

		router := queue.NewRouter(ch, queue.WithPrefetch(cfg.Rabbit.Prefetch), queue.WithLogger(log))
		router.Register(cfg.Rabbit.Queue, queue.JSONHandler[usecase.OrderPlacedMsg]{HandleFunc: h.HandleOrderPlaced})
		if err := router.Start(ctx); err != nil {
			return err
		}
		log.Info("notifier consuming", zap.String("queue", cfg.Rabbit.Queue))
		<-ctx.Done()
		return nil

	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			return errors.New("kafka.brokers and kafka.topic required for the notifier")
		}
		grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			return fmt.Errorf("kafka group: %w", err)
		}
		defer grp.Close()

		consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.Topic}, h.HandleOrderPlaced, log)
		log.Info("notifier consuming", zap.String("topic", cfg.Kafka.Topic))
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil

	default:
		return fmt.Errorf("notifier.source %q not supported", cfg.Notifier.Source)
	}
}
