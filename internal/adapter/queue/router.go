package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Router manages one consumer per registered queue on a single AMQP channel.
type Router struct {
	ch            *amqp.Channel
	log           *zap.Logger
	prefetch      int
	callTimeout   time.Duration
	requeueOnErr  bool
	registrations []registration
}

type registration struct {
	queueName   string
	handler     Handler
	consumerTag string
}

type RouterOption func(*Router)

func WithPrefetch(n int) RouterOption          { return func(r *Router) { r.prefetch = n } }
func WithTimeout(d time.Duration) RouterOption { return func(r *Router) { r.callTimeout = d } }
func WithRequeue(b bool) RouterOption          { return func(r *Router) { r.requeueOnErr = b } }
func WithLogger(l *zap.Logger) RouterOption    { return func(r *Router) { r.log = l } }

// NewRouter constructs a Router. Defaults: prefetch=50, timeout=10s, requeueOnErr=true.
func NewRouter(ch *amqp.Channel, opts ...RouterOption) *Router {
	r := &Router{
		ch:           ch,
		log:          zap.NewNop(),
		prefetch:     50,
		callTimeout:  10 * time.Second,
		requeueOnErr: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Register(queueName string, h Handler) {
	r.registrations = append(r.registrations, registration{
		queueName:   queueName,
		handler:     h,
		consumerTag: "c_" + queueName,
	})
}

// Start begins consuming; non-blocking (spawns one goroutine per queue).
// QoS is per channel and applies to every consumer on it.
func (r *Router) Start(ctx context.Context) error {
	if err := r.ch.Qos(r.prefetch, 0, false); err != nil {
		return err
	}

	for _, reg := range r.registrations {
		deliveries, err := r.ch.Consume(
			reg.queueName,
			reg.consumerTag,
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return err
		}
		go r.consume(ctx, reg, deliveries)
	}
	return nil
}

func (r *Router) consume(ctx context.Context, reg registration, msgs <-chan amqp.Delivery) {
	log := r.log.With(zap.String("queue", reg.queueName), zap.String("tag", reg.consumerTag))
	for d := range msgs {
		hctx, cancel := context.WithTimeout(ctx, r.callTimeout)
		err := reg.handler.Handle(hctx, d)
		cancel()

		if err == nil {
			_ = d.Ack(false)
			continue
		}
		requeue := r.requeueOnErr && !errors.Is(err, ErrPoison)
		log.Warn("handler error",
			zap.String("rk", d.RoutingKey),
			zap.Error(err),
			zap.Bool("requeue", requeue),
		)
		_ = d.Nack(false, requeue)
	}
	log.Info("consumer stopped")
}
