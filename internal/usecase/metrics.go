package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders appended to the order log",
	})

	cartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation",
		},
		[]string{"op"},
	)

	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_validation_failures_total",
			Help: "Rejected checkout step transitions",
		},
		[]string{"step"},
	)
)

// CountCartMutation records a cart operation for the mutations counter.
func CountCartMutation(op string) { cartMutations.WithLabelValues(op).Inc() }
