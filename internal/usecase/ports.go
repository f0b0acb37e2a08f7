package usecase

import "context"

// KVStore is the text key-value store that stands in for browser local
// storage. Values are whole documents; there are no partial updates.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	// Release drops a lock whose submit failed so the key can be retried.
	Release(ctx context.Context, scope, key string) error
}

type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlacedMsg) error
}

// Confirmer answers a yes/no question put to the shopper before a
// destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// Alerter delivers a notification the shopper has to acknowledge.
type Alerter interface {
	Alert(message string)
}

// PriceBook resolves a product id to its catalog price.
type PriceBook interface {
	Price(productID int) (int64, bool)
}

// Route is a view transition requested from the navigation layer.
type Route string

const (
	RouteHome     Route = "/"
	RouteCatalog  Route = "/products"
	RouteCart     Route = "/cart"
	RouteCheckout Route = "/checkout"
)
