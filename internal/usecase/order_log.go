package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	domain "github.com/aq2208/gstore-api/internal/entity"
)

// OrdersKey is the storage key holding the serialized order list.
const OrdersKey = "orders"

// OrderLog is the append-only order list kept as one JSON document in a
// KVStore. Appends read the whole list, add one order and write the whole
// list back; the mutex makes that atomic within this process only.
type OrderLog struct {
	mu    sync.Mutex
	store KVStore
	key   string
}

func NewOrderLog(store KVStore) *OrderLog {
	return &OrderLog{store: store, key: OrdersKey}
}

func (l *OrderLog) load(ctx context.Context) ([]domain.Order, error) {
	raw, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.key, err)
	}
	if !ok || raw == "" {
		return []domain.Order{}, nil
	}
	var orders []domain.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.key, err)
	}
	return orders, nil
}

func (l *OrderLog) Append(ctx context.Context, o domain.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.load(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, o)
	b, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode %s: %w", l.key, err)
	}
	if err := l.store.Set(ctx, l.key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", l.key, err)
	}
	return nil
}

func (l *OrderLog) List(ctx context.Context) ([]domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *OrderLog) Find(ctx context.Context, id string) (domain.Order, error) {
	orders, err := l.List(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, ErrNotFound
}
