package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aq2208/gstore-api/internal/adapter/repo"
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var phone = domain.Product{ID: 1, Name: "Phone", Category: domain.CategorySmartphone, Price: 1_000_000, Stock: 10}

func TestRegistryPersistsCart(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryKVStore()
	r := NewRegistry(store, time.Hour)

	require.NoError(t, r.With(ctx, "s1", func(s *State) error {
		s.Cart.AddN(phone, 2)
		return nil
	}))

	raw, ok, err := store.Get(ctx, "cart:s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"productId":1,"quantity":2}]`, raw)

	// a new process sees the same cart
	r2 := NewRegistry(store, time.Hour)
	require.NoError(t, r2.With(ctx, "s1", func(s *State) error {
		assert.Equal(t, 2, s.Cart.Quantity(1))
		return nil
	}))

	require.NoError(t, r2.With(ctx, "s2", func(s *State) error {
		assert.True(t, s.Cart.IsEmpty(), "sessions are isolated")
		return nil
	}))
}

func TestRegistrySavesEvenWhenFnFails(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryKVStore()
	r := NewRegistry(store, time.Hour)
	boom := errors.New("boom")

	err := r.With(ctx, "s1", func(s *State) error {
		s.Cart.Add(phone)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok, _ := store.Get(ctx, "cart:s1")
	assert.True(t, ok)
}

func TestRegistryKeepsCheckoutInMemory(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(repo.NewMemoryKVStore(), time.Hour)

	require.NoError(t, r.With(ctx, "s1", func(s *State) error {
		s.Checkout = usecase.NewCheckout()
		return nil
	}))
	require.NoError(t, r.With(ctx, "s1", func(s *State) error {
		assert.NotNil(t, s.Checkout)
		return nil
	}))
}

func TestRegistrySweepsIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryKVStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(store, time.Minute)
	r.now = func() time.Time { return now }

	require.NoError(t, r.With(ctx, "old", func(s *State) error {
		s.Cart.Add(phone)
		s.Checkout = usecase.NewCheckout()
		return nil
	}))
	assert.Equal(t, 1, r.Len())

	now = now.Add(10 * time.Minute)
	require.NoError(t, r.With(ctx, "new", func(*State) error { return nil }))
	assert.Equal(t, 1, r.Len(), "idle session dropped")

	require.NoError(t, r.With(ctx, "old", func(s *State) error {
		assert.Equal(t, 1, s.Cart.Quantity(1), "cart reloaded from the store")
		assert.Nil(t, s.Checkout, "draft does not survive")
		return nil
	}))
}

// ctxStore fails writes on a finished context, like the sql and redis drivers.
type ctxStore struct{ *repo.MemoryKVStore }

func (s ctxStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryKVStore.Set(ctx, key, value)
}

func TestRegistrySavesAfterRequestDeadline(t *testing.T) {
	store := ctxStore{repo.NewMemoryKVStore()}
	r := NewRegistry(store, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, r.With(ctx, "s1", func(s *State) error {
		s.Cart.AddN(phone, 3)
		cancel()
		return nil
	}))

	raw, ok, err := store.Get(context.Background(), "cart:s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"productId":1,"quantity":3}]`, raw)
}
