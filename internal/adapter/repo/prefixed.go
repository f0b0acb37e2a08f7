package repo

import (
	"context"

	"github.com/aq2208/gstore-api/internal/usecase"
)

// Prefixed namespaces every key of an underlying store, so several
// storefronts can share one database or redis.
type Prefixed struct {
	Store  usecase.KVStore
	Prefix string
}

func (p Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.Store.Get(ctx, p.Prefix+key)
}

func (p Prefixed) Set(ctx context.Context, key, value string) error {
	return p.Store.Set(ctx, p.Prefix+key, value)
}

var _ usecase.KVStore = Prefixed{}
