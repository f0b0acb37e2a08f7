package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/adapter/cache"
	"github.com/aq2208/gstore-api/internal/adapter/repo"
	"github.com/aq2208/gstore-api/internal/usecase"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

// Stores bundles the persistence the storefront needs.
type Stores struct {
	KV          usecase.KVStore
	Idempotency usecase.IdempotencyStore
	closers     []func() error
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// OpenStores picks the key-value backend by storage.driver. Idempotency
// keys go to redis whenever redis.addr is set, otherwise they stay in
// process memory.
func OpenStores(ctx context.Context, cfg configs.Config) (*Stores, error) {
	s := &Stores{}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		// init redis
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		s.closers = append(s.closers, rdb.Close)
	}

	switch cfg.Storage.Driver {
	case "memory":
		s.KV = repo.NewMemoryKVStore()
	case "sqlite":
		st, err := repo.OpenSQLiteKVStore(ctx, cfg.Storage.SQLite.Path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.KV = st
		s.closers = append(s.closers, st.Close)
	case "redis":
		s.KV = cache.NewRedisKVStore(rdb, 0)
	case "mysql":
		db, err := openMySQL(ctx, cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		st := repo.NewMySQLKVStore(db)
		if err := st.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("mysql migrate: %w", err)
		}
		s.KV = st
	default:
		return nil, fmt.Errorf("storage.driver %q not supported", cfg.Storage.Driver)
	}

	if cfg.Storage.KeyPrefix != "" {
		s.KV = repo.Prefixed{Store: s.KV, Prefix: cfg.Storage.KeyPrefix}
	}

	if rdb != nil {
		s.Idempotency = cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	} else {
		s.Idempotency = cache.NewMemoryIdempotencyStore(cfg.Idempotency.TTL)
	}
	return s, nil
}

func openMySQL(ctx context.Context, cfg configs.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.Storage.MySQL.DSN)
	if err != nil {
		return nil, err
	}
	lifetime := cfg.Storage.MySQL.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	db.SetConnMaxLifetime(lifetime)
	if n := cfg.Storage.MySQL.MaxOpenConns; n > 0 {
		db.SetMaxOpenConns(n)
	}
	if n := cfg.Storage.MySQL.MaxIdleConns; n > 0 {
		db.SetMaxIdleConns(n)
	}

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return db, nil
}
