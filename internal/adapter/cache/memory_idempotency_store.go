package cache

import (
	"context"
	"sync"
	"time"

	"github.com/aq2208/gstore-api/internal/usecase"
)

type memEntry struct {
	value   string
	expires time.Time
}

// MemoryIdempotencyStore mirrors RedisIdempotencyStore for single-process
// runs without redis.
type MemoryIdempotencyStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	locks map[string]time.Time
	vals  map[string]memEntry
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		ttl:   ttl,
		now:   time.Now,
		locks: map[string]time.Time{},
		vals:  map[string]memEntry{},
	}
}

func (s *MemoryIdempotencyStore) expired(t time.Time) bool {
	return s.ttl > 0 && !s.now().Before(t)
}

func (s *MemoryIdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if exp, ok := s.locks[k]; ok && !s.expired(exp) {
		return false, nil
	}
	s.locks[k] = s.now().Add(s.ttl)
	return true, nil
}

func (s *MemoryIdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[scope+":"+key] = memEntry{value: value, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.vals[scope+":"+key]
	if !ok || s.expired(e.expires) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, scope+":"+key)
	return nil
}

var _ usecase.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
