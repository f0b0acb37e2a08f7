package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aq2208/gstore-api/internal/usecase"
)

const (
	cartKeyPrefix = "cart:"
	saveTimeout   = 5 * time.Second
)

// State is what one shopper owns: the cart and, while it lasts, the
// checkout draft. Only the cart outlives the process.
type State struct {
	ID       string
	Cart     *usecase.Cart
	Checkout *usecase.Checkout

	mu       sync.Mutex
	loaded   bool
	saved    string
	lastSeen time.Time
}

// Registry hands out per-session state and serialises access to it. Cart
// snapshots are written to the store after every call that changed them.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*State
	store     usecase.KVStore
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewRegistry(store usecase.KVStore, idle time.Duration) *Registry {
	return &Registry{
		sessions: map[string]*State{},
		store:    store,
		idle:     idle,
		now:      time.Now,
	}
}

func (r *Registry) get(id string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.idle > 0 && now.Sub(r.lastSweep) > r.idle/4 {
		r.sweepLocked(now)
	}
	s, ok := r.sessions[id]
	if !ok {
		s = &State{ID: id, Cart: usecase.NewCart()}
		r.sessions[id] = s
	}
	s.lastSeen = now
	return s
}

// sweepLocked drops in-memory state of idle sessions. Their carts stay in
// the store and are reloaded on the next visit; checkout drafts are lost.
func (r *Registry) sweepLocked(now time.Time) {
	for id, s := range r.sessions {
		if s.mu.TryLock() {
			if now.Sub(s.lastSeen) > r.idle {
				delete(r.sessions, id)
			}
			s.mu.Unlock()
		}
	}
	r.lastSweep = now
}

// With runs fn with exclusive access to the session's state.
func (r *Registry) With(ctx context.Context, id string, fn func(*State) error) error {
	s := r.get(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := r.load(ctx, s); err != nil {
			return err
		}
	}
	ferr := fn(s)
	// fn may have placed an order; the cart must follow it even when the
	// request has run out of time
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := r.save(sctx, s); err != nil {
		if ferr != nil {
			return ferr
		}
		return err
	}
	return ferr
}

func (r *Registry) load(ctx context.Context, s *State) error {
	raw, ok, err := r.store.Get(ctx, cartKeyPrefix+s.ID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if ok && raw != "" {
		cart := usecase.NewCart()
		if err := json.Unmarshal([]byte(raw), cart); err != nil {
			return fmt.Errorf("decode cart: %w", err)
		}
		s.Cart = cart
	}
	b, _ := json.Marshal(s.Cart)
	s.saved = string(b)
	s.loaded = true
	return nil
}

func (r *Registry) save(ctx context.Context, s *State) error {
	b, err := json.Marshal(s.Cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if string(b) == s.saved {
		return nil
	}
	if err := r.store.Set(ctx, cartKeyPrefix+s.ID, string(b)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.saved = string(b)
	return nil
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
