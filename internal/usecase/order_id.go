package usecase

import (
	"strconv"
	"sync"
	"time"
)

const orderIDPrefix = "TS-"

// OrderIDGenerator hands out "TS-<millis>" ids. Two calls within the same
// millisecond (or after the clock stepped back) get distinct, increasing
// tokens.
type OrderIDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewOrderIDGenerator(now func() time.Time) *OrderIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &OrderIDGenerator{now: now}
}

func (g *OrderIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	token := g.now().UnixMilli()
	if token <= g.last {
		token = g.last + 1
	}
	g.last = token
	return orderIDPrefix + strconv.FormatInt(token, 10)
}
