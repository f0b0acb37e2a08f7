package usecase

import (
	"context"
	"sync"
	"testing"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/stretchr/testify/require"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Samsung Galaxy S24", Category: domain.CategorySmartphone, Price: 12_000_000, Stock: 10, Description: "Flagship Android"},
		{ID: 2, Name: "ASUS Zenbook 14", Category: domain.CategoryLaptop, Price: 18_500_000, Stock: 5, Description: "OLED ultrabook"},
		{ID: 3, Name: "Acer Aspire 5", Category: domain.CategoryLaptop, Price: 7_500_000, Stock: 3, Description: "Everyday laptop"},
		{ID: 4, Name: "MacBook Pro 14", Category: domain.CategoryLaptop, Price: 25_000_000, Stock: 2, Description: "Apple silicon"},
		{ID: 5, Name: "Sony WH-1000XM5", Category: domain.CategoryAudio, Price: 5_000_000, Stock: 0, Description: "Noise cancelling headphones"},
		{ID: 6, Name: "Anker PowerCore", Category: domain.CategoryAccessories, Price: 300_000, Stock: 50, Description: "Power bank"},
		{ID: 7, Name: "USB-C Cable", Category: domain.CategoryAccessories, Price: 100_000, Stock: 200, Description: "1m braided cable"},
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(testProducts())
	require.NoError(t, err)
	return c
}

func mustProduct(t *testing.T, c *Catalog, id int) domain.Product {
	t.Helper()
	p, ok := c.Get(id)
	require.True(t, ok, "product %d", id)
	return p
}

// mapStore is a minimal KVStore for tests.
type mapStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMapStore() *mapStore { return &mapStore{data: map[string]string{}} }

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

type recordedAlerts struct{ msgs []string }

func (r *recordedAlerts) Alert(m string) { r.msgs = append(r.msgs, m) }

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
