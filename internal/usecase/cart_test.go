package usecase

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAdd(t *testing.T) {
	cat := testCatalog(t)
	c := NewCart()

	assert.True(t, c.Add(mustProduct(t, cat, 1)))
	assert.True(t, c.Add(mustProduct(t, cat, 1)))
	assert.True(t, c.Add(mustProduct(t, cat, 6)))

	assert.Equal(t, []domain.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 6, Quantity: 1}}, c.Lines())
	assert.Equal(t, 3, c.ItemCount())
	assert.Equal(t, 2, c.Len())
}

func TestCartAddOutOfStock(t *testing.T) {
	cat := testCatalog(t)
	c := NewCart()

	assert.False(t, c.Add(mustProduct(t, cat, 5)))
	assert.Equal(t, 0, c.AddN(mustProduct(t, cat, 5), 3))
	assert.True(t, c.IsEmpty())
}

func TestCartAddCapsAtMax(t *testing.T) {
	c := NewCart()
	p := domain.Product{ID: 42, Stock: 1000}
	for i := 0; i < 120; i++ {
		c.Add(p)
	}
	assert.Equal(t, domain.MaxQuantity, c.Quantity(42))
}

func TestCartAddN(t *testing.T) {
	cat := testCatalog(t)
	c := NewCart()

	assert.Equal(t, 3, c.AddN(mustProduct(t, cat, 3), 10), "clamped to stock")
	assert.Equal(t, 3, c.Quantity(3))

	assert.Equal(t, 1, c.AddN(mustProduct(t, cat, 6), 0), "at least one")
	assert.Equal(t, 1, c.Quantity(6))
}

func TestCartUpdateQuantity(t *testing.T) {
	cat := testCatalog(t)
	c := NewCart()
	c.Add(mustProduct(t, cat, 1))

	assert.True(t, c.UpdateQuantity(1, 0))
	assert.Equal(t, 1, c.Quantity(1))

	assert.True(t, c.UpdateQuantity(1, 150))
	assert.Equal(t, 99, c.Quantity(1))

	assert.True(t, c.UpdateQuantity(1, 7))
	assert.Equal(t, 7, c.Quantity(1))

	assert.False(t, c.UpdateQuantity(2, 5), "absent line is ignored")
	assert.Equal(t, 0, c.Quantity(2))
}

func TestCartUpdateQuantityText(t *testing.T) {
	c := NewCart()
	c.Add(domain.Product{ID: 1, Stock: 10})

	for raw, want := range map[string]int{"abc": 1, "": 1, " 12 ": 12, "-4": 1, "1000": 99, "3.5": 1} {
		c.UpdateQuantityText(1, raw)
		assert.Equal(t, want, c.Quantity(1), "input %q", raw)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	cat := testCatalog(t)
	c := NewCart()
	c.Add(mustProduct(t, cat, 1))
	c.Add(mustProduct(t, cat, 2))
	c.Add(mustProduct(t, cat, 6))

	assert.True(t, c.Remove(2))
	assert.False(t, c.Remove(2))
	assert.Equal(t, []domain.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 6, Quantity: 1}}, c.Lines())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
}

func TestCartLinesIsACopy(t *testing.T) {
	c := NewCart()
	c.Add(domain.Product{ID: 1, Stock: 1})
	lines := c.Lines()
	lines[0].Quantity = 50
	assert.Equal(t, 1, c.Quantity(1))
}

func TestCartSnapshotRoundTrip(t *testing.T) {
	cat := testCatalog(t)
	c := NewCart()
	c.AddN(mustProduct(t, cat, 1), 4)
	c.Add(mustProduct(t, cat, 7))

	b, err := json.Marshal(c)
	require.NoError(t, err)

	restored := NewCart()
	require.NoError(t, json.Unmarshal(b, restored))
	assert.Equal(t, c.Lines(), restored.Lines())
}

func TestCartRestoreRepairsSnapshot(t *testing.T) {
	raw := `[{"productId":1,"quantity":0},{"productId":2,"quantity":150},{"productId":3,"quantity":2},{"productId":3,"quantity":5}]`

	c := NewCart()
	require.NoError(t, json.Unmarshal([]byte(raw), c))
	assert.Equal(t, []domain.CartLine{{ProductID: 2, Quantity: 99}, {ProductID: 3, Quantity: 7}}, c.Lines())
}

func TestCartInvariantsUnderRandomSequences(t *testing.T) {
	cat := testCatalog(t)
	products := testProducts()
	texts := []string{"", "abc", " 12 ", "-4", "0", "99", "100", "1e3", "250"}

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		c := NewCart()
		for step := 0; step < 500; step++ {
			// id 8 is not in the catalog
			id := rng.Intn(len(products)+1) + 1
			var op string
			switch rng.Intn(5) {
			case 0:
				op = "add"
				if p, ok := cat.Get(id); ok {
					c.Add(p)
				}
			case 1:
				n := rng.Intn(260) - 10
				op = "addN " + strconv.Itoa(n)
				if p, ok := cat.Get(id); ok {
					c.AddN(p, n)
				}
			case 2:
				q := rng.Intn(300) - 100
				op = "update " + strconv.Itoa(q)
				c.UpdateQuantity(id, q)
			case 3:
				raw := texts[rng.Intn(len(texts))]
				op = fmt.Sprintf("update text %q", raw)
				c.UpdateQuantityText(id, raw)
			default:
				op = "remove"
				c.Remove(id)
			}

			seen := map[int]bool{}
			total := 0
			for _, l := range c.Lines() {
				require.Falsef(t, seen[l.ProductID], "seed %d step %d (%s on %d): duplicate line %d", seed, step, op, id, l.ProductID)
				seen[l.ProductID] = true
				require.GreaterOrEqualf(t, l.Quantity, 1, "seed %d step %d (%s on %d)", seed, step, op, id)
				require.LessOrEqualf(t, l.Quantity, 99, "seed %d step %d (%s on %d)", seed, step, op, id)
				total += l.Quantity
			}
			require.Equal(t, total, c.ItemCount())
			require.False(t, seen[5], "out of stock product never enters the cart")
		}
	}
}
