package usecase

import (
	"encoding/json"
	"strconv"
	"strings"

	domain "github.com/aq2208/gstore-api/internal/entity"
)

// Cart is an ordered set of lines keyed by product id. All mutation goes
// through its methods, which keep every quantity in [1, 99] and never let
// two lines share a product. A Cart is not safe for concurrent use; the
// session layer serialises access.
type Cart struct {
	lines []domain.CartLine
}

func NewCart() *Cart { return &Cart{} }

func (c *Cart) index(productID int) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart. It does nothing and returns false when
// p is out of stock.
func (c *Cart) Add(p domain.Product) bool {
	if !p.InStock() {
		return false
	}
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity = domain.ClampQuantity(c.lines[i].Quantity + 1)
		return true
	}
	c.lines = append(c.lines, domain.CartLine{ProductID: p.ID, Quantity: 1})
	return true
}

// AddN is the product page "add to cart": n is clamped to [1, stock] and Add
// is applied that many times.
func (c *Cart) AddN(p domain.Product, n int) int {
	if !p.InStock() {
		return 0
	}
	if n < 1 {
		n = 1
	}
	if n > p.Stock {
		n = p.Stock
	}
	for i := 0; i < n; i++ {
		c.Add(p)
	}
	return n
}

// UpdateQuantity sets the quantity of an existing line, clamped to [1, 99].
// Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID, quantity int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = domain.ClampQuantity(quantity)
	return true
}

// UpdateQuantityText is UpdateQuantity for raw user input. Anything that is
// not an integer counts as 1.
func (c *Cart) UpdateQuantityText(productID int, raw string) bool {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		q = domain.MinQuantity
	}
	return c.UpdateQuantity(productID, q)
}

func (c *Cart) Remove(productID int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Quantity(productID int) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// ItemCount is the number of units in the cart, used for the header badge.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

// UnmarshalJSON restores a snapshot, dropping empty lines, clamping large
// quantities and merging duplicates.
func (c *Cart) UnmarshalJSON(b []byte) error {
	var lines []domain.CartLine
	if err := json.Unmarshal(b, &lines); err != nil {
		return err
	}
	c.lines = nil
	for _, l := range lines {
		if l.Quantity < domain.MinQuantity {
			continue
		}
		if i := c.index(l.ProductID); i >= 0 {
			c.lines[i].Quantity = domain.ClampQuantity(c.lines[i].Quantity + l.Quantity)
			continue
		}
		c.lines = append(c.lines, domain.CartLine{ProductID: l.ProductID, Quantity: domain.ClampQuantity(l.Quantity)})
	}
	return nil
}
