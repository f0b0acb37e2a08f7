package usecase

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strings"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog is the immutable product list, loaded once at start-up.
type Catalog struct {
	products []domain.Product
	byID     map[int]int
}

func NewCatalog(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price < 0 || p.Stock < 0 {
			return nil, fmt.Errorf("product %d: negative price or stock", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

func (c *Catalog) All() []domain.Product { return slices.Clone(c.products) }

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) Get(id int) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Price(id int) (int64, bool) {
	p, ok := c.Get(id)
	return p.Price, ok
}

var _ PriceBook = (*Catalog)(nil)

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories lists categories in first-seen order with their product counts.
func (c *Catalog) Categories() []CategoryCount {
	var out []CategoryCount
	pos := map[string]int{}
	for _, p := range c.products {
		if i, ok := pos[p.Category]; ok {
			out[i].Count++
			continue
		}
		pos[p.Category] = len(out)
		out = append(out, CategoryCount{Name: p.Category, Count: 1})
	}
	return out
}

// Featured returns the first n products of the catalog.
func (c *Catalog) Featured(n int) []domain.Product {
	if n > len(c.products) {
		n = len(c.products)
	}
	return slices.Clone(c.products[:n])
}

// Related returns up to n other products from the same category.
func (c *Catalog) Related(p domain.Product, n int) []domain.Product {
	var out []domain.Product
	for _, o := range c.products {
		if len(out) == n {
			break
		}
		if o.Category == p.Category && o.ID != p.ID {
			out = append(out, o)
		}
	}
	return out
}

type SortOrder string

const (
	SortDefault   SortOrder = "default"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// PriceRange is one of the fixed price buckets, inclusive at both ends.
type PriceRange struct {
	Key      string
	Min, Max int64
	Open     bool // no upper bound
}

var PriceAll = PriceRange{Key: "all"}

var PriceRanges = []PriceRange{
	{Key: "0-2000000", Min: 0, Max: 2_000_000},
	{Key: "2000000-5000000", Min: 2_000_000, Max: 5_000_000},
	{Key: "5000000-10000000", Min: 5_000_000, Max: 10_000_000},
	{Key: "10000000-999999999", Min: 10_000_000, Open: true},
}

func LookupPriceRange(key string) (PriceRange, bool) {
	if key == "" || key == PriceAll.Key {
		return PriceAll, true
	}
	for _, r := range PriceRanges {
		if r.Key == key {
			return r, true
		}
	}
	return PriceRange{}, false
}

func (r PriceRange) Contains(price int64) bool {
	if r.Key == PriceAll.Key {
		return true
	}
	if price < r.Min {
		return false
	}
	return r.Open || price <= r.Max
}

// Query is the product listing filter state. The zero value matches
// everything in catalog order.
type Query struct {
	Search   string
	Category string
	Price    PriceRange
	Sort     SortOrder
}

// ParseQuery reads filter state from location parameters. Unknown price
// buckets and sort orders fall back to their defaults.
func ParseQuery(v url.Values) Query {
	q := Query{
		Search:   v.Get("search"),
		Category: v.Get("category"),
		Price:    PriceAll,
		Sort:     SortDefault,
	}
	if q.Category == "all" {
		q.Category = ""
	}
	if r, ok := LookupPriceRange(v.Get("price")); ok {
		q.Price = r
	}
	switch s := SortOrder(v.Get("sort")); s {
	case SortPriceLow, SortPriceHigh, SortNameAsc, SortNameDesc:
		q.Sort = s
	}
	return q
}

// Values is the inverse of ParseQuery; defaults are omitted so the location
// stays short.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Price.Key != "" && q.Price.Key != PriceAll.Key {
		v.Set("price", q.Price.Key)
	}
	if q.Sort != "" && q.Sort != SortDefault {
		v.Set("sort", string(q.Sort))
	}
	return v
}

func (q Query) IsZero() bool { return len(q.Values()) == 0 }

func (q Query) match(p domain.Product) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			return false
		}
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Price.Key != "" && !q.Price.Contains(p.Price) {
		return false
	}
	return true
}

// Search filters the catalog by q and then sorts the result.
func (c *Catalog) Search(q Query) []domain.Product {
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if q.match(p) {
			out = append(out, p)
		}
	}
	sortProducts(out, q.Sort)
	return out
}

func sortProducts(ps []domain.Product, order SortOrder) {
	switch order {
	case SortPriceLow:
		slices.SortStableFunc(ps, func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(ps, func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortNameAsc, SortNameDesc:
		// collators keep internal buffers, so one per sort
		col := collate.New(language.Indonesian)
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			if order == SortNameDesc {
				a, b = b, a
			}
			return col.CompareString(a.Name, b.Name)
		})
	}
}
