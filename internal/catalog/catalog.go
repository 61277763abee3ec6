package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mhhmod/tes3/internal/domain"
	"github.com/shopspring/decimal"
)

//go:embed products.json
var defaultFeed []byte

// Catalog is the read-mostly product list every session prices against.
type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
}

func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		index:    make(map[string]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.index[p.ID] = i
	}
	return c
}

func Parse(b []byte) (*Catalog, error) {
	var feed domain.Feed
	if err := json.Unmarshal(b, &feed); err != nil {
		return nil, fmt.Errorf("decode product feed: %w", err)
	}
	for i, p := range feed.Products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("product feed entry %d has no id", i)
		}
	}
	return New(feed.Products), nil
}

// Default returns the catalog built from the embedded feed.
func Default() *Catalog {
	c, err := Parse(defaultFeed)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Product(id string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return c.products[i], nil
}

// Featured lists featured products of a category; "all" and "" cover every
// category.
func (c *Catalog) Featured(category string) []domain.Product {
	return c.filter(func(p domain.Product) bool { return p.Featured && inCategory(p, category) })
}

// ByCategory lists one category; "all" and "" list everything.
func (c *Catalog) ByCategory(category string) []domain.Product {
	if category == "" || category == "all" {
		return c.Products()
	}
	return c.filter(func(p domain.Product) bool { return inCategory(p, category) })
}

func inCategory(p domain.Product, category string) bool {
	return category == "" || category == "all" || strings.EqualFold(p.Category, category)
}

// SetPrice swaps in a repriced product, as a feed reload would.
func (c *Catalog) SetPrice(id string, price decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p := c.products[i]
	p.Price = price
	c.products[i] = p
	return nil
}

func (c *Catalog) filter(keep func(domain.Product) bool) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
