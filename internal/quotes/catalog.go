// Package quotes loads the bundled quote catalog and draws quotes from it.
package quotes

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
)

//go:embed catalog.yaml
var bundled []byte

// Fallback is returned when neither the selection nor the general pool has quotes.
var Fallback = models.Quote{
	ID:   "fallback",
	Text: "Every day is a fresh start.",
}

// Source is a read-only category to quotes mapping.
type Source interface {
	Quotes(category string) []models.Quote
}

// Catalog is a parsed quote catalog
type Catalog struct {
	categories map[string][]models.Quote
	byID       map[string]models.Quote
}

type catalogFile struct {
	Categories map[string][]models.Quote `yaml:"categories"`
}

// Bundled parses the catalog compiled into the binary.
func Bundled() (*Catalog, error) {
	return Parse(bundled)
}

// Parse reads a YAML catalog. The general category must be present and non-empty,
// and quote ids must be unique across categories.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing quote catalog: %w", err)
	}
	if len(f.Categories[constants.DefaultFallbackCategory]) == 0 {
		return nil, fmt.Errorf("quote catalog has no %q quotes", constants.DefaultFallbackCategory)
	}

	c := &Catalog{
		categories: f.Categories,
		byID:       make(map[string]models.Quote),
	}
	for name, qs := range f.Categories {
		for _, q := range qs {
			if q.ID == "" || q.Text == "" {
				return nil, fmt.Errorf("category %s: quote missing id or text", name)
			}
			if _, dup := c.byID[q.ID]; dup {
				return nil, fmt.Errorf("duplicate quote id %s", q.ID)
			}
			c.byID[q.ID] = q
		}
	}
	return c, nil
}

// Quotes returns the quotes in a category, nil if it does not exist.
func (c *Catalog) Quotes(category string) []models.Quote {
	return c.categories[category]
}

// Categories returns the category names in sorted order.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Has(category string) bool {
	_, ok := c.categories[category]
	return ok
}

// Lookup finds a quote by id.
func (c *Catalog) Lookup(id string) (models.Quote, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Pool concatenates the named categories in order, keeping duplicates.
func Pool(src Source, categories []string) []models.Quote {
	var pool []models.Quote
	for _, name := range categories {
		pool = append(pool, src.Quotes(name)...)
	}
	return pool
}

// Select draws a quote uniformly from the selected categories, falling back to
// the general pool and then to Fallback.
func Select(src Source, categories []string, rng *rand.Rand) models.Quote {
	pool := Pool(src, categories)
	if len(pool) == 0 {
		pool = src.Quotes(constants.DefaultFallbackCategory)
	}
	if len(pool) == 0 {
		return Fallback
	}
	return pool[rng.IntN(len(pool))]
}
