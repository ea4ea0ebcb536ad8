package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// UnlistedOrder is the journal position given to accounts absent from the catalog.
const UnlistedOrder = math.MaxInt

// Catalog is the immutable, validated set of account categories used for one categorization pass.
type Catalog struct {
	categories      []AccountCategory
	index           map[string]int
	defaultCategory string
}

// NewCatalog validates categories and builds a catalog.
// Duplicate or empty names, unknown types, ratios outside [0,1] and a missing default category
// are configuration errors.
func NewCatalog(categories []AccountCategory, defaultCategory string) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: catalog has no categories", apperrors.ErrConfiguration)
	}

	c := &Catalog{
		categories:      make([]AccountCategory, 0, len(categories)),
		index:           make(map[string]int, len(categories)),
		defaultCategory: defaultCategory,
	}
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name is required", apperrors.ErrConfiguration)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", apperrors.ErrConfiguration, name)
		}
		if cat.Type != Income && cat.Type != Expense {
			return nil, fmt.Errorf("%w: category %q has unknown type %q", apperrors.ErrConfiguration, name, cat.Type)
		}
		if err := accounting.ValidateRatio(cat.GSTRatio); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", apperrors.ErrConfiguration, name, err)
		}
		cat.Name = name
		c.index[name] = len(c.categories)
		c.categories = append(c.categories, cat)
	}

	if _, ok := c.index[defaultCategory]; !ok {
		return nil, fmt.Errorf("%w: default category %q is not in the catalog", apperrors.ErrConfiguration, defaultCategory)
	}
	return c, nil
}

// Lookup returns the category with the given name.
func (c *Catalog) Lookup(name string) (AccountCategory, bool) {
	i, ok := c.index[name]
	if !ok {
		return AccountCategory{}, false
	}
	return c.categories[i], true
}

// Contains reports whether name is a catalog category.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// DefaultRatio returns the claim ratio applied when a transaction is first classified into name.
func (c *Catalog) DefaultRatio(name string) (decimal.Decimal, bool) {
	cat, ok := c.Lookup(name)
	if !ok {
		return decimal.Zero, false
	}
	return cat.GSTRatio, true
}

// Order returns the journal position of an account; unlisted accounts sort last.
func (c *Catalog) Order(name string) int {
	cat, ok := c.Lookup(name)
	if !ok {
		return UnlistedOrder
	}
	return cat.Order
}

// DefaultCategory is the bucket for transactions no rule matches.
func (c *Catalog) DefaultCategory() string {
	return c.defaultCategory
}

// Categories returns a copy of the catalog rows sorted by order, then name.
func (c *Catalog) Categories() []AccountCategory {
	out := make([]AccountCategory, len(c.categories))
	copy(out, c.categories)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns category names in catalog order.
func (c *Catalog) Names() []string {
	cats := c.Categories()
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = cat.Name
	}
	return names
}

// CatalogDefinition is the stored form of a catalog together with its classification rules.
type CatalogDefinition struct {
	Categories      []AccountCategory    `json:"categories"`
	Rules           []ClassificationRule `json:"rules"`
	DefaultCategory string               `json:"defaultCategory"`
}

// Catalog validates the definition's categories.
func (d CatalogDefinition) Catalog() (*Catalog, error) {
	return NewCatalog(d.Categories, d.DefaultCategory)
}
