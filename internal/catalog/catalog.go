// Package catalog holds the fixed storefront catalog: two components that
// pair into a discounted bundle.
//
// The catalog is reference data. It is defined in CUE (solaris.cue,
// embedded), checked against schema.cue, and then checked for the
// invariants the cart engine relies on:
//   - exactly one primary component, one secondary component, one bundle
//   - unique identifiers and positive prices
//   - price(bundle) < price(primary) + price(secondary)
package catalog

import (
	"fmt"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/solaris/internal/canonical"
	"github.com/roach88/solaris/internal/money"
)

// Role is an item's part in bundling.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleBundle    Role = "bundle"
)

// roleOrder is the order items appear in a cart.
var roleOrder = []Role{RolePrimary, RoleSecondary, RoleBundle}

// Item is an immutable catalog entry. Prices are USD.
type Item struct {
	ID          string
	Name        string
	Role        Role
	Price       money.Amount
	Tagline     string
	Description string
}

// Catalog is a validated, read-only set of exactly three items.
type Catalog struct {
	items []Item // primary, secondary, bundle
	byID  map[string]int
	hash  string
}

// New validates items and builds a catalog. Item order in the result is
// by role, not argument order.
func New(items ...Item) (*Catalog, error) {
	if len(items) != len(roleOrder) {
		return nil, &Error{Field: "items", Message: fmt.Sprintf("expected %d items, got %d", len(roleOrder), len(items))}
	}

	byRole := make(map[Role]Item, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ID == "" {
			return nil, &Error{Field: field + ".id", Message: "id is required"}
		}
		if seen[it.ID] {
			return nil, &Error{Field: field + ".id", Message: fmt.Sprintf("duplicate id %q", it.ID)}
		}
		seen[it.ID] = true
		if it.Price.Sign() <= 0 {
			return nil, &Error{Field: field + ".price", Message: fmt.Sprintf("price must be positive, got %s", it.Price.Exact())}
		}
		if _, dup := byRole[it.Role]; dup {
			return nil, &Error{Field: field + ".role", Message: fmt.Sprintf("role %q assigned twice", it.Role)}
		}
		it.Name = norm.NFC.String(it.Name)
		byRole[it.Role] = it
	}

	c := &Catalog{byID: make(map[string]int, len(items))}
	for _, r := range roleOrder {
		it, ok := byRole[r]
		if !ok {
			return nil, &Error{Field: "items", Message: fmt.Sprintf("no %s item", r)}
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}

	parts := c.Primary().Price.Add(c.Secondary().Price)
	if c.Bundle().Price.Cmp(parts) >= 0 {
		return nil, &Error{
			Field: "items.bundle.price",
			Message: fmt.Sprintf("bundle price %s must be below component total %s",
				c.Bundle().Price.Exact(), parts.Exact()),
		}
	}

	h, err := canonical.Hash(canonical.DomainCatalog, c)
	if err != nil {
		return nil, fmt.Errorf("catalog hash: %w", err)
	}
	c.hash = h
	return c, nil
}

// Items returns a copy of the items in cart order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup returns the item with the given id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Primary() Item   { return c.items[0] }
func (c *Catalog) Secondary() Item { return c.items[1] }
func (c *Catalog) Bundle() Item    { return c.items[2] }

// BundleSaving is what a customer saves buying the bundle instead of the
// two components separately.
func (c *Catalog) BundleSaving() money.Amount {
	return c.Primary().Price.Add(c.Secondary().Price).Sub(c.Bundle().Price)
}

// Hash identifies the catalog content. Journals record it so a replay
// against different prices is refused.
func (c *Catalog) Hash() string {
	return c.hash
}

// CanonicalValue implements canonical.Valuer.
func (c *Catalog) CanonicalValue() any {
	items := make([]any, len(c.items))
	for i, it := range c.items {
		items[i] = map[string]any{
			"id":    it.ID,
			"name":  it.Name,
			"role":  string(it.Role),
			"price": it.Price.Exact(),
		}
	}
	return map[string]any{"items": items}
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Compile("solaris.cue", defaultSource)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
})

// Default returns the built-in Solaris catalog.
func Default() *Catalog {
	return defaultCatalog()
}
