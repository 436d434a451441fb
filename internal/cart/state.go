package cart

import (
	"github.com/roach88/solaris/internal/catalog"
	"github.com/roach88/solaris/internal/money"
)

// LineItem is one cart line. Quantity is always > 0 inside a State.
type LineItem struct {
	ID        string
	Name      string
	UnitPrice money.Amount
	Quantity  int
}

// LineTotal is UnitPrice × Quantity, unrounded.
func (l LineItem) LineTotal() money.Amount {
	return l.UnitPrice.MulInt(l.Quantity)
}

// State is a normalized cart: at most one line per identifier, catalog
// order, no zero quantities. The zero value is an empty cart.
type State struct {
	items []LineItem
}

// Items returns a copy of the lines.
func (s State) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Quantity returns the quantity of id, 0 if absent.
func (s State) Quantity(id string) int {
	for _, it := range s.items {
		if it.ID == id {
			return it.Quantity
		}
	}
	return 0
}

// Has reports whether id has a line.
func (s State) Has(id string) bool {
	return s.Quantity(id) > 0
}

// Len is the number of lines.
func (s State) Len() int {
	return len(s.items)
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.items) == 0
}

// Units is the sum of quantities, the number on the cart badge.
func (s State) Units() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Quantities returns the raw id → quantity map mutations start from.
func (s State) Quantities() map[string]int {
	raw := make(map[string]int, len(s.items))
	for _, it := range s.items {
		raw[it.ID] += it.Quantity
	}
	return raw
}

// Engine binds the pure cart operations to a catalog and pricing policy.
// It holds no cart state and is safe to share.
type Engine struct {
	catalog *catalog.Catalog
	policy  Policy
}

// NewEngine returns an engine for cat priced under policy.
func NewEngine(cat *catalog.Catalog, policy Policy) *Engine {
	return &Engine{catalog: cat, policy: policy}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Policy returns the engine's pricing policy.
func (e *Engine) Policy() Policy { return e.policy }

// Normalize converts matched primary/secondary pairs into bundles and
// rebuilds the cart from raw quantities. Identifiers outside the catalog
// and non-positive quantities are dropped.
//
// bundled is true when the conversion raised the bundle count and the raw
// input held both components. Normalizing an already normalized state
// returns it unchanged with bundled == false.
func (e *Engine) Normalize(raw map[string]int) (next State, bundled bool) {
	primary := e.catalog.Primary()
	secondary := e.catalog.Secondary()
	bundle := e.catalog.Bundle()

	qtyA := max(raw[primary.ID], 0)
	qtyB := max(raw[secondary.ID], 0)
	qtyC := max(raw[bundle.ID], 0)
	bundlesBefore := qtyC

	if pairs := min(qtyA, qtyB); pairs > 0 {
		qtyA -= pairs
		qtyB -= pairs
		qtyC += pairs
	}

	counts := map[string]int{primary.ID: qtyA, secondary.ID: qtyB, bundle.ID: qtyC}
	for _, it := range e.catalog.Items() {
		if q := counts[it.ID]; q > 0 {
			next.items = append(next.items, LineItem{
				ID:        it.ID,
				Name:      it.Name,
				UnitPrice: it.Price,
				Quantity:  q,
			})
		}
	}

	bundled = qtyC > bundlesBefore && raw[primary.ID] > 0 && raw[secondary.ID] > 0
	return next, bundled
}

// Add increments id by one, inserting it at quantity 1 if absent.
func (e *Engine) Add(s State, id string) (State, bool) {
	raw := s.Quantities()
	raw[id]++
	return e.Normalize(raw)
}

// Remove deletes the line for id regardless of quantity.
func (e *Engine) Remove(s State, id string) (State, bool) {
	raw := s.Quantities()
	delete(raw, id)
	return e.Normalize(raw)
}

// Increment adds one to an existing line. Absent ids are a no-op.
func (e *Engine) Increment(s State, id string) (State, bool) {
	raw := s.Quantities()
	if _, ok := raw[id]; ok {
		raw[id]++
	}
	return e.Normalize(raw)
}

// Decrement removes one from an existing line, deleting the line at 0.
// Absent ids are a no-op.
func (e *Engine) Decrement(s State, id string) (State, bool) {
	raw := s.Quantities()
	if q, ok := raw[id]; ok {
		if q <= 1 {
			delete(raw, id)
		} else {
			raw[id] = q - 1
		}
	}
	return e.Normalize(raw)
}

// Apply runs one mutating action. KindClear does not touch the cart and
// returns s unchanged.
func (e *Engine) Apply(s State, a Action) (State, bool) {
	switch a.Kind {
	case KindAdd:
		return e.Add(s, a.ItemID)
	case KindRemove:
		return e.Remove(s, a.ItemID)
	case KindIncrement:
		return e.Increment(s, a.ItemID)
	case KindDecrement:
		return e.Decrement(s, a.ItemID)
	default:
		return s, false
	}
}
