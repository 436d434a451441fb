package cart

// ItemView is a line as the consumer displays it. Amounts are
// two-decimal strings.
type ItemView struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	UnitPrice string `json:"unit_price" yaml:"unit_price"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
	LineTotal string `json:"line_total" yaml:"line_total"`
}

// TotalsView is Totals rounded for display, each figure rounded once.
type TotalsView struct {
	Subtotal string `json:"subtotal" yaml:"subtotal"`
	Shipping string `json:"shipping" yaml:"shipping"`
	Tax      string `json:"tax" yaml:"tax"`
	Total    string `json:"total" yaml:"total"`
}

// View rounds t for display.
func (t Totals) View() TotalsView {
	return TotalsView{
		Subtotal: t.Subtotal.String(),
		Shipping: t.Shipping.String(),
		Tax:      t.Tax.String(),
		Total:    t.Total.String(),
	}
}

// Snapshot is the complete output state a consumer reads after an action.
type Snapshot struct {
	Items                    []ItemView `json:"items"`
	Totals                   TotalsView `json:"totals"`
	AutoBundled              bool       `json:"auto_bundled"`
	Units                    int        `json:"units"`
	RemainingForFreeShipping string     `json:"remaining_for_free_shipping"`
	FreeShippingProgress     int        `json:"free_shipping_progress"`
}

// Snapshot renders s and the auto-bundled flag for display.
func (e *Engine) Snapshot(s State, autoBundled bool) Snapshot {
	totals := e.Totals(s)

	items := make([]ItemView, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, ItemView{
			ID:        it.ID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.String(),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().String(),
		})
	}

	return Snapshot{
		Items:                    items,
		Totals:                   totals.View(),
		AutoBundled:              autoBundled,
		Units:                    s.Units(),
		RemainingForFreeShipping: e.RemainingForFreeShipping(totals.Subtotal).String(),
		FreeShippingProgress:     e.FreeShippingProgress(totals.Subtotal),
	}
}

// Quantities maps item id to quantity.
func (s Snapshot) Quantities() map[string]int {
	out := make(map[string]int, len(s.Items))
	for _, it := range s.Items {
		out[it.ID] = it.Quantity
	}
	return out
}

// CanonicalValue implements canonical.Valuer.
func (s Snapshot) CanonicalValue() any {
	items := make([]any, len(s.Items))
	for i, it := range s.Items {
		items[i] = map[string]any{
			"id":         it.ID,
			"name":       it.Name,
			"unit_price": it.UnitPrice,
			"quantity":   it.Quantity,
			"line_total": it.LineTotal,
		}
	}
	return map[string]any{
		"items": items,
		"totals": map[string]any{
			"subtotal": s.Totals.Subtotal,
			"shipping": s.Totals.Shipping,
			"tax":      s.Totals.Tax,
			"total":    s.Totals.Total,
		},
		"auto_bundled":                s.AutoBundled,
		"units":                       s.Units,
		"remaining_for_free_shipping": s.RemainingForFreeShipping,
		"free_shipping_progress":      s.FreeShippingProgress,
	}
}
