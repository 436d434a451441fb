package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/solaris/internal/cart"
	"github.com/roach88/solaris/internal/money"
)

// renderSnapshot prints a cart the way the storefront's cart panel shows it.
func renderSnapshot(w io.Writer, snap cart.Snapshot, saving money.Amount) {
	if len(snap.Items) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}

	fmt.Fprintf(w, "Cart (%d %s)\n", snap.Units, plural(snap.Units, "unit", "units"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, it := range snap.Items {
		fmt.Fprintf(tw, "  %s\t%s\t%d x %s\t%s\t\n", it.ID, it.Name, it.Quantity, it.UnitPrice, it.LineTotal)
	}
	tw.Flush()

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "  Subtotal\t%s\t\n", snap.Totals.Subtotal)
	fmt.Fprintf(tw, "  Shipping\t%s\t\n", snap.Totals.Shipping)
	fmt.Fprintf(tw, "  Tax\t%s\t\n", snap.Totals.Tax)
	fmt.Fprintf(tw, "  Total\t%s\t\n", snap.Totals.Total)
	tw.Flush()

	if snap.FreeShippingProgress >= 100 {
		fmt.Fprintln(w, "Free shipping unlocked")
	} else {
		fmt.Fprintf(w, "Add $%s for free shipping (%d%%)\n", snap.RemainingForFreeShipping, snap.FreeShippingProgress)
	}
	if snap.AutoBundled {
		fmt.Fprintf(w, "Bundle applied: sunglasses and lenses combined, you save $%s\n", saving)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
