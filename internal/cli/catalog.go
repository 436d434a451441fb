package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/solaris/internal/money"
)

// CatalogItem is one catalog entry as the catalog command reports it.
type CatalogItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Price     string `json:"price"`
	PriceLine string `json:"price_line"`
	Tagline   string `json:"tagline,omitempty"`
}

// CatalogResult is the catalog command's payload.
type CatalogResult struct {
	Items        []CatalogItem `json:"items"`
	BundleSaving string        `json:"bundle_saving"`
	Hash         string        `json:"hash"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show the catalog with display prices",
		Long: `Print the catalog items with their USD price and display conversions,
the bundle saving, and the catalog hash journaled sessions are pinned to.

Examples:
  solaris catalog
  solaris catalog --catalog ./sale.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(rootOpts, cmd)
		},
	}
}

func runCatalog(opts *RootOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	engine, err := opts.engine()
	if err != nil {
		return out.Fail(err)
	}
	cat := engine.Catalog()

	result := CatalogResult{
		Items:        make([]CatalogItem, 0, 3),
		BundleSaving: cat.BundleSaving().String(),
		Hash:         cat.Hash(),
	}
	for _, it := range cat.Items() {
		result.Items = append(result.Items, CatalogItem{
			ID:        it.ID,
			Name:      it.Name,
			Role:      string(it.Role),
			Price:     it.Price.String(),
			PriceLine: money.PriceLine(it.Price),
			Tagline:   it.Tagline,
		})
	}

	return out.Success(result, func(w io.Writer) {
		for _, it := range result.Items {
			fmt.Fprintf(w, "%s  %s (%s)\n", it.ID, it.Name, it.Role)
			fmt.Fprintf(w, "     %s\n", it.PriceLine)
		}
		fmt.Fprintf(w, "Bundle saving: $%s\n", result.BundleSaving)
		fmt.Fprintf(w, "Catalog hash: %s\n", result.Hash)
	})
}
