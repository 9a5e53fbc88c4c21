package customer

import (
	"fmt"

	"github.com/spf13/cobra"
)

// productsCmd looks up catalog entries for product identifiers.
var productsCmd = &cobra.Command{
	Use:   "products <product-id>...",
	Short: "Look up products in the platform catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProducts,
}

func runProducts(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return fmt.Errorf("synchronizer not available")
	}

	products, err := synchronizer.GetProducts(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("failed to look up products: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(products) == 0 {
		fmt.Fprintln(out, "No matching products.")
		return nil
	}

	for _, p := range products {
		fmt.Fprintf(out, "%s\t%s\t%.2f %s\n", p.ID, p.DisplayName, p.Price, p.Currency)
	}
	return nil
}
