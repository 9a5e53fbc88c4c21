package customer

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/spf13/cobra"
)

// purchaseCmd runs the platform purchase flow for one product.
var purchaseCmd = &cobra.Command{
	Use:   "purchase <product-id>",
	Short: "Purchase a product",
	Long: `Run the platform purchase flow for the given product, verify the
resulting transaction with the server, and show the updated
entitlement state.`,
	Args: cobra.ExactArgs(1),
	RunE: runPurchase,
}

func runPurchase(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return fmt.Errorf("synchronizer not available")
	}

	out := cmd.OutOrStdout()
	snapshot, err := synchronizer.Purchase(cmd.Context(), args[0])
	switch {
	case err == nil:
		fmt.Fprintln(out, "Purchase complete.")
		fmt.Fprintln(out)
		return displaySnapshot(cmd, snapshot)
	case errors.Is(err, domain.ErrPurchaseCancelled):
		fmt.Fprintln(out, "Purchase cancelled.")
		return nil
	case errors.Is(err, domain.ErrPurchasePending):
		fmt.Fprintln(out, "Purchase is pending approval. Entitlements will update once it completes.")
		return nil
	default:
		return fmt.Errorf("purchase failed: %w", err)
	}
}
