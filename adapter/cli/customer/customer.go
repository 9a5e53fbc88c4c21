package customer

import (
	"github.com/felixgeelhaar/entitle/internal/entitlement/application"
	"github.com/spf13/cobra"
)

var synchronizer *application.Synchronizer

// SetSynchronizer sets the entitlement synchronizer for CLI commands.
func SetSynchronizer(s *application.Synchronizer) {
	synchronizer = s
}

// Cmd is the parent command for customer operations.
var Cmd = &cobra.Command{
	Use:   "customer",
	Short: "Manage the current customer and their entitlements",
	Long: `Inspect and change the current customer.

Use these commands to check entitlement status, switch identities,
purchase products, or restore previous purchases.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(loginCmd)
	Cmd.AddCommand(logoutCmd)
	Cmd.AddCommand(purchaseCmd)
	Cmd.AddCommand(restoreCmd)
	Cmd.AddCommand(productsCmd)
	Cmd.AddCommand(offeringsCmd)
}
