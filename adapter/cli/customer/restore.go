package customer

import (
	"fmt"

	"github.com/spf13/cobra"
)

// restoreCmd re-verifies the platform's purchase history.
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore previous purchases",
	Long: `Replay the platform's purchase history against the server so that
purchases made on another device or install are recognized again.`,
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return fmt.Errorf("synchronizer not available")
	}

	snapshot, err := synchronizer.RestorePurchases(cmd.Context())
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Restore complete.")
	fmt.Fprintln(cmd.OutOrStdout())
	return displaySnapshot(cmd, snapshot)
}
