package customer

import (
	"fmt"

	"github.com/spf13/cobra"
)

// loginCmd switches the current identity to an app-supplied user.
var loginCmd = &cobra.Command{
	Use:   "login <user-id>",
	Short: "Log in as a specific user",
	Long: `Switch the current identity to the given user ID and fetch
their entitlement state from the server.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return fmt.Errorf("synchronizer not available")
	}

	snapshot, err := synchronizer.LogIn(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n\n", snapshot.UserID)
	return displaySnapshot(cmd, snapshot)
}
