package customer

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd switches back to a fresh anonymous identity.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out to a fresh anonymous user",
	Long: `Discard the current identity, mint a fresh anonymous user ID,
and fetch its entitlement state from the server.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return fmt.Errorf("synchronizer not available")
	}

	snapshot, err := synchronizer.LogOut(cmd.Context())
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged out. Now anonymous as %s\n", snapshot.UserID)
	return nil
}
