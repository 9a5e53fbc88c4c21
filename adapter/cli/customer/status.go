package customer

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/spf13/cobra"
)

var statusForce bool

// statusCmd shows the current customer's entitlement state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current entitlement status",
	Long: `Display the current customer's entitlement state including:
- User ID
- Active entitlements and their expiration
- Active subscriptions
- Subscription management URL (when available)`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusForce, "force", false, "bypass the cache and fetch from the server")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return fmt.Errorf("synchronizer not available")
	}

	ctx := cmd.Context()
	snapshot, err := synchronizer.Refresh(ctx, statusForce)
	if err != nil {
		return fmt.Errorf("failed to get customer info: %w", err)
	}

	return displaySnapshot(cmd, snapshot)
}

func displaySnapshot(cmd *cobra.Command, snapshot *domain.CustomerSnapshot) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "User: %s\n", snapshot.UserID)
	if snapshot.OriginalUserID != "" && snapshot.OriginalUserID != snapshot.UserID {
		fmt.Fprintf(out, "Original user: %s\n", snapshot.OriginalUserID)
	}
	fmt.Fprintln(out)

	if len(snapshot.Entitlements) == 0 {
		fmt.Fprintln(out, "No entitlements.")
	} else {
		fmt.Fprintf(out, "Entitlements (%d):\n", len(snapshot.Entitlements))
		names := make([]string, 0, len(snapshot.Entitlements))
		for name := range snapshot.Entitlements {
			names = append(names, name)
		}
		sort.Strings(names)
		now := time.Now()
		for _, name := range names {
			ent := snapshot.Entitlements[name]
			state := "inactive"
			if ent.IsActive {
				state = "active"
			}
			fmt.Fprintf(out, "  - %s (%s, product %s)\n", name, state, ent.ProductID)
			if ent.ExpiresAt != nil {
				suffix := ""
				if ent.IsExpiringSoon(now) {
					suffix = " (expiring soon)"
				}
				fmt.Fprintf(out, "    expires %s%s\n", ent.ExpiresAt.Format("January 2, 2006"), suffix)
			}
		}
	}
	fmt.Fprintln(out)

	if len(snapshot.ActiveSubscriptionIDs) > 0 {
		fmt.Fprintf(out, "Active subscriptions: %d\n", len(snapshot.ActiveSubscriptionIDs))
		for _, id := range snapshot.ActiveSubscriptionIDs {
			fmt.Fprintf(out, "  - %s\n", id)
		}
	}
	if snapshot.LatestExpiration != nil {
		fmt.Fprintf(out, "Latest expiration: %s\n", snapshot.LatestExpiration.Format("January 2, 2006"))
	}
	if url, err := snapshot.SubscriptionManagementURL(); err == nil {
		fmt.Fprintf(out, "Manage subscription: %s\n", url)
	}

	return nil
}
