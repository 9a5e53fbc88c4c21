package customer

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// offeringsCmd assembles offerings from named product groups.
var offeringsCmd = &cobra.Command{
	Use:   "offerings <name=product-id,product-id...>...",
	Short: "Load offerings from product groups",
	Long: `Assemble offerings from named groups of product identifiers and
show which packages resolved against the platform catalog.

Example:
  entitle customer offerings default=premium_monthly,premium_yearly`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOfferings,
}

func runOfferings(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return fmt.Errorf("synchronizer not available")
	}

	groups := make(map[string][]string, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid group %q, expected name=id,id", arg)
		}
		groups[name] = strings.Split(list, ",")
	}

	offerings, err := synchronizer.LoadOfferings(cmd.Context(), groups)
	if err != nil {
		return fmt.Errorf("failed to load offerings: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, offering := range offerings {
		fmt.Fprintf(out, "%s (%d packages)\n", offering.Identifier, len(offering.Packages))
		for _, pkg := range offering.Packages {
			fmt.Fprintf(out, "  - %s: %s %.2f %s\n",
				pkg.Identifier, pkg.Product.DisplayName, pkg.Product.Price, pkg.Product.Currency)
		}
	}
	return nil
}
