// internal/cli/sites.go
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/pricecompare/internal/ui"
)

// sitesCmd represents the sites command
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the supported sites",
	Example: `  pricecompare sites

  # List the sites of a custom profiles file
  pricecompare sites --profiles ./my-sites.yaml`,
	Args: cobra.NoArgs,
	RunE: runSites,
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}

func runSites(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil {
		return errors.New("application not initialized")
	}

	all := a.Profiles.All()
	fmt.Fprintf(os.Stdout, "\n%s\n", ui.Bold(fmt.Sprintf("Supported sites (%d)", len(all))))
	for _, p := range all {
		var embedded []string
		for _, src := range p.Embedded {
			embedded = append(embedded, src.Kind)
		}
		extra := fmt.Sprintf("pages %d", p.MaxPages)
		if len(embedded) > 0 {
			extra += ", embedded " + strings.Join(embedded, "+")
		}
		fmt.Fprintf(os.Stdout, "  %s %s %s\n",
			ui.ColorCyan+ui.Pad(p.ID, 12)+ui.ColorReset,
			ui.Pad(p.Name, 14),
			ui.Dim(p.Origin()+"  "+extra))
	}
	fmt.Fprintln(os.Stdout)
	return nil
}
