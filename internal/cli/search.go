// internal/cli/search.go
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/pricecompare/internal/profile"
	"github.com/law-makers/pricecompare/pkg/models"
)

var (
	searchSites  []string
	searchAll    bool
	searchPages  int
	searchOutput string
	searchLimit  int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search one or more sites and list the products found",
	Long: `Renders the search results of each selected site, scrolls until lazy
listings have loaded and extracts every product card.

Sites are scraped one after another, each in its own browser session. A site
that fails is reported in the summary and never stops the others.`,
	Example: `  # Search two sites
  pricecompare search "linen shirt" --site amazon --site flipkart

  # Search every supported site, two result pages each, and save a CSV
  pricecompare search "running shoes" --all --pages 2 -o shoes.csv

  # Plain HTTP for server-rendered sites
  pricecompare search "oxford shirt" --site hm --mode static`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVarP(&searchSites, "site", "s", nil, "Site to search (repeatable, see 'pricecompare sites')")
	searchCmd.Flags().BoolVarP(&searchAll, "all", "a", false, "Search every supported site")
	searchCmd.Flags().IntVarP(&searchPages, "pages", "p", 0, "Result pages per site (0 uses each site's max_pages)")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "File path to save results (.csv or .json)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Rows printed per site (0 prints all)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil {
		return errors.New("application not initialized")
	}
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("query must not be empty")
	}
	if !searchAll && len(searchSites) == 0 {
		return fmt.Errorf("choose sites with --site or use --all (known: %s)", strings.Join(a.Profiles.IDs(), ", "))
	}
	if searchPages < 0 || searchPages > profile.MaxPages {
		return fmt.Errorf("--pages must be between 0 and %d", profile.MaxPages)
	}

	sites, err := a.Profiles.Select(searchSites, searchAll)
	if err != nil {
		return err
	}

	nav, err := a.Navigator()
	if err != nil {
		return fmt.Errorf("failed to start %s navigator: %w", a.Config.Mode, err)
	}
	scraper := a.Scraper(nav, searchPages)

	a.Logger.Info().
		Str("query", query).
		Int("sites", len(sites)).
		Str("navigator", nav.Name()).
		Msg("Search started")

	interactive := !a.Config.Quiet && !a.Config.JSONLog
	var bar *progressbar.ProgressBar
	if interactive {
		bar = progressbar.NewOptions(len(sites),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Searching "+sites[0].ID),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := scraper.ScrapeAll(cmd.Context(), sites, query, func(r models.SiteResult) {
		if bar == nil {
			return
		}
		bar.Describe("Searched " + r.Site)
		_ = bar.Add(1)
	})
	if bar != nil {
		_ = bar.Finish()
	}

	if a.Config.JSONLog {
		if err := writeJSON(query, results); err != nil {
			return err
		}
	} else if !a.Config.Quiet {
		for _, r := range results {
			if r.Err == nil {
				printRecords(os.Stdout, r.Site, r.Records, searchLimit)
			}
		}
		printSummary(os.Stdout, results)
	}

	if searchOutput != "" {
		if err := saveResults(os.Stderr, query, results, searchOutput); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d site(s) failed", failed)
	}
	return nil
}
