// internal/cli/extract.go
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/law-makers/pricecompare/internal/engine/static"
	urlutil "github.com/law-makers/pricecompare/internal/utils/url"
	"github.com/law-makers/pricecompare/pkg/models"
)

var (
	extractSite   string
	extractURL    string
	extractOutput string
	extractLimit  int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file.html>",
	Short: "Extract products from a saved search page",
	Long: `Runs the extraction engine over a DOM snapshot saved from a browser,
without rendering anything. Useful for tuning a site profile against a page
that changed its markup.

Relative links and images resolve against --url, which defaults to the
site's origin.`,
	Example: `  # Extract from a page saved with "Save page as..."
  pricecompare extract ./flipkart-shirts.html --site flipkart

  # Resolve links against the page's real address and save JSON
  pricecompare extract ./page.html --site myntra --url "https://www.myntra.com/shirts" -o out.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractSite, "site", "s", "", "Site profile to extract with (required)")
	extractCmd.Flags().StringVarP(&extractURL, "url", "u", "", "Address the page was saved from")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "File path to save results (.csv or .json)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "Rows printed (0 prints all)")
	_ = extractCmd.MarkFlagRequired("site")
}

func runExtract(cmd *cobra.Command, args []string) error {
	a := GetApp()
	if a == nil {
		return errors.New("application not initialized")
	}
	p, err := a.Profiles.Lookup(extractSite)
	if err != nil {
		return err
	}

	pageURL := extractURL
	if pageURL == "" {
		pageURL = p.Origin() + "/"
	}
	if err := urlutil.ValidateURL(pageURL); err != nil {
		return fmt.Errorf("invalid --url: %w", err)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	scraper := a.Scraper(nil, 0)
	page := static.FromHTML(pageURL, string(raw))
	records, sum, err := scraper.ExtractPage(cmd.Context(), page, p, a.Logger.With().Str("file", args[0]).Logger())
	if err != nil {
		return err
	}

	a.Logger.Info().
		Str("query", sum.Query).
		Bool("fallback", sum.Fallback).
		Int("containers", sum.Containers).
		Int("seeds", sum.Seeds).
		Int("accepted", sum.Accepted).
		Int("duplicates", sum.Duplicates).
		Int("rejected", sum.Rejected).
		Msg("Snapshot extracted")

	results := []models.SiteResult{{Site: p.ID, Records: records, Pages: 1}}
	if a.Config.JSONLog {
		if err := writeJSON("", results); err != nil {
			return err
		}
	} else if !a.Config.Quiet {
		printRecords(os.Stdout, p.ID, records, extractLimit)
		fmt.Fprintf(os.Stdout, "\n  containers %d via %q, %d with price, %d with image, %d with link\n",
			sum.Containers, containerQuery(sum.Query, sum.Fallback), sum.Prices, sum.Images, sum.Links)
	}

	if extractOutput != "" {
		return saveResults(os.Stderr, "", results, extractOutput)
	}
	return nil
}

func containerQuery(q string, fallback bool) string {
	if fallback || q == "" {
		return "fallback scan"
	}
	return q
}
