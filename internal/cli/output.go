package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/law-makers/pricecompare/internal/export"
	"github.com/law-makers/pricecompare/internal/ui"
	"github.com/law-makers/pricecompare/pkg/models"
)

const (
	titleWidth = 48
	priceWidth = 10
	linkWidth  = 56
)

// printRecords renders up to limit records of one site as an aligned table.
// limit <= 0 prints every record.
func printRecords(w io.Writer, site string, records []models.ProductRecord, limit int) {
	fmt.Fprintf(w, "\n%s %s\n", ui.Bold(ui.ColorCyan+site+ui.ColorReset), ui.Dim(fmt.Sprintf("(%d products)", len(records))))
	if len(records) == 0 {
		fmt.Fprintln(w, "  "+ui.Info("No products found."))
		return
	}

	fmt.Fprintf(w, "  %s  %s  %s\n",
		ui.Bold(ui.Pad("Title", titleWidth)),
		ui.Bold(ui.Pad("Price", priceWidth)),
		ui.Bold("Link"))
	for i, r := range records {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "  %s\n", ui.Dim(fmt.Sprintf("... %d more", len(records)-limit)))
			break
		}
		price := ui.Pad(r.Price, priceWidth)
		if r.HasPrice() {
			price = ui.Success(price)
		} else {
			price = ui.Dim(price)
		}
		fmt.Fprintf(w, "  %s  %s  %s\n",
			ui.Pad(r.Title, titleWidth),
			price,
			ui.Dim(ui.Truncate(r.Link, linkWidth)))
	}
}

// printSummary reports per-site outcomes after a search
func printSummary(w io.Writer, results []models.SiteResult) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Summary:"))
	total := 0
	for _, r := range results {
		total += len(r.Records)
		if r.Err != nil {
			fmt.Fprintf(w, "  %s %s %s\n", ui.Error("✗"), ui.Pad(r.Site, 12), ui.Error(r.ErrorMessage()))
			continue
		}
		fmt.Fprintf(w, "  %s %s %d products, %d page(s), %s\n",
			ui.Success("✓"), ui.Pad(r.Site, 12), len(r.Records), r.Pages, r.Duration.Round(100*time.Millisecond))
	}
	fmt.Fprintf(w, "  %s %d\n", ui.ColorBold+"Total:"+ui.ColorReset, total)
}

// writeJSON prints the export document to stdout
func writeJSON(query string, results []models.SiteResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(export.NewDocument(query, results))
}

// saveResults writes the export file and reports where it went
func saveResults(w io.Writer, query string, results []models.SiteResult, path string) error {
	if err := export.Save(query, results, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	format := "CSV"
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		format = "JSON"
	}
	fmt.Fprintf(w, "\n%s %s\n", ui.Success("✓ Saved "+format+" to"), path)
	return nil
}
