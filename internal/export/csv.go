// Package export writes a record set to disk.
package export

import (
	"encoding/csv"
	"os"

	"github.com/law-makers/pricecompare/pkg/models"
)

// Header is the column order of CSV exports
var Header = []string{"Title", "Price", "Image", "Link", "Rating", "Source"}

// SaveCSV writes records to a CSV file. Sentinel values are written as they
// are so a missing field stays distinguishable from an empty one.
func SaveCSV(records []models.ProductRecord, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		rating := r.Rating
		if rating == "" {
			rating = models.NoRating
		}
		if err := writer.Write([]string{r.Title, r.Price, r.Image, r.Link, rating, r.Source}); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
