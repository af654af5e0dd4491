package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/pricecompare/pkg/models"
)

// Document is the JSON export layout
type Document struct {
	Query     string                 `json:"query"`
	Generated time.Time              `json:"generated"`
	Sites     []SiteSummary          `json:"sites"`
	Records   []models.ProductRecord `json:"records"`
}

// SiteSummary reports how one site fared in the run
type SiteSummary struct {
	Site    string `json:"site"`
	Records int    `json:"records"`
	Pages   int    `json:"pages"`
	Error   string `json:"error,omitempty"`
}

// NewDocument gathers the records of every site result, in site order
func NewDocument(query string, results []models.SiteResult) Document {
	doc := Document{Query: query, Generated: time.Now().UTC(), Records: []models.ProductRecord{}}
	for _, r := range results {
		doc.Sites = append(doc.Sites, SiteSummary{
			Site:    r.Site,
			Records: len(r.Records),
			Pages:   r.Pages,
			Error:   r.ErrorMessage(),
		})
		doc.Records = append(doc.Records, r.Records...)
	}
	return doc
}

// SaveJSON writes an indented JSON export of doc to filepath.
func SaveJSON(doc Document, path string) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// Save picks the format from the file extension: .json, otherwise CSV
func Save(query string, results []models.SiteResult, path string) error {
	doc := NewDocument(query, results)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return SaveJSON(doc, path)
	}
	return SaveCSV(doc.Records, path)
}
