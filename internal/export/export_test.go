package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/law-makers/pricecompare/pkg/models"
)

func sampleResults() []models.SiteResult {
	return []models.SiteResult{
		{
			Site:  "alpha",
			Query: "shirt",
			Pages: 2,
			Records: []models.ProductRecord{
				{Title: "Oxford Shirt, Slim", Price: "₹1299", Image: "https://cdn.example/1.jpg", Link: "https://alpha.example/p/1", Rating: "4.1", Source: "alpha"},
				{Title: "Linen Shirt", Price: models.NoPrice, Image: models.NoImage, Link: "https://alpha.example/p/2", Source: "alpha"},
			},
		},
		{Site: "beta", Query: "shirt", Err: errors.New("NAVIGATION_FAILURE: render failed")},
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := Save("shirt", sampleResults(), path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if got := rows[0]; len(got) != 6 || got[0] != "Title" || got[5] != "Source" {
		t.Errorf("unexpected header %v", got)
	}
	if rows[1][0] != "Oxford Shirt, Slim" {
		t.Errorf("commas must survive quoting, got %q", rows[1][0])
	}
	want := []string{"Linen Shirt", models.NoPrice, models.NoImage, "https://alpha.example/p/2", models.NoRating, "alpha"}
	for i, v := range want {
		if rows[2][i] != v {
			t.Errorf("column %s = %q, want %q", Header[i], rows[2][i], v)
		}
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.JSON")
	if err := Save("shirt", sampleResults(), path); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if doc.Query != "shirt" || len(doc.Records) != 2 || len(doc.Sites) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Sites[1].Error == "" || doc.Sites[0].Error != "" {
		t.Errorf("site errors not reported: %+v", doc.Sites)
	}
	if doc.Records[1].Price != models.NoPrice {
		t.Errorf("sentinel lost: %q", doc.Records[1].Price)
	}
}

func TestNewDocument_NoRecords(t *testing.T) {
	doc := NewDocument("shirt", nil)
	raw, _ := json.Marshal(doc)
	var back map[string]any
	json.Unmarshal(raw, &back)
	if _, ok := back["records"].([]any); !ok {
		t.Errorf("records should encode as an empty list, got %s", raw)
	}
}
