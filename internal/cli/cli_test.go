package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/law-makers/pricecompare/pkg/models"
)

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\n- keep this bullet\nfive six", 9)
	want := "one two\nthree\nfour\n\n- keep this bullet\nfive six"
	if got != want {
		t.Errorf("wrapText:\n%q\nwant\n%q", got, want)
	}
}

func TestPrintRecords_Limit(t *testing.T) {
	records := []models.ProductRecord{
		{Title: "Oxford Shirt", Price: "₹999", Link: "https://alpha.example/p/1"},
		{Title: "Linen Shirt", Price: models.NoPrice, Link: "https://alpha.example/p/2"},
		{Title: "Denim Shirt", Price: "₹1499", Link: "https://alpha.example/p/3"},
	}
	var buf bytes.Buffer
	printRecords(&buf, "alpha", records, 2)

	out := buf.String()
	if !strings.Contains(out, "Oxford Shirt") || !strings.Contains(out, "Linen Shirt") {
		t.Errorf("first rows missing:\n%s", out)
	}
	if strings.Contains(out, "Denim Shirt") {
		t.Errorf("row past the limit printed:\n%s", out)
	}
	if !strings.Contains(out, "... 1 more") {
		t.Errorf("expected a remainder note:\n%s", out)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, []models.SiteResult{
		{Site: "alpha", Records: make([]models.ProductRecord, 3), Pages: 1},
		{Site: "beta", Err: errors.New("NAVIGATION_FAILURE: render failed")},
	})
	out := buf.String()
	if !strings.Contains(out, "NAVIGATION_FAILURE") || !strings.Contains(out, "Total:") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"search", "extract", "sites"} {
		if c, _, err := rootCmd.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
