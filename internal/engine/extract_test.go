package engine

import (
	"testing"

	"github.com/law-makers/pricecompare/pkg/models"
)

// fiveCards holds two identical tiles, one without a price, and a login widget
func fiveCards() string {
	return card("Slim Fit Chinos", "₹1,299", "https://cdn.shop.example/images/a.jpg", "/product/a") +
		card("Slim Fit Chinos", "₹1,299", "https://cdn.shop.example/images/a.jpg", "/product/a") +
		card("Relaxed Linen Shirt", "", "https://cdn.shop.example/images/b.jpg", "/product/b") +
		card("Log in to unlock member prices", "", "https://cdn.shop.example/images/lock.jpg", "/account") +
		card("Denim Trucker Jacket", "₹2,499", "https://cdn.shop.example/images/c.jpg", "/product/c")
}

func TestExtract_FiveContainers(t *testing.T) {
	ec := newTestContext(t, navMenu(12)+fiveCards())

	records, sum := ExtractWithSummary(ec)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}
	wantTitles := []string{"Slim Fit Chinos", "Relaxed Linen Shirt", "Denim Trucker Jacket"}
	for i, r := range records {
		if r.Title != wantTitles[i] {
			t.Errorf("record %d: title %q, want %q", i, r.Title, wantTitles[i])
		}
		if r.Source != "teststore" {
			t.Errorf("record %d: source %q", i, r.Source)
		}
	}
	if records[1].Price != models.NoPrice {
		t.Errorf("unpriced record should carry the sentinel, got %q", records[1].Price)
	}
	if records[1].Link != "https://shop.example/product/b" {
		t.Errorf("link = %q", records[1].Link)
	}

	if sum.Query != ".card" || sum.Containers != 5 {
		t.Errorf("summary query=%q containers=%d", sum.Query, sum.Containers)
	}
	if sum.Duplicates != 1 || sum.Rejected != 1 {
		t.Errorf("summary duplicates=%d rejected=%d, want 1 and 1", sum.Duplicates, sum.Rejected)
	}
	if sum.Prices != 2 || sum.Images != 3 || sum.Links != 3 {
		t.Errorf("summary prices=%d images=%d links=%d", sum.Prices, sum.Images, sum.Links)
	}
}

func TestExtract_SeedsOfferedFirst(t *testing.T) {
	ec := newTestContext(t, fiveCards())
	seed := models.ProductRecord{
		Title:  "Slim Fit Chinos",
		Price:  "₹1299",
		Image:  "https://cdn.shop.example/images/a.jpg",
		Link:   "https://shop.example/product/a?src=state",
		Rating: "4.1",
		Source: "embedded",
	}

	records, sum := ExtractWithSummary(ec, seed)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Link != seed.Link || records[0].Rating != "4.1" {
		t.Errorf("seed should win over the DOM copy, got %+v", records[0])
	}
	if records[0].Source != "teststore" {
		t.Errorf("source should be stamped with the site id, got %q", records[0].Source)
	}
	if sum.Seeds != 1 || sum.Duplicates != 2 {
		t.Errorf("seeds=%d duplicates=%d, want 1 and 2", sum.Seeds, sum.Duplicates)
	}
}

func TestExtract_EmptyPage(t *testing.T) {
	ec := newTestContext(t, `<div class="empty">We couldn't find anything for "zzzz".</div>`)
	if got := Extract(ec); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestExtract_Idempotent(t *testing.T) {
	ec := newTestContext(t, fiveCards())
	first := Extract(ec)
	second := Extract(ec)
	if len(first) != len(second) {
		t.Fatalf("runs disagree: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d differs between runs", i)
		}
	}
}
