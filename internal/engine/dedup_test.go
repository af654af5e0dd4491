package engine

import (
	"testing"

	"github.com/law-makers/pricecompare/pkg/models"
)

func record(title, price, image, link string) models.ProductRecord {
	return models.ProductRecord{Title: title, Price: price, Image: image, Link: link, Source: "teststore"}
}

func TestValidate(t *testing.T) {
	p := newTestProfile(t)
	tests := []struct {
		name string
		r    models.ProductRecord
		want bool
	}{
		{"complete", record("Slim Fit Chinos", "₹1299", "https://cdn.shop.example/a.jpg", "https://shop.example/product/a"), true},
		{"no price with product link", record("Slim Fit Chinos", models.NoPrice, models.NoImage, "https://shop.example/product/a"), true},
		{"no price without product link", record("Slim Fit Chinos", models.NoPrice, models.NoImage, "https://shop.example/help"), false},
		{"no title", record(models.NoTitle, "₹1299", models.NoImage, "https://shop.example/product/a"), false},
		{"marketing widget with price", record("Sign up for 10% off", "₹10", models.NoImage, "https://shop.example/product/promo"), false},
		{"cartoon is not cart", record("Cartoon Print Tee", "₹499", models.NoImage, models.NoLink), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Validate(tt.r, p)
			if ok != tt.want {
				t.Errorf("Validate() = %v (%s), want %v", ok, reason, tt.want)
			}
			if !ok && reason == "" {
				t.Error("rejection should carry a reason")
			}
		})
	}
}

func TestKey_ImagePrefix(t *testing.T) {
	base := "https://cdn.shop.example/images/catalog/2024/chinos"
	a := record("Slim Fit Chinos", "₹1299", base+"-front.jpg?w=400", "https://shop.example/product/a")
	b := record("Slim Fit Chinos", "₹1299", base+"-front.jpg?w=800", "https://shop.example/product/a?ref=2")

	if Key(a, 50) != Key(b, 50) {
		t.Error("records differing only after the image prefix should share a key")
	}
	if Key(a, 200) == Key(b, 200) {
		t.Error("a longer prefix should tell them apart")
	}

	c := record("Slim Fit Chinos", "₹1399", base+"-front.jpg?w=400", "https://shop.example/product/a")
	if Key(a, 50) == Key(c, 50) {
		t.Error("different prices should not share a key")
	}
}

func TestDeduplicator_Offer(t *testing.T) {
	d := NewDeduplicator(newTestProfile(t))
	a := record("Slim Fit Chinos", "₹1299", "https://cdn.shop.example/a.jpg", "https://shop.example/product/a")

	if v, _ := d.Offer(a); v != Accepted {
		t.Fatalf("first offer: got %s", v)
	}
	if v, _ := d.Offer(a); v != Duplicate {
		t.Errorf("second offer: got %s, want duplicate", v)
	}
	if got := len(d.Records()); got != 1 {
		t.Errorf("expected 1 record, got %d", got)
	}
	if d.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", d.Duplicates)
	}
}

func TestDeduplicator_RejectedDoesNotBlockKey(t *testing.T) {
	d := NewDeduplicator(newTestProfile(t))
	bad := record("Relaxed Linen Shirt", models.NoPrice, "https://cdn.shop.example/b.jpg", models.NoLink)
	good := record("Relaxed Linen Shirt", models.NoPrice, "https://cdn.shop.example/b.jpg", "https://shop.example/product/b")

	if v, _ := d.Offer(bad); v != Rejected {
		t.Fatalf("expected rejection, got %s", v)
	}
	if v, reason := d.Offer(good); v != Accepted {
		t.Fatalf("valid record with the same key should pass, got %s (%s)", v, reason)
	}
	if d.Rejected != 1 || len(d.Records()) != 1 {
		t.Errorf("Rejected = %d, records = %d", d.Rejected, len(d.Records()))
	}
}

func TestDedupe_KeepsFirstInOrder(t *testing.T) {
	p := newTestProfile(t)
	in := []models.ProductRecord{
		record("Denim Trucker Jacket", "₹2499", models.NoImage, "https://shop.example/product/c"),
		record("Slim Fit Chinos", "₹1299", models.NoImage, "https://shop.example/product/a"),
		record("Denim Trucker Jacket", "₹2499", models.NoImage, "https://shop.example/product/c?page=2"),
	}
	out := Dedupe(p, in)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].Link != "https://shop.example/product/c" {
		t.Errorf("first occurrence should win, got %s", out[0].Link)
	}
}
