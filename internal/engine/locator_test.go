package engine

import (
	"fmt"
	"strings"
	"testing"
)

func TestLocateContainers_PlausibleCountBeatsRawCount(t *testing.T) {
	var grid strings.Builder
	for i := 0; i < 8; i++ {
		grid.WriteString(card(
			fmt.Sprintf("Cotton Crew Tee %d", i),
			"₹499",
			fmt.Sprintf("https://cdn.shop.example/images/%d.jpg", i),
			fmt.Sprintf("/product/%d", i),
		))
	}
	ec := newTestContext(t, navMenu(50)+grid.String())

	got := LocateContainers(ec)

	if got.Query != ".card" {
		t.Errorf("expected .card to win, got %q", got.Query)
	}
	if len(got.Nodes) != 8 {
		t.Errorf("expected 8 containers, got %d", len(got.Nodes))
	}
	if got.Fallback {
		t.Error("fallback should not run when a candidate is plausible")
	}
}

func TestLocateContainers_TieKeepsBetterRank(t *testing.T) {
	ec := newTestContext(t, card("Cotton Crew Tee", "₹499", "https://cdn.shop.example/images/1.jpg", "/product/1"))
	ec.Profile.Containers[0].Selector = "div.card"

	got := LocateContainers(ec)
	if got.Query != "div.card" {
		t.Errorf("tie should go to the first-ranked query, got %q", got.Query)
	}
}

func TestLocateContainers_FallbackScanLiftsWrappers(t *testing.T) {
	tile := `<div class="w"><article><a href="/product/%d"><img src="https://cdn.shop.example/images/%d.jpg"></a><p>Blue Denim Jacket %d ₹1,999</p></article></div>`
	var b strings.Builder
	b.WriteString(`<section id="grid">`)
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, tile, i, i, i)
	}
	b.WriteString(`</section>`)
	ec := newTestContext(t, navMenu(5)+b.String())

	got := LocateContainers(ec)

	if !got.Fallback {
		t.Fatal("expected fallback scan")
	}
	if len(got.Nodes) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(got.Nodes))
	}
	for i, n := range got.Nodes {
		if cls, _ := attr(n, "class"); cls != "w" {
			t.Errorf("card %d: expected outermost single-card wrapper div.w, got <%s class=%q>", i, n.Data, cls)
		}
	}
}

func TestLocateContainers_TextBounds(t *testing.T) {
	long := strings.Repeat("word ", 600)
	ec := newTestContext(t, card(long, "₹499", "https://cdn.shop.example/images/1.jpg", "/product/1"))

	got := LocateContainers(ec)
	if len(got.Nodes) != 0 {
		t.Errorf("container with %d chars of text should be implausible, got %d nodes", len(long), len(got.Nodes))
	}
}

func TestLocateContainers_Empty(t *testing.T) {
	ec := newTestContext(t, `<p>No results found for your search.</p>`)
	got := LocateContainers(ec)
	if len(got.Nodes) != 0 {
		t.Errorf("expected no containers, got %d", len(got.Nodes))
	}
}
