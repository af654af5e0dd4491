package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/law-makers/pricecompare/internal/profile"
)

const testProfileYAML = `
sites:
  - id: teststore
    search_url: https://shop.example/search?q={query}
    price_bounds: {min: 10, max: 100000}
    containers: [".nav-item", ".card"]
    title: ["h3.name", "h3"]
    price: [".price"]
    image:
      - {selector: "img", attr: src}
    link:
      - {selector: "a.pdp", attr: href}
    rating: [".stars"]
`

const testPageURL = "https://shop.example/search?q=shirt"

func newTestProfile(t *testing.T) *profile.SiteProfile {
	t.Helper()
	reg, err := profile.Parse([]byte(testProfileYAML))
	if err != nil {
		t.Fatalf("test profile failed to load: %v", err)
	}
	p, err := reg.Lookup("teststore")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestContext(t *testing.T, body string) *ExtractionContext {
	t.Helper()
	page := "<!DOCTYPE html><html><head><title>Search</title></head><body>" + body + "</body></html>"
	ec, err := NewExtractionContext(page, testPageURL, newTestProfile(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to build extraction context: %v", err)
	}
	return ec
}

// card renders a product tile in the test store's markup
func card(title, price, image, link string) string {
	var b strings.Builder
	b.WriteString(`<div class="card">`)
	fmt.Fprintf(&b, `<a class="pdp" href="%s"><img src="%s"></a>`, link, image)
	fmt.Fprintf(&b, `<h3 class="name">%s</h3>`, title)
	if price != "" {
		fmt.Fprintf(&b, `<span class="price">%s</span>`, price)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// navMenu renders n category links without images
func navMenu(n int) string {
	var b strings.Builder
	b.WriteString(`<ul class="nav">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<li class="nav-item"><a href="/c/%d">Category number %d</a></li>`, i, i)
	}
	b.WriteString(`</ul>`)
	return b.String()
}
