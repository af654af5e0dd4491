package profile

import (
	"errors"
	"testing"
)

func TestBuiltinProfilesValidate(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatalf("builtin profiles failed to load: %v", err)
	}

	ids := reg.IDs()
	if len(ids) < 10 {
		t.Fatalf("expected at least 10 builtin sites, got %d", len(ids))
	}

	for _, p := range reg.All() {
		if len(p.Containers) == 0 {
			t.Errorf("%s: no container candidates", p.ID)
		}
		if p.Currency != DefaultCurrency {
			t.Errorf("%s: expected default currency, got %q", p.ID, p.Currency)
		}
		if p.PriceBounds.Max <= p.PriceBounds.Min {
			t.Errorf("%s: bad price bounds %+v", p.ID, p.PriceBounds)
		}
	}
}

func TestPriceBoundsArePerProfile(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}
	souled, _ := reg.Lookup("souledstore")
	monte, _ := reg.Lookup("montecarlo")
	if souled.PriceBounds == monte.PriceBounds {
		t.Errorf("expected distinct bounds, both are %+v", souled.PriceBounds)
	}
}

func TestParse_ShorthandAndRanks(t *testing.T) {
	doc := []byte(`
sites:
  - id: Demo
    search_url: https://shop.example/search?q={query}
    containers: [".card", ".tile"]
    title:
      - {selector: "h3", rank: 2}
      - {selector: "h2", rank: 1}
      - ".name"
`)
	reg, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	p, err := reg.Lookup("demo")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if p.Containers[0].Selector != ".card" || p.Containers[0].Attr != "" {
		t.Errorf("shorthand not decoded: %+v", p.Containers[0])
	}
	// ".name" takes its list position (3) as rank.
	want := []string{"h2", "h3", ".name"}
	for i, q := range p.Title {
		if q.Selector != want[i] {
			t.Errorf("title[%d] = %q, want %q", i, q.Selector, want[i])
		}
	}
	if p.TitleLength.Min != DefaultTitleMin || p.ImageKeyPrefix != DefaultImageKeyPrefix {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no sites", `sites: []`},
		{"missing query placeholder", `
sites:
  - id: a
    search_url: https://a.example/search`},
		{"bad selector", `
sites:
  - id: a
    search_url: https://a.example/s?q={query}
    containers: ["div[[["]`},
		{"too many pages", `
sites:
  - id: a
    search_url: https://a.example/s?q={query}
    page_param: p
    max_pages: 5`},
		{"pages without param", `
sites:
  - id: a
    search_url: https://a.example/s?q={query}
    max_pages: 2`},
		{"unknown embedded kind", `
sites:
  - id: a
    search_url: https://a.example/s?q={query}
    embedded: [{kind: xml}]`},
		{"duplicate id", `
sites:
  - id: a
    search_url: https://a.example/s?q={query}
  - id: A
    search_url: https://a.example/s?q={query}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("expected ErrInvalidProfile, got %v", err)
			}
		})
	}
}

func TestSearchURLFor(t *testing.T) {
	p := &SiteProfile{
		ID:        "libas",
		SearchURL: "https://www.libas.in/search?q={query}",
		PageParam: "p",
		MaxPages:  2,
	}
	p.applyDefaults()

	tests := []struct {
		query string
		page  int
		want  string
	}{
		{"kurta set", 1, "https://www.libas.in/search?q=kurta+set"},
		{"  kurta   set ", 2, "https://www.libas.in/search?q=kurta+set&p=2"},
		{"a&b", 1, "https://www.libas.in/search?q=a%26b"},
	}
	for _, tt := range tests {
		got, err := p.SearchURLFor(tt.query, tt.page)
		if err != nil {
			t.Fatalf("SearchURLFor(%q, %d) failed: %v", tt.query, tt.page, err)
		}
		if got != tt.want {
			t.Errorf("SearchURLFor(%q, %d) = %q, want %q", tt.query, tt.page, got, tt.want)
		}
	}

	if _, err := p.SearchURLFor("kurta", 3); err == nil {
		t.Error("expected error for page beyond max")
	}
	if _, err := p.SearchURLFor("   ", 1); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchURLFor_PathSeparator(t *testing.T) {
	p := &SiteProfile{ID: "myntra", SearchURL: "https://www.myntra.com/{query}", QuerySeparator: "-"}
	p.applyDefaults()
	got, err := p.SearchURLFor("blue jeans", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://www.myntra.com/blue-jeans" {
		t.Errorf("got %q", got)
	}
	if p.Origin() != "https://www.myntra.com" {
		t.Errorf("origin = %q", p.Origin())
	}
}

func TestRegistrySelect(t *testing.T) {
	reg, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}

	got, err := reg.Select([]string{"amazon", "AMAZON", "flipkart"}, false)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected duplicates collapsed to 2, got %d", len(got))
	}

	if _, err := reg.Select([]string{"nope"}, false); !errors.Is(err, ErrUnknownSite) {
		t.Errorf("expected ErrUnknownSite, got %v", err)
	}

	all, _ := reg.Select(nil, true)
	if len(all) != len(reg.IDs()) {
		t.Errorf("all should return every site")
	}
}
