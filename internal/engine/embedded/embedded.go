// Package embedded reads product listings that sites serialize into the page
// itself: Next.js page props, JSON-LD item lists and inline state globals.
// The records it builds are offered to the aggregator before DOM containers.
package embedded

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/pricecompare/internal/engine"
	"github.com/law-makers/pricecompare/internal/profile"
	"github.com/law-makers/pricecompare/pkg/models"
)

// maxItems caps the records taken from one source
const maxItems = 500

// Extract returns the records found in every embedded source of the page's
// profile, in source order. Sources that are absent or malformed yield
// nothing; they are a bonus, never a requirement.
func Extract(ec *engine.ExtractionContext) []models.ProductRecord {
	var out []models.ProductRecord
	for _, src := range ec.Profile.Embedded {
		roots := roots(ec, src)
		items := collect(roots, src.Paths)

		n := 0
		for _, item := range items {
			rating := firstString(item, src.Fields.Rating)
			if rating == "" && len(src.Fields.Rating) > 0 {
				rating = models.NoRating
			}
			r := ec.FromValues(
				firstString(item, src.Fields.Title),
				firstString(item, src.Fields.Price),
				firstString(item, src.Fields.Image),
				firstString(item, src.Fields.Link),
				rating,
			)
			// breadcrumbs and navigation entries carry neither
			if !r.HasTitle() || (!r.HasPrice() && !r.HasLink()) {
				continue
			}
			out = append(out, r)
			if n++; n >= maxItems {
				break
			}
		}

		ec.Logger.Debug().
			Str("kind", src.Kind).
			Int("roots", len(roots)).
			Int("items", len(items)).
			Int("records", n).
			Msg("Embedded source read")
	}
	return out
}

// roots returns the decoded top-level values of one source
func roots(ec *engine.ExtractionContext, src profile.EmbeddedSource) []any {
	switch src.Kind {
	case profile.EmbeddedNextData:
		text := ec.Doc.Find("script#__NEXT_DATA__").First().Text()
		if v, ok := decodeJSON(text); ok {
			return []any{v}
		}
	case profile.EmbeddedLDJSON:
		var out []any
		ec.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
			if v, ok := decodeJSON(s.Text()); ok {
				out = append(out, flattenLD(v)...)
			}
		})
		return out
	case profile.EmbeddedScriptGlobal:
		if v := runGlobal(ec, src.Global); v != nil {
			return []any{v}
		}
	}
	return nil
}

func decodeJSON(text string) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	return v, true
}

// flattenLD expands top-level arrays and @graph containers into nodes
func flattenLD(v any) []any {
	switch t := v.(type) {
	case []any:
		var out []any
		for _, e := range t {
			out = append(out, flattenLD(e)...)
		}
		return out
	case map[string]any:
		if g, ok := t["@graph"].([]any); ok {
			return flattenLD(g)
		}
		return []any{t}
	}
	return nil
}

// collect resolves every path against every root and returns the product
// items found, in order. A path may end at a list or at a keyed map of items.
func collect(roots []any, paths []string) []any {
	var items []any
	for _, root := range roots {
		for _, p := range paths {
			switch v := lookup(root, p).(type) {
			case []any:
				items = append(items, v...)
			case map[string]any:
				items = append(items, mapValues(v)...)
			}
		}
	}
	return items
}

// lookup walks a dot path; numeric segments index lists
func lookup(v any, path string) any {
	if path == "" {
		return v
	}
	for _, seg := range strings.Split(path, ".") {
		switch t := v.(type) {
		case map[string]any:
			v = t[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			v = t[i]
		default:
			return nil
		}
		if v == nil {
			return nil
		}
	}
	return v
}

func mapValues(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		if _, ok := m[k].(map[string]any); ok {
			out = append(out, m[k])
		}
	}
	return out
}

// firstString returns the first non-empty scalar found under any of keys
func firstString(item any, keys []string) string {
	for _, k := range keys {
		if s := scalar(lookup(item, k), 0); s != "" {
			return s
		}
	}
	return ""
}

// nestedKeys are read, in order, when a field holds an object, e.g.
// {"price": {"value": 1299, "formattedValue": "Rs.1,299"}}
var nestedKeys = []string{"value", "current", "amount", "formattedValue", "formatted", "display", "url", "src", "href"}

func scalar(v any, depth int) string {
	if depth > 3 {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case []any:
		for _, e := range t {
			if s := scalar(e, depth+1); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, k := range nestedKeys {
			if s := scalar(t[k], depth+1); s != "" {
				return s
			}
		}
	}
	return ""
}
