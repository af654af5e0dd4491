// Package profile holds the declarative per-site configuration that drives
// the extraction engine.
package profile

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// Defaults applied to profiles that leave a field unset
const (
	DefaultCurrency        = "₹"
	DefaultQuerySeparator  = "+"
	DefaultTitleMin        = 3
	DefaultTitleMax        = 200
	DefaultTextMin         = 10
	DefaultTextMax         = 2000
	DefaultImageKeyPrefix  = 50
	DefaultPriceMin        = 10
	DefaultPriceMax        = 100000
	DefaultScrollSteps     = 10
	DefaultStabilityWindow = 2
	DefaultProductPattern  = "[class*='product'], [class*='Product'], [data-product-id], [data-id]"
	MaxPages               = 2
)

// DefaultBlacklist lists title fragments that mark account/marketing widgets
var DefaultBlacklist = []string{
	"log in", "login", "sign in", "sign up", "register", "create account",
	"forgot password", "newsletter", "subscribe", "cart", "wishlist",
}

// DefaultProductLinks lists path fragments that identify product detail URLs
var DefaultProductLinks = []string{"/product", "/p/", "/dp/", "/products/", "/buy"}

// ErrInvalidProfile is returned when a profile fails validation
var ErrInvalidProfile = errors.New("invalid site profile")

// CandidateQuery is one structural query tried for a field.
// An empty Selector addresses the container node itself; an empty Attr reads
// the collapsed text content.
type CandidateQuery struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`
	Rank     int    `yaml:"rank,omitempty"`
}

// UnmarshalYAML accepts either a bare selector string or a mapping.
func (q *CandidateQuery) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		q.Selector = node.Value
		return nil
	}
	type plain CandidateQuery
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*q = CandidateQuery(p)
	return nil
}

// String renders the query for log events
func (q CandidateQuery) String() string {
	sel := q.Selector
	if sel == "" {
		sel = ":self"
	}
	if q.Attr != "" {
		return sel + "@" + q.Attr
	}
	return sel
}

// Range is an inclusive numeric interval
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies inside the interval
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IntRange is an inclusive length interval
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether n lies inside the interval
func (r IntRange) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// EmbeddedFields lists the key paths tried, in order, for each record field
type EmbeddedFields struct {
	Title  []string `yaml:"title"`
	Price  []string `yaml:"price"`
	Image  []string `yaml:"image"`
	Link   []string `yaml:"link"`
	Rating []string `yaml:"rating"`
}

// EmbeddedSource describes product data serialized into the page itself.
//
// Kind is one of:
//   - "next_data": the JSON body of script#__NEXT_DATA__
//   - "ld_json": every script[type="application/ld+json"] block
//   - "script_global": inline scripts assigning window.<Global>
type EmbeddedSource struct {
	Kind   string         `yaml:"kind"`
	Global string         `yaml:"global,omitempty"`
	Paths  []string       `yaml:"paths"`
	Fields EmbeddedFields `yaml:"fields"`
}

// Embedded source kinds
const (
	EmbeddedNextData     = "next_data"
	EmbeddedLDJSON       = "ld_json"
	EmbeddedScriptGlobal = "script_global"
)

// SiteProfile is the immutable configuration for one supported site.
type SiteProfile struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	SearchURL      string `yaml:"search_url"`
	QuerySeparator string `yaml:"query_separator"`
	PageParam      string `yaml:"page_param"`
	MaxPages       int    `yaml:"max_pages"`

	ReadySelector   string `yaml:"ready_selector"`
	ProductPattern  string `yaml:"product_pattern"`
	ScrollSteps     int    `yaml:"scroll_steps"`
	StabilityWindow int    `yaml:"stability_window"`

	Containers []CandidateQuery `yaml:"containers"`
	Title      []CandidateQuery `yaml:"title"`
	Price      []CandidateQuery `yaml:"price"`
	Image      []CandidateQuery `yaml:"image"`
	Link       []CandidateQuery `yaml:"link"`
	Rating     []CandidateQuery `yaml:"rating"`

	Currency       string   `yaml:"currency"`
	PriceBounds    Range    `yaml:"price_bounds"`
	TitleLength    IntRange `yaml:"title_length"`
	TextLength     IntRange `yaml:"text_length"`
	Blacklist      []string `yaml:"blacklist"`
	ProductLinks   []string `yaml:"product_links"`
	ImageKeyPrefix int      `yaml:"image_key_prefix"`

	Embedded []EmbeddedSource `yaml:"embedded"`
}

// applyDefaults fills unset fields and orders every candidate list by rank.
func (p *SiteProfile) applyDefaults() {
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.QuerySeparator == "" {
		p.QuerySeparator = DefaultQuerySeparator
	}
	if p.MaxPages <= 0 {
		p.MaxPages = 1
	}
	if p.ProductPattern == "" {
		p.ProductPattern = DefaultProductPattern
	}
	if p.ScrollSteps <= 0 {
		p.ScrollSteps = DefaultScrollSteps
	}
	if p.StabilityWindow <= 0 {
		p.StabilityWindow = DefaultStabilityWindow
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.PriceBounds.Min == 0 && p.PriceBounds.Max == 0 {
		p.PriceBounds = Range{Min: DefaultPriceMin, Max: DefaultPriceMax}
	}
	if p.TitleLength.Min <= 0 {
		p.TitleLength.Min = DefaultTitleMin
	}
	if p.TitleLength.Max <= 0 {
		p.TitleLength.Max = DefaultTitleMax
	}
	if p.TextLength.Min <= 0 {
		p.TextLength.Min = DefaultTextMin
	}
	if p.TextLength.Max <= 0 {
		p.TextLength.Max = DefaultTextMax
	}
	if p.Blacklist == nil {
		p.Blacklist = DefaultBlacklist
	}
	if p.ProductLinks == nil {
		p.ProductLinks = DefaultProductLinks
	}
	if p.ImageKeyPrefix <= 0 {
		p.ImageKeyPrefix = DefaultImageKeyPrefix
	}

	for _, list := range [][]CandidateQuery{p.Containers, p.Title, p.Price, p.Image, p.Link, p.Rating} {
		rankCandidates(list)
	}
}

// rankCandidates gives unranked entries their list position and sorts stably.
func rankCandidates(list []CandidateQuery) {
	for i := range list {
		if list[i].Rank == 0 {
			list[i].Rank = i + 1
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Rank < list[j].Rank })
}

// Validate checks the profile and compiles every selector it carries.
func (p *SiteProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	if !strings.Contains(p.SearchURL, "{query}") {
		return fmt.Errorf("%w: %s: search_url must contain {query}", ErrInvalidProfile, p.ID)
	}
	u, err := url.Parse(strings.ReplaceAll(p.SearchURL, "{query}", "q"))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %s: search_url is not an absolute http(s) URL", ErrInvalidProfile, p.ID)
	}
	if p.MaxPages > MaxPages {
		return fmt.Errorf("%w: %s: max_pages must be at most %d", ErrInvalidProfile, p.ID, MaxPages)
	}
	if p.MaxPages > 1 && p.PageParam == "" {
		return fmt.Errorf("%w: %s: max_pages > 1 requires page_param", ErrInvalidProfile, p.ID)
	}
	if p.PriceBounds.Min < 0 || p.PriceBounds.Max <= p.PriceBounds.Min {
		return fmt.Errorf("%w: %s: price_bounds must satisfy 0 <= min < max", ErrInvalidProfile, p.ID)
	}
	if p.TitleLength.Max < p.TitleLength.Min || p.TextLength.Max < p.TextLength.Min {
		return fmt.Errorf("%w: %s: length bounds inverted", ErrInvalidProfile, p.ID)
	}

	selectors := []string{p.ProductPattern}
	if p.ReadySelector != "" {
		selectors = append(selectors, p.ReadySelector)
	}
	for field, list := range p.fieldCandidates() {
		for _, q := range list {
			if q.Selector == "" {
				if field == "containers" {
					return fmt.Errorf("%w: %s: container candidates need a selector", ErrInvalidProfile, p.ID)
				}
				continue
			}
			selectors = append(selectors, q.Selector)
		}
	}
	for _, s := range selectors {
		if _, err := cascadia.ParseGroup(s); err != nil {
			return fmt.Errorf("%w: %s: selector %q: %v", ErrInvalidProfile, p.ID, s, err)
		}
	}

	for i, src := range p.Embedded {
		switch src.Kind {
		case EmbeddedNextData, EmbeddedLDJSON:
		case EmbeddedScriptGlobal:
			if src.Global == "" {
				return fmt.Errorf("%w: %s: embedded[%d] script_global needs global", ErrInvalidProfile, p.ID, i)
			}
		default:
			return fmt.Errorf("%w: %s: embedded[%d] unknown kind %q", ErrInvalidProfile, p.ID, i, src.Kind)
		}
	}
	return nil
}

func (p *SiteProfile) fieldCandidates() map[string][]CandidateQuery {
	return map[string][]CandidateQuery{
		"containers": p.Containers,
		"title":      p.Title,
		"price":      p.Price,
		"image":      p.Image,
		"link":       p.Link,
		"rating":     p.Rating,
	}
}

// SearchURLFor renders the search URL for query on the given 1-based page.
func (p *SiteProfile) SearchURLFor(query string, page int) (string, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return "", fmt.Errorf("empty query")
	}
	if page < 1 || page > p.MaxPages {
		return "", fmt.Errorf("page %d out of range for %s (max %d)", page, p.ID, p.MaxPages)
	}
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	target := strings.ReplaceAll(p.SearchURL, "{query}", strings.Join(words, p.QuerySeparator))
	if page > 1 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target = fmt.Sprintf("%s%s%s=%d", target, sep, p.PageParam, page)
	}
	return target, nil
}

// Origin returns scheme://host of the search URL
func (p *SiteProfile) Origin() string {
	u, err := url.Parse(strings.ReplaceAll(p.SearchURL, "{query}", "q"))
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
