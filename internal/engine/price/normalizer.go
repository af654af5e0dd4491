// Package price parses currency text into canonical "{symbol}{digits}" strings.
package price

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/law-makers/pricecompare/internal/profile"
	"github.com/law-makers/pricecompare/pkg/models"
)

const number = `(\d[\d,]*(?:\.\d+)?)`

// pattern is one currency-aware expression. sym and num index the submatches.
type pattern struct {
	re       *regexp.Regexp
	sym, num int
	strict   bool // carries an explicit currency marker
	percent  bool // skip numbers followed by %, they are discounts
}

func (pt pattern) find(text string) []string {
	if !pt.percent {
		return pt.re.FindStringSubmatch(text)
	}
	for _, loc := range pt.re.FindAllStringSubmatchIndex(text, -1) {
		if strings.HasPrefix(strings.TrimLeft(text[loc[1]:], " "), "%") {
			continue
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		return m
	}
	return nil
}

// Ordered: symbol before the number, symbol after, textual code, bare digits.
var patterns = []pattern{
	{re: regexp.MustCompile(`(?i)(₹|\brs\.?|\$|€|£)\s*` + number), sym: 1, num: 2, strict: true},
	{re: regexp.MustCompile(`(?i)` + number + `\s*(₹|rs\b\.?|\$|€|£)`), sym: 2, num: 1, strict: true},
	{re: regexp.MustCompile(`(?i)\b(inr|usd|eur|gbp|mrp)\b\s*:?\s*` + number), sym: 1, num: 2, strict: true},
	{re: regexp.MustCompile(`(?i)` + number + `\s*\b(inr|usd|eur|gbp)\b`), sym: 2, num: 1, strict: true},
	{re: regexp.MustCompile(`\b` + number), sym: -1, num: 1, percent: true},
}

var symbols = map[string]string{
	"₹":   "₹",
	"rs":  "₹",
	"rs.": "₹",
	"inr": "₹",
	"$":   "$",
	"usd": "$",
	"€":   "€",
	"eur": "€",
	"£":   "£",
	"gbp": "£",
}

// Price is a parsed amount with its currency symbol
type Price struct {
	Value  float64
	Symbol string
}

// String renders the canonical form rounded to two places. Whole amounts
// drop the decimal part.
func (p Price) String() string {
	v := math.Round(p.Value*100) / 100
	if v == math.Trunc(v) {
		return p.Symbol + strconv.FormatInt(int64(v), 10)
	}
	return p.Symbol + strconv.FormatFloat(v, 'f', 2, 64)
}

// Normalizer parses prices for one site
type Normalizer struct {
	bounds   profile.Range
	currency string
}

// New creates a Normalizer accepting amounts within bounds. currency is the
// symbol used when the text carries none.
func New(bounds profile.Range, currency string) *Normalizer {
	if currency == "" {
		currency = profile.DefaultCurrency
	}
	return &Normalizer{bounds: bounds, currency: currency}
}

// ForProfile creates a Normalizer from a site profile
func ForProfile(p *profile.SiteProfile) *Normalizer {
	return New(p.PriceBounds, p.Currency)
}

// Normalize returns the canonical price or models.NoPrice
func (n *Normalizer) Normalize(raw string) string {
	if p, ok := n.parse(raw, false); ok {
		return p.String()
	}
	return models.NoPrice
}

// Find is Normalize restricted to text that names a currency. It is meant for
// scanning arbitrary text where bare numbers are rarely prices.
func (n *Normalizer) Find(raw string) (string, bool) {
	p, ok := n.parse(raw, true)
	if !ok {
		return "", false
	}
	return p.String(), true
}

// Parse returns the structured price
func (n *Normalizer) Parse(raw string) (Price, bool) {
	return n.parse(raw, false)
}

func (n *Normalizer) parse(raw string, strict bool) (Price, bool) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return Price{}, false
	}

	for _, pt := range patterns {
		if strict && !pt.strict {
			continue
		}
		m := pt.find(text)
		if m == nil {
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(m[pt.num], ",", ""), 64)
		if err != nil || !n.bounds.Contains(value) {
			return Price{}, false
		}

		symbol := n.currency
		if pt.sym > 0 {
			if s, ok := symbols[strings.ToLower(m[pt.sym])]; ok {
				symbol = s
			}
		}
		return Price{Value: value, Symbol: symbol}, true
	}
	return Price{}, false
}
