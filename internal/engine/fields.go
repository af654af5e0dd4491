package engine

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/law-makers/pricecompare/internal/profile"
	"github.com/law-makers/pricecompare/pkg/models"
)

// candidateResult is the outcome of one CandidateQuery against one container
type candidateResult struct {
	query  profile.CandidateQuery
	value  string
	hit    bool
	reason string
}

// validator returns the accepted value, or a rejection reason
type validator func(raw string) (value string, reason string)

// cascade tries each candidate in order and returns the first that validates.
// Misses are logged and never fatal.
func (ec *ExtractionContext) cascade(item *goquery.Selection, field string, list []profile.CandidateQuery, accept validator) (string, bool) {
	for _, q := range list {
		res := evalCandidate(item, q, accept)
		if res.hit {
			return res.value, true
		}
		ec.Logger.Debug().
			Str("code", string(ErrCodeCandidateMiss)).
			Str("field", field).
			Str("query", q.String()).
			Str("reason", res.reason).
			Msg("Candidate miss")
	}
	return "", false
}

func evalCandidate(item *goquery.Selection, q profile.CandidateQuery, accept validator) candidateResult {
	res := candidateResult{query: q}

	target := item
	if q.Selector != "" {
		target = item.Find(q.Selector).First()
		if target.Length() == 0 {
			res.reason = "no match"
			return res
		}
	}

	var raw string
	if q.Attr == "" {
		raw = collapse(target.Text())
		if raw == "" {
			res.reason = "empty text"
			return res
		}
	} else {
		v, ok := target.Attr(q.Attr)
		if !ok {
			res.reason = "attribute absent"
			return res
		}
		raw = strings.TrimSpace(v)
		if q.Attr == "srcset" || q.Attr == "data-srcset" {
			raw = firstSrcset(raw)
		}
	}

	value, reason := accept(raw)
	if reason != "" {
		res.reason = reason
		return res
	}
	res.value, res.hit = value, true
	return res
}

// fieldMiss logs a field that fell through to its sentinel
func (ec *ExtractionContext) fieldMiss(field, sentinel string) string {
	ec.Logger.Debug().
		Str("code", string(ErrCodeFieldParse)).
		Str("field", field).
		Msg("Field resolved to sentinel")
	return sentinel
}

// Title

func (ec *ExtractionContext) validTitle(raw string) (string, string) {
	t := collapse(raw)
	n := utf8.RuneCountInString(t)
	switch {
	case n < ec.Profile.TitleLength.Min:
		return "", "too short"
	case n > ec.Profile.TitleLength.Max:
		return "", "too long"
	case IsBlacklisted(t, ec.Profile.Blacklist):
		return "", "blacklisted"
	}
	return t, ""
}

func (ec *ExtractionContext) extractTitle(item *goquery.Selection) string {
	if v, ok := ec.cascade(item, "title", ec.Profile.Title, ec.validTitle); ok {
		return v
	}

	var found string
	item.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		for _, raw := range []string{a.Text(), a.AttrOr("title", ""), a.AttrOr("aria-label", "")} {
			if v, reason := ec.validTitle(raw); reason == "" {
				found = v
				return false
			}
		}
		return true
	})
	if found == "" {
		if v, reason := ec.validTitle(item.Find("img[alt]").First().AttrOr("alt", "")); reason == "" {
			found = v
		}
	}
	if found != "" {
		ec.Logger.Debug().Str("field", "title").Msg("Title from link fallback")
		return found
	}
	return ec.fieldMiss("title", models.NoTitle)
}

// Price

func (ec *ExtractionContext) validPrice(raw string) (string, string) {
	if v := ec.prices.Normalize(raw); v != models.NoPrice {
		return v, ""
	}
	return "", "unparseable or out of range"
}

func (ec *ExtractionContext) extractPrice(item *goquery.Selection) string {
	if v, ok := ec.cascade(item, "price", ec.Profile.Price, ec.validPrice); ok {
		return v
	}

	node := item.Get(0)
	for _, t := range textNodes(node) {
		if v, ok := ec.prices.Find(t); ok {
			ec.Logger.Debug().Str("field", "price").Msg("Price from text scan")
			return v
		}
	}
	if v, ok := ec.prices.Find(nodeText(node)); ok {
		ec.Logger.Debug().Str("field", "price").Msg("Price from full text")
		return v
	}
	return ec.fieldMiss("price", models.NoPrice)
}

// Image

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".avif"}

// placeholderTerms are matched against the image file name
var placeholderTerms = []string{
	"placeholder", "spinner", "loader", "loading.", "transparent", "1x1",
	"pixel.", "no-image", "noimage", "default-image", "blank.", "logo.",
}

// deferredImageAttrs are read in order when an img tag is scanned directly
var deferredImageAttrs = []string{"src", "data-src", "data-original", "data-lazy-src", "data-lazy", "srcset", "data-srcset"}

func (ec *ExtractionContext) validImage(raw string) (string, string) {
	if raw == "" {
		return "", "empty"
	}
	abs := ec.resolve(raw)
	if abs == "" {
		return "", "not resolvable"
	}
	if isPlaceholder(abs) {
		return "", "placeholder"
	}
	if !looksLikeImage(abs) {
		return "", "not an image path"
	}
	return abs, ""
}

func isPlaceholder(abs string) bool {
	u, err := url.Parse(abs)
	if err != nil {
		return true
	}
	name := strings.ToLower(path.Base(u.Path))
	if strings.Contains(strings.ToLower(u.Path), "/placeholder") {
		return true
	}
	for _, term := range placeholderTerms {
		if strings.Contains(name, term) {
			return true
		}
	}
	return false
}

func looksLikeImage(abs string) bool {
	u, err := url.Parse(abs)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	if strings.HasSuffix(p, ".svg") || strings.HasSuffix(p, ".gif") {
		return false
	}
	for _, ext := range imageExtensions {
		if strings.Contains(p, ext) {
			return true
		}
	}
	full := strings.ToLower(u.Host + p)
	for _, hint := range []string{"image", "img", "media", "photo", "cdn", "assets"} {
		if strings.Contains(full, hint) {
			return true
		}
	}
	// format passed as a query parameter, e.g. ?fmt=webp
	q := strings.ToLower(u.RawQuery)
	return strings.Contains(q, "jpg") || strings.Contains(q, "jpeg") || strings.Contains(q, "webp") || strings.Contains(q, "png")
}

// firstSrcset returns the URL of the first srcset entry
func firstSrcset(srcset string) string {
	srcset = strings.TrimSpace(srcset)
	if srcset == "" {
		return ""
	}
	// entries are separated by a comma followed by whitespace; bare commas may
	// appear inside CDN transformation paths
	entry := srcset
	if i := strings.Index(srcset, ", "); i >= 0 {
		entry = srcset[:i]
	}
	if fields := strings.Fields(entry); len(fields) > 0 {
		return strings.TrimSuffix(fields[0], ",")
	}
	return ""
}

func (ec *ExtractionContext) extractImage(item *goquery.Selection) string {
	if v, ok := ec.cascade(item, "image", ec.Profile.Image, ec.validImage); ok {
		return v
	}

	var found string
	item.Find("img, picture source").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		for _, a := range deferredImageAttrs {
			raw, ok := img.Attr(a)
			if !ok {
				continue
			}
			if strings.Contains(a, "srcset") {
				raw = firstSrcset(raw)
			}
			if v, reason := ec.validImage(raw); reason == "" {
				found = v
				return false
			}
		}
		return true
	})
	if found != "" {
		ec.Logger.Debug().Str("field", "image").Msg("Image from deferred attributes")
		return found
	}
	return ec.fieldMiss("image", models.NoImage)
}

// Link

func (ec *ExtractionContext) validLink(raw string) (string, string) {
	if abs := ec.resolve(raw); abs != "" {
		return abs, ""
	}
	return "", "not an absolute http(s) URL"
}

func (ec *ExtractionContext) extractLink(item *goquery.Selection) string {
	if v, ok := ec.cascade(item, "link", ec.Profile.Link, ec.validLink); ok {
		return v
	}

	node := item.Get(0)
	if isLink(node) {
		href, _ := attr(node, "href")
		if v, reason := ec.validLink(href); reason == "" {
			return v
		}
	}

	// product-looking links first, then anything absolute
	var first string
	var product string
	item.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		v, reason := ec.validLink(a.AttrOr("href", ""))
		if reason != "" {
			return true
		}
		if first == "" {
			first = v
		}
		if ec.isProductLink(v) {
			product = v
			return false
		}
		return true
	})
	switch {
	case product != "":
		return product
	case first != "":
		return first
	}
	return ec.fieldMiss("link", models.NoLink)
}

func (ec *ExtractionContext) isProductLink(link string) bool {
	return IsProductLink(link, ec.Profile.ProductLinks)
}

// IsProductLink reports whether link contains one of the product path patterns
func IsProductLink(link string, patterns []string) bool {
	if link == "" || link == models.NoLink {
		return false
	}
	lower := strings.ToLower(link)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Rating

var ratingRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

func validRating(raw string) (string, string) {
	m := ratingRe.FindString(raw)
	if m == "" {
		return "", "no number"
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v <= 0 || v > 5 {
		return "", "outside 0-5"
	}
	return strconv.FormatFloat(v, 'f', -1, 64), ""
}

func (ec *ExtractionContext) extractRating(item *goquery.Selection) string {
	if len(ec.Profile.Rating) == 0 {
		return ""
	}
	if v, ok := ec.cascade(item, "rating", ec.Profile.Rating, validRating); ok {
		return v
	}
	if label, ok := item.Find("[aria-label*='out of 5']").First().Attr("aria-label"); ok {
		if v, reason := validRating(label); reason == "" {
			return v
		}
	}
	return ec.fieldMiss("rating", models.NoRating)
}

// inflections are the endings a blacklisted term may carry and still match
var inflections = []string{"s", "es", "d", "ed", "ing"}

// IsBlacklisted reports whether title contains any term as a whole word,
// ignoring case. A term may carry a plain inflection ("newsletters",
// "subscribed") but not a longer tail ("cartoon").
func IsBlacklisted(title string, terms []string) bool {
	lower := strings.ToLower(title)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		for from := 0; from <= len(lower)-len(term); {
			i := strings.Index(lower[from:], term)
			if i < 0 {
				break
			}
			start, end := from+i, from+i+len(term)
			if boundaryBefore(lower, start) && inflectedEnd(lower, end) {
				return true
			}
			from = start + 1
		}
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func inflectedEnd(s string, i int) bool {
	if boundaryAfter(s, i) {
		return true
	}
	for _, suffix := range inflections {
		if strings.HasPrefix(s[i:], suffix) && boundaryAfter(s, i+len(suffix)) {
			return true
		}
	}
	return false
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// containerSelection wraps one container node for goquery traversal
func (ec *ExtractionContext) containerSelection(n *html.Node) *goquery.Selection {
	return ec.Doc.FindNodes(n)
}
