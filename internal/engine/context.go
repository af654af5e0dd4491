package engine

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/law-makers/pricecompare/internal/engine/price"
	"github.com/law-makers/pricecompare/internal/profile"
	urlutil "github.com/law-makers/pricecompare/internal/utils/url"
)

// ExtractionContext is the read-only state for extracting one page
type ExtractionContext struct {
	Doc     *goquery.Document
	PageURL *url.URL
	Profile *profile.SiteProfile
	Logger  zerolog.Logger

	prices *price.Normalizer
}

// NewExtractionContext parses rawHTML rendered from pageURL
func NewExtractionContext(rawHTML, pageURL string, p *profile.SiteProfile, logger zerolog.Logger) (*ExtractionContext, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewExtractionContextFromDocument(doc, pageURL, p, logger)
}

// NewExtractionContextFromDocument wraps an already parsed document
func NewExtractionContextFromDocument(doc *goquery.Document, pageURL string, p *profile.SiteProfile, logger zerolog.Logger) (*ExtractionContext, error) {
	if p == nil {
		return nil, fmt.Errorf("site profile is required")
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		base, err = url.Parse(p.Origin())
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
	}
	return &ExtractionContext{
		Doc:     doc,
		PageURL: base,
		Profile: p,
		Logger:  logger.With().Str("site", p.ID).Logger(),
		prices:  price.ForProfile(p),
	}, nil
}

// Prices returns the site's price normalizer
func (ec *ExtractionContext) Prices() *price.Normalizer {
	return ec.prices
}

// resolve returns href as an absolute http(s) URL, or "" when it cannot be one
func (ec *ExtractionContext) resolve(href string) string {
	return urlutil.Absolute(ec.PageURL, href)
}

// collapse joins s on single spaces
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
