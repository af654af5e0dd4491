package engine

import (
	"golang.org/x/net/html"

	"github.com/law-makers/pricecompare/pkg/models"
)

// Summary reports how one page's extraction went
type Summary struct {
	Query      string
	Fallback   bool
	Matched    int
	Containers int
	Seeds      int
	Accepted   int
	Duplicates int
	Rejected   int
	Prices     int
	Images     int
	Links      int
}

// Extract returns the validated, deduplicated records of the page. Seed
// records, typically from data embedded in the page, are offered first.
func Extract(ec *ExtractionContext, seeds ...models.ProductRecord) []models.ProductRecord {
	records, _ := ExtractWithSummary(ec, seeds...)
	return records
}

// ExtractWithSummary is Extract plus the per-page counters
func ExtractWithSummary(ec *ExtractionContext, seeds ...models.ProductRecord) ([]models.ProductRecord, Summary) {
	containers := LocateContainers(ec)
	sum := Summary{
		Query:      containers.Query,
		Fallback:   containers.Fallback,
		Matched:    containers.Matched,
		Containers: len(containers.Nodes),
		Seeds:      len(seeds),
	}

	dedup := NewDeduplicator(ec.Profile)
	offer := func(r models.ProductRecord, origin string) {
		r.Source = ec.Profile.ID
		verdict, reason := dedup.Offer(r)
		if verdict != Accepted {
			ec.Logger.Debug().
				Str("origin", origin).
				Str("verdict", verdict.String()).
				Str("reason", reason).
				Str("title", r.Title).
				Msg("Record discarded")
		}
	}

	for _, r := range seeds {
		offer(r, "embedded")
	}
	for _, n := range containers.Nodes {
		offer(ec.ExtractRecord(n), "container")
	}

	records := dedup.Records()
	sum.Accepted = len(records)
	sum.Duplicates = dedup.Duplicates
	sum.Rejected = dedup.Rejected
	for _, r := range records {
		if r.HasPrice() {
			sum.Prices++
		}
		if r.HasImage() {
			sum.Images++
		}
		if r.HasLink() {
			sum.Links++
		}
	}

	if len(records) == 0 {
		ec.Logger.Warn().
			Str("code", string(ErrCodeExtractionEmpty)).
			Int("containers", sum.Containers).
			Int("seeds", sum.Seeds).
			Msg("No records extracted")
	} else {
		ec.Logger.Info().
			Str("query", sum.Query).
			Bool("fallback", sum.Fallback).
			Int("containers", sum.Containers).
			Int("records", sum.Accepted).
			Int("duplicates", sum.Duplicates).
			Int("rejected", sum.Rejected).
			Int("prices", sum.Prices).
			Int("images", sum.Images).
			Msg("Page extracted")
	}
	return records, sum
}

// ExtractRecord runs every field extractor against one container node
func (ec *ExtractionContext) ExtractRecord(n *html.Node) models.ProductRecord {
	item := ec.containerSelection(n)
	return models.ProductRecord{
		Title:  ec.extractTitle(item),
		Price:  ec.extractPrice(item),
		Image:  ec.extractImage(item),
		Link:   ec.extractLink(item),
		Rating: ec.extractRating(item),
		Source: ec.Profile.ID,
	}
}

// FromValues builds a record from loose field values, such as ones decoded
// from data embedded in the page, through the same validators the DOM
// extractors use. Values that fail validation become sentinels.
func (ec *ExtractionContext) FromValues(title, price, image, link, rating string) models.ProductRecord {
	r := models.ProductRecord{
		Title:  models.NoTitle,
		Price:  models.NoPrice,
		Image:  models.NoImage,
		Link:   models.NoLink,
		Source: ec.Profile.ID,
	}
	if v, reason := ec.validTitle(title); reason == "" {
		r.Title = v
	}
	if v, reason := ec.validPrice(price); reason == "" {
		r.Price = v
	}
	if v, reason := ec.validImage(firstSrcset(image)); reason == "" {
		r.Image = v
	}
	if v, reason := ec.validLink(link); reason == "" {
		r.Link = v
	}
	if rating != "" || len(ec.Profile.Rating) > 0 {
		r.Rating = models.NoRating
		if v, reason := validRating(rating); reason == "" {
			r.Rating = v
		}
	}
	return r
}
