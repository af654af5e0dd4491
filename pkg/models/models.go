package models

import "time"

// Sentinel field values written when a field could not be extracted.
const (
	NoTitle  = "No title"
	NoPrice  = "No price"
	NoImage  = "No image"
	NoLink   = "#"
	NoRating = "No rating"
)

// ProductRecord is a single product listing extracted from a search page
type ProductRecord struct {
	Title  string `json:"title"`
	Price  string `json:"price"`
	Image  string `json:"image"`
	Link   string `json:"link"`
	Rating string `json:"rating,omitempty"`
	Source string `json:"source"`
}

// HasTitle reports whether the title was extracted
func (r ProductRecord) HasTitle() bool { return r.Title != "" && r.Title != NoTitle }

// HasPrice reports whether the price was extracted
func (r ProductRecord) HasPrice() bool { return r.Price != "" && r.Price != NoPrice }

// HasImage reports whether the image was extracted
func (r ProductRecord) HasImage() bool { return r.Image != "" && r.Image != NoImage }

// HasLink reports whether the link was extracted
func (r ProductRecord) HasLink() bool { return r.Link != "" && r.Link != NoLink }

// ScraperMode defines the navigator used to render search pages
type ScraperMode string

const (
	ModeStatic ScraperMode = "static"
	ModeSPA    ScraperMode = "spa"
)

// SiteResult is the outcome of scraping one site
type SiteResult struct {
	Site     string          `json:"site"`
	Query    string          `json:"query"`
	Records  []ProductRecord `json:"records"`
	Pages    int             `json:"pages"`
	Duration time.Duration   `json:"duration_ns"`
	Err      error           `json:"-"`
}

// ErrorMessage returns the error text, empty on success
func (r SiteResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
