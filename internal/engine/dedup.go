package engine

import (
	"github.com/law-makers/pricecompare/internal/profile"
	"github.com/law-makers/pricecompare/pkg/models"
)

// Verdict is the outcome of offering a record to the Deduplicator
type Verdict int

const (
	Accepted Verdict = iota
	Duplicate
	Rejected
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	default:
		return "rejected"
	}
}

// Deduplicator keeps the first valid record per identity key
type Deduplicator struct {
	profile *profile.SiteProfile
	seen    map[string]struct{}
	records []models.ProductRecord

	Duplicates int
	Rejected   int
}

// NewDeduplicator creates an empty Deduplicator for a site
func NewDeduplicator(p *profile.SiteProfile) *Deduplicator {
	return &Deduplicator{profile: p, seen: make(map[string]struct{})}
}

// Key is the identity of a record: title, price and an image URL prefix
func Key(r models.ProductRecord, imagePrefix int) string {
	img := ""
	if r.HasImage() {
		img = r.Image
		if len(img) > imagePrefix {
			img = img[:imagePrefix]
		}
	}
	return r.Title + "\x1f" + r.Price + "\x1f" + img
}

// Validate reports whether r may enter the result set, with a reason when not
func Validate(r models.ProductRecord, p *profile.SiteProfile) (bool, string) {
	if !r.HasTitle() {
		return false, "missing title"
	}
	if IsBlacklisted(r.Title, p.Blacklist) {
		return false, "blacklisted title"
	}
	if !r.HasPrice() && !IsProductLink(r.Link, p.ProductLinks) {
		return false, "no price and no product link"
	}
	return true, ""
}

// Offer runs r through the dedup and validity gates. Invalid records are not
// remembered, so a later well-formed record with the same key still passes.
func (d *Deduplicator) Offer(r models.ProductRecord) (Verdict, string) {
	key := Key(r, d.profile.ImageKeyPrefix)
	if _, ok := d.seen[key]; ok {
		d.Duplicates++
		return Duplicate, "duplicate key"
	}
	if ok, reason := Validate(r, d.profile); !ok {
		d.Rejected++
		return Rejected, reason
	}
	d.seen[key] = struct{}{}
	d.records = append(d.records, r)
	return Accepted, ""
}

// Records returns the accepted records in encounter order
func (d *Deduplicator) Records() []models.ProductRecord {
	out := make([]models.ProductRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Dedupe filters records through a fresh Deduplicator
func Dedupe(p *profile.SiteProfile, records []models.ProductRecord) []models.ProductRecord {
	d := NewDeduplicator(p)
	for _, r := range records {
		d.Offer(r)
	}
	return d.Records()
}
