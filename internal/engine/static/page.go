package static

import (
	"context"
	"time"

	"github.com/law-makers/pricecompare/internal/engine"
)

// Page is a fixed DOM snapshot
type Page struct {
	url  string
	html string
}

// FromHTML wraps an already rendered document, such as a saved page
func FromHTML(url, html string) *Page {
	return &Page{url: url, html: html}
}

// URL returns the address the snapshot was taken from
func (p *Page) URL() string { return p.url }

// HTML returns the snapshot
func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.html, nil
}

// Evaluate always fails; snapshots cannot run scripts
func (p *Page) Evaluate(context.Context, string, any) error {
	return engine.ErrScriptUnsupported
}

// ScrollTo always fails; there is no viewport
func (p *Page) ScrollTo(context.Context, float64) error {
	return engine.ErrScriptUnsupported
}

// WaitReady returns immediately; a snapshot is as ready as it will get
func (p *Page) WaitReady(ctx context.Context, _ string, _ time.Duration) error {
	return ctx.Err()
}
