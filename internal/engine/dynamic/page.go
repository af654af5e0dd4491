package dynamic

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/law-makers/pricecompare/internal/engine"
)

// scriptTimeout bounds a single Evaluate, ScrollTo or HTML call
const scriptTimeout = 20 * time.Second

// Page is the tab of a session after a successful Render
type Page struct {
	session *session
	url     string
}

// URL returns the address the page was rendered from
func (p *Page) URL() string {
	return p.url
}

// HTML returns the serialized DOM as it is now, after any script changes
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, scriptTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read DOM: %w", err)
	}
	return html, nil
}

// Evaluate runs script in the page and decodes its result into res
func (p *Page) Evaluate(ctx context.Context, script string, res any) error {
	return p.run(ctx, scriptTimeout, chromedp.Evaluate(script, res))
}

// ScrollTo moves the viewport to vertical offset y
func (p *Page) ScrollTo(ctx context.Context, y float64) error {
	return p.run(ctx, scriptTimeout, chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %f)", y), nil))
}

// WaitReady waits for selector to be present in the DOM. A timeout is
// reported as engine.ErrTimeout; callers are expected to proceed anyway.
func (p *Page) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	if selector == "" {
		selector = "body"
	}
	err := p.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err != nil && ctx.Err() == nil && p.session.ctx.Err() == nil {
		return fmt.Errorf("%w: %q not ready after %s", engine.ErrTimeout, selector, timeout)
	}
	return err
}

func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := p.session.bound(ctx, timeout)
	defer cancel()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && p.session.ctx.Err() != nil {
		return fmt.Errorf("%w: %v", engine.ErrBrowserCrash, err)
	}
	return err
}
