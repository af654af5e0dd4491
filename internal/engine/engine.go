// Package engine turns a rendered search page into product records.
package engine

import (
	"context"
	"time"
)

// Page is a rendered document the engine may read, script and scroll.
// Implementations never navigate on their own.
type Page interface {
	// URL returns the address the page was rendered from
	URL() string

	// HTML returns the current serialized DOM
	HTML(ctx context.Context) (string, error)

	// Evaluate runs script and decodes its JSON result into res (may be nil)
	Evaluate(ctx context.Context, script string, res any) error

	// ScrollTo moves the viewport to vertical offset y
	ScrollTo(ctx context.Context, y float64) error

	// WaitReady blocks until selector matches or timeout elapses
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error
}

// Session is one scoped browser resource. Close must be called on every path.
type Session interface {
	Render(ctx context.Context, url string) (Page, error)
	Close() error
}

// Navigator opens independent sessions
type Navigator interface {
	Open(ctx context.Context) (Session, error)

	// Name returns the name of the navigator implementation
	Name() string
}
