// Package static renders search pages with plain HTTP requests. Pages it
// returns cannot run scripts, which suits server-rendered sites and saved
// DOM snapshots.
package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/pricecompare/internal/engine"
	"github.com/law-makers/pricecompare/internal/ratelimit"
	"github.com/law-makers/pricecompare/internal/retry"
)

// maxBodyBytes caps one response body
const maxBodyBytes = 16 << 20

// Options configures the HTTP navigator
type Options struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	Retry     retry.Config
	Limiter   ratelimit.RateLimiter
	Logger    zerolog.Logger
}

// Navigator fetches pages over HTTP
type Navigator struct {
	opts Options
}

// New creates an HTTP Navigator
func New(opts Options) *Navigator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	return &Navigator{opts: opts}
}

// Name returns the name of this navigator
func (n *Navigator) Name() string {
	return "http"
}

// Open returns a session sharing the navigator's HTTP client
func (n *Navigator) Open(ctx context.Context) (engine.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &session{nav: n, logger: n.opts.Logger.With().Str("navigator", n.Name()).Logger()}, nil
}

type session struct {
	nav    *Navigator
	logger zerolog.Logger
	closed bool
}

// Render fetches url and wraps the body as a Page
func (s *session) Render(ctx context.Context, url string) (engine.Page, error) {
	if s.closed {
		return nil, engine.ErrNavigatorClosed
	}
	opts := s.nav.opts
	if err := opts.Limiter.Wait(ctx, url); err != nil {
		return nil, engine.NavigationError(url, err)
	}

	var body string
	err := retry.Do(ctx, opts.Retry, s.logger, func(attempt int) error {
		var err error
		body, err = s.fetch(ctx, url)
		return err
	})
	if err != nil {
		return nil, engine.NavigationError(url, err)
	}
	return FromHTML(url, body), nil
}

func (s *session) fetch(ctx context.Context, url string) (string, error) {
	opts := s.nav.opts
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	resp, err := opts.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", retry.NewHTTPError(resp.StatusCode, resp.Status, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	s.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch completed")
	return string(data), nil
}

// Close releases the session. The shared client is left open.
func (s *session) Close() error {
	s.closed = true
	return nil
}
