// Package dynamic renders search pages in headless Chrome through chromedp.
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"

	"github.com/law-makers/pricecompare/internal/engine"
	"github.com/law-makers/pricecompare/internal/proxy"
	"github.com/law-makers/pricecompare/internal/ratelimit"
	"github.com/law-makers/pricecompare/internal/retry"
)

const (
	startupTimeout = 30 * time.Second
	defaultTimeout = 60 * time.Second
)

// Options configures the browser sessions a Navigator opens
type Options struct {
	Headless      bool
	UserAgent     string
	ChromePath    string
	Stealth       bool
	RenderTimeout time.Duration // navigation plus settle, per attempt
	SettleDelay   time.Duration // pause after load for client-side rendering
	Retry         retry.Config
	Limiter       ratelimit.RateLimiter
	Proxies       *proxy.ProxyPool
	ExtraArgs     []chromedp.ExecAllocatorOption
	Logger        zerolog.Logger
}

// Navigator opens one Chrome process per session
type Navigator struct {
	opts       Options
	chromePath string
}

// New creates a chromedp Navigator. It fails with engine.ErrBrowserNotFound
// when no Chrome executable can be located.
func New(opts Options) (*Navigator, error) {
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = defaultTimeout
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}

	chromePath := FindChrome(opts.ChromePath)
	if chromePath == "" {
		return nil, engine.ErrBrowserNotFound
	}
	opts.Logger.Debug().
		Str("path", chromePath).
		Str("version", chromeVersion(chromePath)).
		Bool("headless", opts.Headless).
		Bool("stealth", opts.Stealth).
		Msg("Chrome navigator ready")

	return &Navigator{opts: opts, chromePath: chromePath}, nil
}

// Name returns the name of this navigator
func (n *Navigator) Name() string {
	return "chromedp"
}

// Open starts a browser, prepares its tab and returns the scoped session.
func (n *Navigator) Open(ctx context.Context) (engine.Session, error) {
	proxyServer := ""
	if n.opts.Proxies != nil {
		proxyServer = n.opts.Proxies.GetNext()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(n.opts, n.chromePath, proxyServer)...)
	// chromedp's own logging is noise at any level we use
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	s := &session{
		nav:      n,
		ctx:      browserCtx,
		cancel:   func() { browserCancel(); allocCancel() },
		proxy:    proxyServer,
		logger:   n.opts.Logger.With().Str("navigator", n.Name()).Logger(),
		statuses: make(map[string]int64),
	}

	chromedp.ListenTarget(browserCtx, s.onEvent)

	startCtx, cancel := s.bound(ctx, startupTimeout)
	defer cancel()
	tasks := chromedp.Tasks{network.Enable()}
	if n.opts.Stealth {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}))
	}
	tasks = append(tasks, chromedp.Navigate("about:blank"))

	if err := chromedp.Run(startCtx, tasks); err != nil {
		s.cancel()
		if proxyServer != "" {
			n.opts.Proxies.MarkFailed(proxyServer)
		}
		return nil, engine.NewEngineError(engine.ErrCodeBrowserCrash, "failed to start browser", fmt.Errorf("%w: %v", engine.ErrBrowserCrash, err))
	}

	s.logger.Debug().Str("proxy", proxyServer).Msg("Browser session opened")
	return s, nil
}

// session owns one Chrome process and its single tab
type session struct {
	nav    *Navigator
	ctx    context.Context
	cancel func()
	proxy  string
	logger zerolog.Logger

	mu       sync.Mutex
	statuses map[string]int64 // document URL -> HTTP status
	closed   bool
}

func (s *session) onEvent(ev interface{}) {
	if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
		s.mu.Lock()
		s.statuses[e.Response.URL] = e.Response.Status
		s.mu.Unlock()
	}
}

// bound derives a browser-scoped context that also ends when parent ends
func (s *session) bound(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(parent, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Render navigates the tab to url, retrying transient failures.
func (s *session) Render(ctx context.Context, url string) (engine.Page, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, engine.ErrNavigatorClosed
	}

	opts := s.nav.opts
	if err := opts.Limiter.Wait(ctx, url); err != nil {
		return nil, engine.NavigationError(url, err)
	}

	err := retry.Do(ctx, opts.Retry, s.logger, func(attempt int) error {
		s.logger.Debug().Str("url", url).Int("attempt", attempt).Msg("Navigating")
		return s.navigate(ctx, url)
	})
	if err != nil {
		if s.proxy != "" {
			opts.Proxies.MarkFailed(s.proxy)
		}
		return nil, engine.NavigationError(url, err)
	}
	if s.proxy != "" {
		opts.Proxies.MarkHealthy(s.proxy)
	}

	return &Page{session: s, url: url}, nil
}

func (s *session) navigate(ctx context.Context, url string) error {
	opts := s.nav.opts
	navCtx, cancel := s.bound(ctx, opts.RenderTimeout)
	defer cancel()

	start := time.Now()
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if opts.SettleDelay <= 0 {
				return nil
			}
			select {
			case <-time.After(opts.SettleDelay):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	)
	if err != nil {
		if s.ctx.Err() != nil {
			// the browser itself is gone; another attempt cannot help
			return retry.Permanent(fmt.Errorf("%w: %v", engine.ErrBrowserCrash, err))
		}
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %v", engine.ErrTimeout, opts.RenderTimeout, err)
		}
		return err
	}

	status := s.status(url)
	s.logger.Debug().
		Str("url", url).
		Int64("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("Navigation complete")
	if status == http.StatusTooManyRequests || status >= 500 {
		return retry.NewHTTPError(int(status), http.StatusText(int(status)), url)
	}
	return nil
}

func (s *session) status(url string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[url]
}

// Close stops the browser. It is safe to call more than once.
func (s *session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		// chromedp.Cancel closes the tab and waits for the browser to exit
		_ = chromedp.Cancel(s.ctx)
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		err = fmt.Errorf("browser did not exit within 10s")
	}
	s.cancel()
	if err != nil {
		return engine.NewEngineError(engine.ErrCodeSessionTeardown, "browser shutdown", err)
	}
	s.logger.Debug().Msg("Browser session closed")
	return nil
}
