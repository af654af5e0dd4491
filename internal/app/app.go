// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/pricecompare/internal/config"
	"github.com/law-makers/pricecompare/internal/engine"
	"github.com/law-makers/pricecompare/internal/engine/dynamic"
	"github.com/law-makers/pricecompare/internal/engine/static"
	"github.com/law-makers/pricecompare/internal/profile"
	"github.com/law-makers/pricecompare/internal/proxy"
	"github.com/law-makers/pricecompare/internal/ratelimit"
	"github.com/law-makers/pricecompare/internal/retry"
	"github.com/law-makers/pricecompare/internal/scrape"
	"github.com/law-makers/pricecompare/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Profiles    *profile.Registry
	RateLimiter ratelimit.RateLimiter
	Proxies     *proxy.ProxyPool
	HTTPClient  *http.Client

	navMu     sync.Mutex
	navigator engine.Navigator
	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Loads the site profiles, built-in or from the configured file
//   - Creates the per-host rate limiter and the proxy pool
//   - Initializes the HTTP client used by the static navigator
//
// The navigator itself is created on first use so commands that never render
// a page do not need a Chrome installation.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(cfg)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	profiles, err := LoadProfiles(cfg.ProfilesPath)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Strs("sites", profiles.IDs()).
		Str("source", profileSource(cfg.ProfilesPath)).
		Msg("Site profiles loaded")

	rateLimiter := ratelimit.NewHostLimiter(cfg.RenderRateRPS, cfg.RenderRateBurst)
	logger.Debug().
		Float64("rps", cfg.RenderRateRPS).
		Int("burst", cfg.RenderRateBurst).
		Msg("Rate limiter initialized")

	httpClient := &http.Client{
		Timeout: cfg.RenderTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Profiles:    profiles,
		RateLimiter: rateLimiter,
		Proxies:     proxy.NewProxyPool(cfg.Proxies),
		HTTPClient:  httpClient,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// NewLogger builds the process logger: console output on stderr unless JSON
// logs are requested, debug with -v, errors only with -q.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.WarnLevel // "info" stays quiet unless -v is used
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	if cfg.Quiet {
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return log.Output(logWriter).With().Timestamp().Logger()
}

// LoadProfiles returns the built-in profiles, or the ones in path when set.
// Failures carry the PROFILE_INVALID code.
func LoadProfiles(path string) (*profile.Registry, error) {
	var (
		reg *profile.Registry
		err error
	)
	if path == "" {
		reg, err = profile.Builtin()
	} else {
		reg, err = profile.LoadFile(path)
	}
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeProfileInvalid, "failed to load site profiles", err).
			WithDetail("source", profileSource(path))
	}
	return reg, nil
}

func profileSource(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}

// Navigator returns the navigator for the configured mode, creating it on
// first call. SPA mode fails with engine.ErrBrowserNotFound without Chrome.
func (a *Application) Navigator() (engine.Navigator, error) {
	if a == nil {
		return nil, fmt.Errorf("application is nil")
	}

	a.navMu.Lock()
	defer a.navMu.Unlock()

	if a.navigator != nil {
		return a.navigator, nil
	}

	cfg := a.Config
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.RetryAttempts

	switch cfg.Mode {
	case models.ModeStatic:
		a.navigator = static.New(static.Options{
			Client:    a.HTTPClient,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RenderTimeout,
			Retry:     retryCfg,
			Limiter:   a.RateLimiter,
			Logger:    *a.Logger,
		})
	default:
		nav, err := dynamic.New(dynamic.Options{
			Headless:      cfg.BrowserHeadless,
			UserAgent:     cfg.UserAgent,
			ChromePath:    cfg.ChromePath,
			Stealth:       cfg.Stealth,
			RenderTimeout: cfg.RenderTimeout,
			SettleDelay:   cfg.SettleDelay,
			Retry:         retryCfg,
			Limiter:       a.RateLimiter,
			Proxies:       a.Proxies,
			Logger:        *a.Logger,
		})
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to create browser navigator")
			return nil, err
		}
		a.navigator = nav
	}

	a.Logger.Info().Str("navigator", a.navigator.Name()).Msg("Navigator initialized on demand")
	return a.navigator, nil
}

// Scraper builds a pipeline over nav with the configured stabilisation overrides.
// nav may be nil for offline extraction through ExtractPage.
func (a *Application) Scraper(nav engine.Navigator, maxPages int) *scrape.Scraper {
	return scrape.New(scrape.Options{
		Navigator:       nav,
		ReadyTimeout:    a.Config.ReadyTimeout,
		ScrollPause:     a.Config.ScrollPause,
		ScrollSteps:     a.Config.ScrollSteps,
		StabilityWindow: a.Config.StabilityWindow,
		MaxPages:        maxPages,
		Logger:          *a.Logger,
	})
}

// Close releases shared resources. Browser sessions are owned by the scrapes
// that opened them and are already closed by the time this runs.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
