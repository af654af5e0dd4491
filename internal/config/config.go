package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/law-makers/pricecompare/pkg/models"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// Rendering
	Mode          models.ScraperMode
	RenderTimeout time.Duration
	ReadyTimeout  time.Duration
	SettleDelay   time.Duration
	UserAgent     string
	Proxies       []string
	RetryAttempts int

	// Rate Limiting
	RenderRateRPS   float64
	RenderRateBurst int

	// Browser
	BrowserHeadless bool
	ChromePath      string
	Stealth         bool

	// Stabilisation overrides; zero keeps each profile's value
	ScrollPause     time.Duration
	ScrollSteps     int
	StabilityWindow int

	// Site profiles file; empty uses the built-in set
	ProfilesPath string
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		Mode:            models.ScraperMode(DefaultMode),
		RenderTimeout:   DefaultRenderTimeout,
		ReadyTimeout:    DefaultReadyTimeout,
		SettleDelay:     DefaultSettleDelay,
		UserAgent:       DefaultUserAgent,
		RetryAttempts:   DefaultRetryAttempts,
		RenderRateRPS:   DefaultRenderRateRPS,
		RenderRateBurst: DefaultRenderRateBurst,
		BrowserHeadless: DefaultBrowserHeadless,
		Stealth:         DefaultStealth,
		ScrollPause:     DefaultScrollPause,
	}
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if v := os.Getenv("PRICECOMPARE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("PRICECOMPARE_PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("PRICECOMPARE_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("PRICECOMPARE_PROFILES"); v != "" {
		cfg.ProfilesPath = v
	}

	if cmd != nil {
		if err := applyFlags(cfg, cmd.Flags()); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyFlags copies flags the user set explicitly; defaults never override env
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, fn func(v string) error) {
		if err != nil {
			return
		}
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return
		}
		if e := fn(f.Value.String()); e != nil {
			err = fmt.Errorf("--%s: %w", name, e)
		}
	}
	duration := func(dst *time.Duration) func(string) error {
		return func(v string) error {
			d, e := time.ParseDuration(v)
			if e == nil {
				*dst = d
			}
			return e
		}
	}
	integer := func(dst *int) func(string) error {
		return func(v string) error {
			n, e := strconv.Atoi(v)
			if e == nil {
				*dst = n
			}
			return e
		}
	}

	set("user-agent", func(v string) error { cfg.UserAgent = v; return nil })
	set("proxy", func(v string) error { cfg.Proxies = splitList(v); return nil })
	set("chrome-path", func(v string) error { cfg.ChromePath = v; return nil })
	set("profiles", func(v string) error { cfg.ProfilesPath = v; return nil })
	set("mode", func(v string) error { cfg.Mode = models.ScraperMode(strings.ToLower(v)); return nil })
	set("timeout", duration(&cfg.RenderTimeout))
	set("ready-timeout", duration(&cfg.ReadyTimeout))
	set("scroll-pause", duration(&cfg.ScrollPause))
	set("scroll-steps", integer(&cfg.ScrollSteps))
	set("stability-window", integer(&cfg.StabilityWindow))
	set("retries", integer(&cfg.RetryAttempts))
	set("rate", func(v string) error {
		f, e := strconv.ParseFloat(v, 64)
		if e == nil {
			cfg.RenderRateRPS = f
		}
		return e
	})
	set("headful", func(v string) error { cfg.BrowserHeadless = v != "true"; return nil })
	set("no-stealth", func(v string) error { cfg.Stealth = v != "true"; return nil })
	set("json", func(v string) error { cfg.JSONLog = v == "true"; return nil })
	set("quiet", func(v string) error { cfg.Quiet = v == "true"; return nil })
	set("verbose", func(v string) error {
		if v == "true" {
			cfg.LogLevel = "debug"
		}
		return nil
	})
	return err
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
