package config

import (
	"fmt"
	"net/url"

	"github.com/law-makers/pricecompare/pkg/models"
)

func validate(c *Config) error {
	if c.Mode != models.ModeSPA && c.Mode != models.ModeStatic {
		return fmt.Errorf("mode must be %q or %q, got %q", models.ModeSPA, models.ModeStatic, c.Mode)
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("render timeout must be > 0")
	}
	if c.ReadyTimeout < 0 || c.ReadyTimeout > c.RenderTimeout {
		return fmt.Errorf("ready timeout must be between 0 and the render timeout")
	}
	if c.ScrollPause < 0 {
		return fmt.Errorf("scroll pause must be >= 0")
	}
	if c.ScrollSteps < 0 || c.StabilityWindow < 0 {
		return fmt.Errorf("scroll steps and stability window must be >= 0")
	}
	if c.RetryAttempts <= 0 || c.RetryAttempts > DefaultMaxRetries {
		return fmt.Errorf("retries must be between 1 and %d", DefaultMaxRetries)
	}
	if c.RenderRateRPS <= 0 {
		return fmt.Errorf("rate must be > 0")
	}
	for _, p := range c.Proxies {
		u, err := url.Parse(p)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy %q: expected scheme://host:port", p)
		}
	}
	return nil
}
