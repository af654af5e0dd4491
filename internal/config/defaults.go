package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultMode            = "spa"
	DefaultRenderTimeout   = 60 * time.Second
	DefaultReadyTimeout    = 15 * time.Second
	DefaultSettleDelay     = 3 * time.Second
	DefaultScrollPause     = 2 * time.Second
	DefaultRenderRateRPS   = 0.5
	DefaultRenderRateBurst = 1
	DefaultRetryAttempts   = 2
	DefaultMaxRetries      = 5
	DefaultBrowserHeadless = true
	DefaultStealth         = true
)
