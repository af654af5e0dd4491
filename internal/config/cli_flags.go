package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", false, "Write logs as JSON and print results as a JSON document")
	pf.String("proxy", "", "HTTP/SOCKS5 proxy, or a comma-separated list rotated per site")
	pf.String("timeout", DefaultRenderTimeout.String(), "Hard timeout for one page render")
	pf.String("ready-timeout", DefaultReadyTimeout.String(), "How long to wait for a site's ready selector")
	pf.String("user-agent", "", "Custom user agent string")
	pf.String("profiles", "", "YAML file with site profiles (replaces the built-in set)")
	pf.String("mode", DefaultMode, "Rendering mode: spa (headless Chrome) or static (plain HTTP)")
	pf.Bool("headful", false, "Show the browser window")
	pf.Bool("no-stealth", false, "Do not inject the anti-detection script")
	pf.String("chrome-path", "", "Chrome/Chromium executable")
	pf.String("scroll-pause", DefaultScrollPause.String(), "Pause after each scroll step")
	pf.Int("scroll-steps", 0, "Scroll step cap (0 uses each site's setting)")
	pf.Int("stability-window", 0, "Unchanged samples that end scrolling (0 uses each site's setting)")
	pf.Int("retries", DefaultRetryAttempts, "Render attempts per page")
	pf.Float64("rate", DefaultRenderRateRPS, "Renders per second per host")
}
