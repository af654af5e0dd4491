// Package stabilize drives a rendered page until its lazy content has settled.
package stabilize

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Page is the subset of a rendered page the stabilizers drive
type Page interface {
	Evaluate(ctx context.Context, script string, res any) error
	ScrollTo(ctx context.Context, y float64) error
}

// Config controls the scroll-completion detector
type Config struct {
	Steps           int           // iteration cap; offsets are Steps evenly spaced points
	Pause           time.Duration // wait after each scroll before sampling
	StabilityWindow int           // consecutive unchanged samples that end the loop
	ProductPattern  string        // selector counted as the second growth signal
}

// Result describes how the detector ended
type Result struct {
	Iterations int
	Height     float64
	Matches    int
	Converged  bool
}

type sample struct {
	Height float64 `json:"height"`
	Count  int     `json:"count"`
}

// Detector scrolls a page until height and product count plateau
type Detector struct {
	cfg    Config
	logger zerolog.Logger
	probe  string
}

// NewDetector builds a detector; zero values fall back to 10 steps and a window of 2
func NewDetector(cfg Config, logger zerolog.Logger) *Detector {
	if cfg.Steps <= 0 {
		cfg.Steps = 10
	}
	if cfg.StabilityWindow <= 0 {
		cfg.StabilityWindow = 2
	}
	if cfg.ProductPattern == "" {
		cfg.ProductPattern = "[class*='product']"
	}
	return &Detector{cfg: cfg, logger: logger, probe: probeScript(cfg.ProductPattern)}
}

func probeScript(selector string) string {
	quoted, _ := json.Marshal(selector)
	return fmt.Sprintf(`(() => {
  let count = 0;
  try { count = document.querySelectorAll(%s).length; } catch (e) {}
  const b = document.body, d = document.documentElement;
  return {height: Math.max(b ? b.scrollHeight : 0, d ? d.scrollHeight : 0), count: count};
})()`, quoted)
}

// Run scrolls page until both signals are unchanged for the stability window
// or the step cap is reached. Probe and scroll failures end the loop early;
// they are never returned since a page without more content is not an error.
func (d *Detector) Run(ctx context.Context, page Page) Result {
	var res Result

	prev, err := d.sample(ctx, page)
	if err != nil {
		d.logger.Debug().Err(err).Msg("Initial scroll probe failed")
		return res
	}
	res.Height, res.Matches = prev.Height, prev.Count

	// offsets stay spaced over the baseline height as the page grows
	baseline := prev.Height
	stable := 0
	for i := 1; i <= d.cfg.Steps; i++ {
		y := float64(i) * baseline / float64(d.cfg.Steps)
		if err := page.ScrollTo(ctx, y); err != nil {
			d.logger.Debug().Err(err).Int("iteration", i).Msg("Scroll failed")
			break
		}
		if err := sleep(ctx, d.cfg.Pause); err != nil {
			break
		}

		cur, err := d.sample(ctx, page)
		if err != nil {
			d.logger.Debug().Err(err).Int("iteration", i).Msg("Scroll probe failed")
			break
		}
		res.Iterations = i
		res.Height, res.Matches = cur.Height, cur.Count

		if cur == prev {
			stable++
		} else {
			stable = 0
		}
		prev = cur

		d.logger.Debug().
			Int("iteration", i).
			Float64("height", cur.Height).
			Int("matches", cur.Count).
			Int("stable", stable).
			Msg("Scroll sample")

		if stable >= d.cfg.StabilityWindow {
			res.Converged = true
			break
		}
	}

	d.logger.Debug().
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Float64("height", res.Height).
		Int("matches", res.Matches).
		Msg("Scroll completion")
	return res
}

func (d *Detector) sample(ctx context.Context, page Page) (sample, error) {
	var s sample
	err := page.Evaluate(ctx, d.probe, &s)
	return s, err
}

// Settle sweeps bottom, top and middle once so viewport-triggered loaders
// that only watch direction changes fire.
func Settle(ctx context.Context, page Page, height float64, pause time.Duration) {
	for _, y := range []float64{height, 0, height / 2} {
		if err := page.ScrollTo(ctx, y); err != nil {
			return
		}
		if err := sleep(ctx, pause); err != nil {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
