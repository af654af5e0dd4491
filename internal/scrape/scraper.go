// Package scrape runs the per-site pipeline: open a scoped browser session,
// render each result page, stabilise it and hand the DOM to the engine.
package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/pricecompare/internal/engine"
	"github.com/law-makers/pricecompare/internal/engine/embedded"
	"github.com/law-makers/pricecompare/internal/engine/stabilize"
	"github.com/law-makers/pricecompare/internal/profile"
	"github.com/law-makers/pricecompare/internal/reqctx"
	"github.com/law-makers/pricecompare/pkg/models"
)

// Options tunes the pipeline. Zero stabilisation values keep the profile's.
type Options struct {
	Navigator       engine.Navigator
	ReadyTimeout    time.Duration
	ScrollPause     time.Duration
	ScrollSteps     int
	StabilityWindow int
	MaxPages        int // cap below each profile's max_pages; 0 means no cap
	Logger          zerolog.Logger
}

// Scraper scrapes sites one at a time
type Scraper struct {
	opts Options
}

// New creates a Scraper
func New(opts Options) *Scraper {
	return &Scraper{opts: opts}
}

// Scrape collects the records of one site for query. Session-level failures
// are reported in the result's Err; the session is closed on every path.
func (s *Scraper) Scrape(ctx context.Context, p *profile.SiteProfile, query string) (res models.SiteResult) {
	ctx = reqctx.WithRun(ctx, p.ID)
	logger := reqctx.Logger(ctx, s.opts.Logger)
	siteLog := logger.With().Str("site", p.ID).Logger()

	res = models.SiteResult{Site: p.ID, Query: query}
	defer func() {
		res.Duration = reqctx.Elapsed(ctx)
		ev := siteLog.Info()
		if res.Err != nil {
			ev = siteLog.Error().Err(res.Err)
		}
		ev.Int("records", len(res.Records)).
			Int("pages", res.Pages).
			Dur("elapsed", res.Duration).
			Msg("Site finished")
	}()

	sess, err := s.opts.Navigator.Open(ctx)
	if err != nil {
		res.Err = s.fail(ctx, p, err)
		return res
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			siteLog.Warn().
				Str("code", string(engine.ErrCodeSessionTeardown)).
				Err(cerr).
				Msg("Session teardown failed")
		}
	}()

	pages := p.MaxPages
	if s.opts.MaxPages > 0 && s.opts.MaxPages < pages {
		pages = s.opts.MaxPages
	}

	var all []models.ProductRecord
	for n := 1; n <= pages; n++ {
		target, err := p.SearchURLFor(query, n)
		if err != nil {
			res.Err = s.fail(ctx, p, err)
			return res
		}

		records, err := s.scrapePage(ctx, sess, p, target, logger)
		if err != nil {
			if n == 1 || ctx.Err() != nil {
				res.Err = s.fail(ctx, p, err)
				break
			}
			// page one already produced records; keep them
			siteLog.Warn().Err(err).Int("page", n).Msg("Later result page failed")
			break
		}
		res.Pages++
		all = append(all, records...)
		if len(records) == 0 {
			break
		}
	}

	res.Records = engine.Dedupe(p, all)
	return res
}

func (s *Scraper) scrapePage(ctx context.Context, sess engine.Session, p *profile.SiteProfile, target string, logger zerolog.Logger) ([]models.ProductRecord, error) {
	page, err := sess.Render(ctx, target)
	if err != nil {
		return nil, err
	}
	records, _, err := s.ExtractPage(ctx, page, p, logger)
	return records, err
}

// ExtractPage stabilises a rendered page and extracts its records. Only
// failing to read the DOM is an error; stabilisation problems are logged.
func (s *Scraper) ExtractPage(ctx context.Context, page engine.Page, p *profile.SiteProfile, logger zerolog.Logger) ([]models.ProductRecord, engine.Summary, error) {
	ready := p.ReadySelector
	if ready == "" {
		ready = p.ProductPattern
	}
	if err := page.WaitReady(ctx, ready, s.opts.ReadyTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, engine.Summary{}, ctx.Err()
		}
		logger.Warn().Str("site", p.ID).Str("selector", ready).Err(err).Msg("Ready wait failed, continuing")
	}

	cfg := stabilize.Config{
		Steps:           p.ScrollSteps,
		Pause:           s.opts.ScrollPause,
		StabilityWindow: p.StabilityWindow,
		ProductPattern:  p.ProductPattern,
	}
	if s.opts.ScrollSteps > 0 {
		cfg.Steps = s.opts.ScrollSteps
	}
	if s.opts.StabilityWindow > 0 {
		cfg.StabilityWindow = s.opts.StabilityWindow
	}
	scrolled := stabilize.NewDetector(cfg, logger).Run(ctx, page)
	stabilize.Settle(ctx, page, scrolled.Height, s.opts.ScrollPause)
	stabilize.ForceLazyAssets(ctx, page, logger)

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, engine.Summary{}, engine.NavigationError(page.URL(), err)
	}

	ec, err := engine.NewExtractionContext(html, page.URL(), p, logger)
	if err != nil {
		return nil, engine.Summary{}, err
	}
	seeds := embedded.Extract(ec)
	records, sum := engine.ExtractWithSummary(ec, seeds...)
	return records, sum, nil
}

// ScrapeAll scrapes each profile in turn. A failing site never stops the
// others. progress, when set, is called after every site.
func (s *Scraper) ScrapeAll(ctx context.Context, profiles []*profile.SiteProfile, query string, progress func(models.SiteResult)) []models.SiteResult {
	results := make([]models.SiteResult, 0, len(profiles))
	for _, p := range profiles {
		var r models.SiteResult
		if ctx.Err() != nil {
			r = models.SiteResult{Site: p.ID, Query: query, Err: reqctx.NewRequestError(reqctx.WithRun(ctx, p.ID), ctx.Err())}
		} else {
			r = s.Scrape(ctx, p, query)
		}
		results = append(results, r)
		if progress != nil {
			progress(r)
		}
	}
	return results
}

// fail tags err with the site and run
func (s *Scraper) fail(ctx context.Context, p *profile.SiteProfile, err error) error {
	var ee *engine.EngineError
	if errors.As(err, &ee) && ee.Site == "" {
		ee.WithSite(p.ID)
	}
	return reqctx.NewRequestError(ctx, err)
}
