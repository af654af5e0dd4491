package stabilize

import (
	"context"

	"github.com/rs/zerolog"
)

// lazyScript promotes deferred image sources and fires the events
// intersection-based loaders listen for. The first deferred attribute present
// wins, so a second run changes nothing and touches no image.
const lazyScript = `(() => {
  const deferred = ['data-src', 'data-original', 'data-lazy-src', 'data-lazy'];
  let touched = 0;
  document.querySelectorAll('img').forEach(img => {
    let changed = false;
    for (const attr of deferred) {
      const v = img.getAttribute(attr);
      if (!v) continue;
      if (img.getAttribute('src') !== v) {
        img.setAttribute('src', v);
        changed = true;
      }
      break;
    }
    const set = img.getAttribute('data-srcset');
    if (set && img.getAttribute('srcset') !== set) {
      img.setAttribute('srcset', set);
      changed = true;
    }
    if (img.getAttribute('loading') === 'lazy') {
      img.removeAttribute('loading');
      changed = true;
    }
    ['load', 'appear', 'inview', 'intersect'].forEach(t => {
      try { img.dispatchEvent(new Event(t)); } catch (e) {}
    });
    if (changed) touched++;
  });
  document.querySelectorAll('[data-bg], [data-background]').forEach(el => {
    const v = el.getAttribute('data-bg') || el.getAttribute('data-background');
    if (v && !el.style.backgroundImage) el.style.backgroundImage = 'url("' + v + '")';
  });
  window.dispatchEvent(new Event('scroll'));
  window.dispatchEvent(new Event('resize'));
  return touched;
})()`

// ForceLazyAssets rewrites deferred image sources in place and returns how
// many images changed. Script failures are logged and reported as zero.
func ForceLazyAssets(ctx context.Context, page Page, logger zerolog.Logger) int {
	var touched int
	if err := page.Evaluate(ctx, lazyScript, &touched); err != nil {
		logger.Debug().Err(err).Msg("Lazy asset forcing skipped")
		return 0
	}
	logger.Debug().Int("images", touched).Msg("Lazy assets forced")
	return touched
}
