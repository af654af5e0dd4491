// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	urlutil "github.com/law-makers/pricecompare/internal/utils/url"
)

// RateLimiter throttles page renders per host.
type RateLimiter interface {
	// Wait blocks until a render of urlStr may start, or ctx is done.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a render of urlStr may start right now,
	// consuming a token when it may.
	Allow(urlStr string) bool
}

// HostLimiter is a token bucket per host. "www." and bare hosts share one
// bucket so a site is never hit faster because of a redirect.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond renders per host
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 0.5
	}
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the render for urlStr can proceed
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	host := urlutil.Host(urlStr)
	if host == "" {
		// Unparseable; navigation will report it
		return nil
	}
	return hl.limiter(host).Wait(ctx)
}

// Allow checks if a render can proceed immediately
func (hl *HostLimiter) Allow(urlStr string) bool {
	host := urlutil.Host(urlStr)
	if host == "" {
		return true
	}
	return hl.limiter(host).Allow()
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.RLock()
	l, ok := hl.limiters[host]
	hl.mu.RUnlock()
	if ok {
		return l
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	if l, ok := hl.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = l
	return l
}

// SetLimit overrides the rate for one host
func (hl *HostLimiter) SetLimit(host string, requestsPerSecond float64, burst int) {
	host = urlutil.Host("https://" + host)
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if l, ok := hl.limiters[host]; ok {
		l.SetLimit(rate.Limit(requestsPerSecond))
		l.SetBurst(burst)
		return
	}
	hl.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// Unlimited never blocks; used for offline extraction
type Unlimited struct{}

func (Unlimited) Wait(context.Context, string) error { return nil }
func (Unlimited) Allow(string) bool                  { return true }
