// Package reqctx tags one site scrape with a run ID for logs and errors.
package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type key int

const runKey key = 0

// RunContext identifies one scrape of one site
type RunContext struct {
	RunID     string
	Site      string
	StartTime time.Time
}

// WithRun attaches a fresh RunContext for site to ctx
func WithRun(ctx context.Context, site string) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     uuid.NewString(),
		Site:      site,
		StartTime: time.Now(),
	})
}

// FromContext returns the run attached to ctx, or a placeholder run
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns base enriched with the run ID
func Logger(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	return base.With().Str("run_id", FromContext(ctx).RunID).Logger()
}

// Elapsed returns the time since the run started
func Elapsed(ctx context.Context) time.Duration {
	return time.Since(FromContext(ctx).StartTime)
}

// RequestError wraps an error with the run it happened in
type RequestError struct {
	RunID string
	Site  string
	Err   error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.Site != "" {
		return fmt.Sprintf("[%s %s] %v", e.Site, e.RunID, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError from context
func NewRequestError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	rc := FromContext(ctx)
	return &RequestError{
		RunID: rc.RunID,
		Site:  rc.Site,
		Err:   err,
	}
}
