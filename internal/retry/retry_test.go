package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastConfig(attempts int) Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestDo_SucceedsAfterFailure(t *testing.T) {
	var seen []int
	err := Do(context.Background(), fastConfig(3), zerolog.Nop(), func(attempt int) error {
		seen = append(seen, attempt)
		if attempt < 2 {
			return errors.New("tab crashed")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", seen)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := Do(context.Background(), fastConfig(3), zerolog.Nop(), func(int) error {
		calls++
		return boom
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, boom) {
		t.Errorf("final error should wrap the last failure, got %v", err)
	}
}

func TestDo_Permanent(t *testing.T) {
	boom := errors.New("chrome not found")
	calls := 0
	err := Do(context.Background(), fastConfig(5), zerolog.Nop(), func(int) error {
		calls++
		return Permanent(boom)
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err != boom {
		t.Errorf("permanent error should be returned unwrapped, got %v", err)
	}
}

func TestDo_StatusCodes(t *testing.T) {
	tests := []struct {
		status int
		calls  int
	}{
		{http.StatusServiceUnavailable, 2},
		{http.StatusTooManyRequests, 2},
		{http.StatusNotFound, 1},
		{http.StatusForbidden, 1},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			calls := 0
			_ = Do(context.Background(), fastConfig(2), zerolog.Nop(), func(int) error {
				calls++
				return NewHTTPError(tt.status, http.StatusText(tt.status), "")
			})
			if calls != tt.calls {
				t.Errorf("calls = %d, want %d", calls, tt.calls)
			}
		})
	}
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_ = Do(ctx, fastConfig(5), zerolog.Nop(), func(int) error {
		calls++
		cancel()
		return errors.New("interrupted")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second, Multiplier: 2}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, w := range want {
		if got := calculateBackoff(i, cfg); got != w {
			t.Errorf("attempt %d: backoff %v, want %v", i, got, w)
		}
	}
}
