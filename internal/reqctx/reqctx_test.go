package reqctx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestWithRun(t *testing.T) {
	a := FromContext(WithRun(context.Background(), "myntra"))
	b := FromContext(WithRun(context.Background(), "myntra"))

	if a.Site != "myntra" {
		t.Errorf("site = %q", a.Site)
	}
	if _, err := uuid.Parse(a.RunID); err != nil {
		t.Errorf("run id %q is not a UUID: %v", a.RunID, err)
	}
	if a.RunID == b.RunID {
		t.Error("each run should get its own id")
	}
}

func TestFromContext_Missing(t *testing.T) {
	if rc := FromContext(context.Background()); rc.RunID != "unknown" {
		t.Errorf("expected placeholder run id, got %q", rc.RunID)
	}
}

func TestNewRequestError(t *testing.T) {
	ctx := WithRun(context.Background(), "ajio")
	boom := errors.New("render failed")

	err := NewRequestError(ctx, boom)
	if !errors.Is(err, boom) {
		t.Error("RequestError should unwrap to the cause")
	}
	var re *RequestError
	if !errors.As(err, &re) || re.Site != "ajio" {
		t.Fatalf("expected RequestError for ajio, got %#v", err)
	}
	if !strings.Contains(err.Error(), re.RunID) {
		t.Errorf("message %q should carry the run id", err.Error())
	}
	if NewRequestError(ctx, nil) != nil {
		t.Error("nil error should stay nil")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithRun(context.Background(), "zara")
	l := Logger(ctx, zerolog.New(&buf))
	l.Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"run_id":"`+FromContext(ctx).RunID+`"`) {
		t.Errorf("log line missing run fields: %s", out)
	}
}
