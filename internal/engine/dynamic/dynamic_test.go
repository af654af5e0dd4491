package dynamic

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFindChrome_ConfiguredPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not meaningful on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "chrome")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\necho 'Chromium 120.0'\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := FindChrome(exe); got != exe {
		t.Errorf("FindChrome(%q) = %q", exe, got)
	}
	if got := chromeVersion(exe); got != "Chromium 120.0" {
		t.Errorf("chromeVersion = %q", got)
	}
}

func TestFindChrome_SkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not meaningful on windows")
	}
	dir := t.TempDir()
	plain := filepath.Join(dir, "chrome")
	if err := os.WriteFile(plain, []byte("not a binary"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHROME_PATH", "")

	if got := FindChrome(plain); got == plain {
		t.Error("a non-executable file should not be returned")
	}
	if isExecutable(dir) {
		t.Error("directories are not executables")
	}
}

func TestChromeVersion_Unknown(t *testing.T) {
	if got := chromeVersion(""); got != "unknown" {
		t.Errorf("chromeVersion(\"\") = %q", got)
	}
}

func TestSessionBound_FollowsParent(t *testing.T) {
	s := &session{ctx: context.Background(), logger: zerolog.Nop()}
	parent, cancelParent := context.WithCancel(context.Background())

	ctx, cancel := s.bound(parent, time.Minute)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context should end when the caller's context ends")
	}
}

func TestSessionBound_Timeout(t *testing.T) {
	s := &session{ctx: context.Background(), logger: zerolog.Nop()}
	ctx, cancel := s.bound(context.Background(), 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context should honour its timeout")
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	s := &session{ctx: context.Background(), logger: zerolog.Nop()}
	s.closed = true
	if err := s.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, err := s.Render(context.Background(), "https://shop.example/"); err == nil {
		t.Error("Render after Close should fail")
	}
}
