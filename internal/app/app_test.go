package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/law-makers/pricecompare/internal/config"
	"github.com/law-makers/pricecompare/internal/engine"
	"github.com/law-makers/pricecompare/pkg/models"
)

func TestNew_BuiltinProfiles(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = models.ModeStatic

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(context.Background())

	if len(a.Profiles.IDs()) == 0 {
		t.Error("expected built-in profiles")
	}

	nav, err := a.Navigator()
	if err != nil {
		t.Fatal(err)
	}
	if nav.Name() != "http" {
		t.Errorf("static mode should use the HTTP navigator, got %s", nav.Name())
	}
	again, _ := a.Navigator()
	if again != nav {
		t.Error("navigator should be created once")
	}
}

func TestLoadProfiles_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	if err := os.WriteFile(path, []byte("sites:\n  - id: broken\n    search_url: not-a-url\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{path, filepath.Join(t.TempDir(), "missing.yaml")} {
		_, err := LoadProfiles(p)
		var ee *engine.EngineError
		if !errors.As(err, &ee) || ee.Code != engine.ErrCodeProfileInvalid {
			t.Errorf("%s: expected PROFILE_INVALID, got %v", p, err)
		}
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Error("expected an error for a nil config")
	}
}
