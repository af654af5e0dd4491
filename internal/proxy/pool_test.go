package proxy

import (
	"testing"
	"time"
)

func TestProxyPool(t *testing.T) {
	proxies := []string{"p1", "p2", "p3"}
	pool := NewProxyPool(proxies)

	// Test rotation
	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.GetNext(); p != "p2" {
		t.Errorf("Expected p2, got %s", p)
	}
	if p := pool.GetNext(); p != "p3" {
		t.Errorf("Expected p3, got %s", p)
	}
	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}

	pool.MarkFailed("p2")

	// Current index is at p2 (after returning p1)
	if p := pool.GetNext(); p != "p3" {
		t.Errorf("Expected p3 (skipping p2), got %s", p)
	}
	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.GetNext(); p != "p3" {
		t.Errorf("Expected p3, got %s", p)
	}

	pool.MarkHealthy("p2")

	// Current index is at p1 (after returning p3)
	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.GetNext(); p != "p2" {
		t.Errorf("Expected p2, got %s", p)
	}
}

func TestProxyPool_AllFailedReturnsOldest(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pool := NewProxyPool([]string{"p1", "p2"})
	pool.now = func() time.Time { return clock }

	pool.MarkFailed("p2")
	clock = clock.Add(time.Minute)
	pool.MarkFailed("p1")

	if p := pool.GetNext(); p != "p2" {
		t.Errorf("Expected the longest-failed proxy p2, got %s", p)
	}
}

func TestProxyPool_CooldownExpires(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pool := NewProxyPool([]string{"p1", "p2"})
	pool.now = func() time.Time { return clock }

	pool.MarkFailed("p1")
	if p := pool.GetNext(); p != "p2" {
		t.Fatalf("Expected p2 while p1 cools down, got %s", p)
	}
	clock = clock.Add(DefaultCooldown)
	if p := pool.GetNext(); p != "p1" {
		t.Errorf("Expected p1 after cooldown, got %s", p)
	}
}

func TestProxyPool_Empty(t *testing.T) {
	pool := NewProxyPool([]string{"", ""})
	if pool.Len() != 0 {
		t.Errorf("empty entries should be dropped, Len = %d", pool.Len())
	}
	if p := pool.GetNext(); p != "" {
		t.Errorf("Expected no proxy, got %q", p)
	}
}
