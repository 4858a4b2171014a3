package cache

import (
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string](time.Minute)

	// 1. Read non-existent key
	if _, ok := c.Get("ПМ-21"); ok {
		t.Errorf("expected Get to miss for a key that was never set")
	}

	// 2. Write and read back
	c.Set("ПМ-21", "schedule-data")
	value, ok := c.Get("ПМ-21")
	if !ok {
		t.Fatalf("expected Get to hit for a freshly set key")
	}
	if value != "schedule-data" {
		t.Errorf("expected 'schedule-data', got %q", value)
	}

	// 3. Clear drops everything
	c.Clear()
	if _, ok := c.Get("ПМ-21"); ok {
		t.Errorf("expected Get to miss after Clear")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New[int](30 * time.Millisecond)

	c.Set("key", 42)

	if _, ok := c.Get("key"); !ok {
		t.Fatalf("expected entry to be alive right after Set")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Errorf("expected entry to be gone after the TTL elapsed")
	}
}

func TestGetOrSetCachesSuccess(t *testing.T) {
	c := New[string](time.Minute)

	calls := 0
	factory := func() (string, bool) {
		calls++
		return "built", true
	}

	value, ok := c.GetOrSet("key", factory)
	if !ok || value != "built" {
		t.Fatalf("expected first GetOrSet to build the value, got %q ok=%v", value, ok)
	}

	value, ok = c.GetOrSet("key", factory)
	if !ok || value != "built" {
		t.Fatalf("expected second GetOrSet to return the cached value")
	}
	if calls != 1 {
		t.Errorf("expected factory to run exactly once, ran %d times", calls)
	}
}

func TestGetOrSetSkipsFailure(t *testing.T) {
	c := New[string](time.Minute)

	calls := 0
	failing := func() (string, bool) {
		calls++
		return "", false
	}

	if _, ok := c.GetOrSet("key", failing); ok {
		t.Fatalf("expected GetOrSet to report failure when the factory fails")
	}

	// A failed result must not be cached: the factory runs again
	c.GetOrSet("key", failing)
	if calls != 2 {
		t.Errorf("expected failing factory to run twice, ran %d times", calls)
	}
}
