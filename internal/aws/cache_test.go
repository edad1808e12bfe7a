package aws

import (
	"errors"
	"testing"
	"time"
)

func TestFileCache_SetAndGet(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	type testData struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	original := testData{Name: "test", Value: 42}
	if err := cache.Set("test-key", original); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var loaded testData
	if !cache.Get("test-key", time.Hour, &loaded) {
		t.Fatal("Get returned false for valid cache entry")
	}
	if loaded != original {
		t.Errorf("got %+v, want %+v", loaded, original)
	}
}

func TestFileCache_Expired(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	if err := cache.Set("expired", "value"); err != nil {
		t.Fatal(err)
	}

	var result string
	// TTL of 0 means always expired
	if cache.Get("expired", 0, &result) {
		t.Error("expected expired cache miss")
	}
}

func TestFileCache_Missing(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	var result string
	if cache.Get("nonexistent", time.Hour, &result) {
		t.Error("expected cache miss for nonexistent key")
	}
}

func TestFileCache_KeyWithSlash(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	if err := cache.Set("ec2-price-us-east-1-Linux/UNIX", 1.5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	var got float64
	if !cache.Get("ec2-price-us-east-1-Linux/UNIX", time.Hour, &got) || got != 1.5 {
		t.Errorf("Get = %v", got)
	}
}

func TestFileCache_Clear(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	_ = cache.Set("key1", "val1")
	_ = cache.Set("key2", "val2")

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	var result string
	if cache.Get("key1", time.Hour, &result) {
		t.Error("expected cache miss after clear")
	}
}

func TestFileCache_Nil(t *testing.T) {
	var cache *FileCache
	if err := cache.Set("k", "v"); err != nil {
		t.Errorf("Set on nil cache: %v", err)
	}
	var v string
	if cache.Get("k", time.Hour, &v) {
		t.Error("nil cache should always miss")
	}
	if err := cache.Clear(); err != nil {
		t.Errorf("Clear on nil cache: %v", err)
	}
}

func TestCached(t *testing.T) {
	cache := NewFileCache(t.TempDir())
	calls := 0
	fetch := func() (int, error) {
		calls++
		return 7, nil
	}

	for i := 0; i < 3; i++ {
		v, err := cached(cache, "seven", time.Hour, fetch)
		if err != nil || v != 7 {
			t.Fatalf("cached() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	_, err := cached(cache, "broken", time.Hour, func() (int, error) { return 0, errors.New("boom") })
	if err == nil {
		t.Error("expected fetch error")
	}
	var v int
	if cache.Get("broken", time.Hour, &v) {
		t.Error("failed fetch should not be cached")
	}
}
