// internal/platform/cache/cache_test.go
package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := NewMemoryCache(10)

	c.Set("key", "value", 0)

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "value" {
		t.Errorf("got %v, want value", got)
	}
}

func TestGetMissing(t *testing.T) {
	c := NewMemoryCache(10)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewMemoryCache(10)

	c.Set("short", "value", 10*time.Millisecond)
	if _, ok := c.Get("short"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("expected miss after expiry")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not removed, size %d", c.Size())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache(10)

	c.Set("forever", "value", 0)
	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get("forever"); !ok {
		t.Error("zero ttl entry should never expire")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewMemoryCache(3)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	// Tocar "a" la convierte en la más reciente; "b" pasa a ser la LRU.
	c.Get("a")
	c.Set("d", 4, 0)

	if _, ok := c.Get("b"); ok {
		t.Error("expected lru entry b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry a should survive")
	}
	if c.Size() != 3 {
		t.Errorf("size %d, want 3", c.Size())
	}
}

func TestSetUpdatesExisting(t *testing.T) {
	c := NewMemoryCache(10)

	c.Set("key", "old", 0)
	c.Set("key", "new", 0)

	got, _ := c.Get("key")
	if got != "new" {
		t.Errorf("got %v, want new", got)
	}
	if c.Size() != 1 {
		t.Errorf("update created a second entry, size %d", c.Size())
	}
}

func TestDelete(t *testing.T) {
	c := NewMemoryCache(10)

	c.Set("key", "value", 0)
	c.Delete("key")
	c.Delete("never-existed")

	if _, ok := c.Get("key"); ok {
		t.Error("deleted entry still present")
	}
	if c.Size() != 0 {
		t.Errorf("size %d, want 0", c.Size())
	}
}

func TestInvalidCapacityFallsBack(t *testing.T) {
	c := NewMemoryCache(0)

	for i := 0; i < 50; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, 0)
	}
	if c.Size() != 50 {
		t.Errorf("size %d, want 50 under default capacity", c.Size())
	}
}
