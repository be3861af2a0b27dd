package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(maxSize int, ttl time.Duration) (*Cache[string, int], *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New[string, int](maxSize, ttl)
	c.now = clock.Now
	return c, clock
}

// =============================================================================
// New Tests
// =============================================================================

func TestNew(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		c := New[string, int](100, 5*time.Minute)

		if c.maxSize != 100 {
			t.Errorf("maxSize = %d, want 100", c.maxSize)
		}
		if c.ttl != 5*time.Minute {
			t.Errorf("ttl = %v, want 5m", c.ttl)
		}
	})

	t.Run("zero maxSize uses default", func(t *testing.T) {
		c := New[string, int](0, time.Minute)

		if c.maxSize != DefaultMaxSize {
			t.Errorf("maxSize = %d, want %d (default)", c.maxSize, DefaultMaxSize)
		}
	})

	t.Run("negative maxSize uses default", func(t *testing.T) {
		c := New[string, int](-10, time.Minute)

		if c.maxSize != DefaultMaxSize {
			t.Errorf("maxSize = %d, want %d (default)", c.maxSize, DefaultMaxSize)
		}
	})
}

// =============================================================================
// Get/Put Tests
// =============================================================================

func TestCache_GetPut(t *testing.T) {
	c, _ := newTestCache(10, 0)

	if _, ok := c.Get("a"); ok {
		t.Error("empty cache returned a hit")
	}

	c.Put("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	c.Put("a", 2)
	v, _ = c.Get("a")
	if v != 2 {
		t.Errorf("Get(a) after update = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c, _ := newTestCache(2, 0)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most recently used
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}

func TestCache_TTL(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Put("a", 1)
	clock.Advance(30 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("entry expired too early")
	}

	clock.Advance(31 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, Len = %d", c.Len())
	}
}

func TestCache_GetOrCreate(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	calls := 0
	create := func() int {
		calls++
		return calls * 10
	}

	if v := c.GetOrCreate("a", create); v != 10 {
		t.Errorf("first GetOrCreate = %d, want 10", v)
	}
	if v := c.GetOrCreate("a", create); v != 10 {
		t.Errorf("second GetOrCreate = %d, want cached 10", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	clock.Advance(2 * time.Minute)
	if v := c.GetOrCreate("a", create); v != 20 {
		t.Errorf("GetOrCreate after expiry = %d, want 20", v)
	}
}

func TestCache_RemoveClear(t *testing.T) {
	c, _ := newTestCache(10, 0)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be removed")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestCache_Stats(t *testing.T) {
	c, _ := newTestCache(10, 0)
	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", stats.Hits, stats.Misses)
	}
	if stats.Size != 1 || stats.MaxSize != 10 {
		t.Errorf("size/max = %d/%d, want 1/10", stats.Size, stats.MaxSize)
	}
	if stats.HitRate < 66 || stats.HitRate > 67 {
		t.Errorf("HitRate = %f, want ~66.7", stats.HitRate)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New[string, int](50, time.Minute)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*i)%80)
				c.Put(key, i)
				c.Get(key)
				c.GetOrCreate(key, func() int { return g })
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds maxSize 50", c.Len())
	}
}
