package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pourcost/backend/internal/domain"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	cache := NewMemoryCache(time.Minute)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	t.Run("string round trips unchanged", func(t *testing.T) {
		if err := cache.Set(ctx, "k1", "value", time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := cache.Get(ctx, "k1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "value" {
			t.Errorf("Get() = %v, want value", got)
		}
	})

	t.Run("structs come back JSON-shaped", func(t *testing.T) {
		breakdown := domain.CostBreakdown{CalculationID: 3, RecipeName: "Negroni", TotalCost: 4.2}
		if err := cache.Set(ctx, "k2", &breakdown, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := cache.Get(ctx, "k2")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		m, ok := got.(map[string]interface{})
		if !ok {
			t.Fatalf("Get() type = %T, want map", got)
		}
		if m["recipeName"] != "Negroni" || m["totalCost"] != 4.2 {
			t.Errorf("Get() = %v", m)
		}
	})

	t.Run("expired entries miss", func(t *testing.T) {
		if err := cache.Set(ctx, "k3", "soon", time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		if _, err := cache.Get(ctx, "k3"); err != domain.ErrCacheMiss {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		if err := cache.Set(ctx, "k4", 1, 0); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if ok, _ := cache.Exists(ctx, "k4"); !ok {
			t.Error("Exists() = false, want true")
		}
	})

	t.Run("unencodable values are rejected", func(t *testing.T) {
		if err := cache.Set(ctx, "k5", make(chan int), time.Minute); err == nil {
			t.Error("Set() expected error for channel value")
		}
	})
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestMemoryCache(t)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_DeleteAndExists(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "key")
	if err != nil || exists {
		t.Fatalf("Exists() = %v, %v; want false, nil", exists, err)
	}

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if exists, _ := cache.Exists(ctx, "key"); !exists {
		t.Error("Exists() = false after Set")
	}

	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, "key"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "live", "v", time.Minute)
	_ = cache.Set(ctx, "dead", "v", time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	if size := cache.Size(); size != 2 {
		t.Fatalf("Size() = %d before eviction, want 2", size)
	}
	cache.evictExpired()
	if size := cache.Size(); size != 1 {
		t.Errorf("Size() = %d after eviction, want 1", size)
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(time.Millisecond)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := string(rune('a' + id))
			if err := cache.Set(ctx, key, id, time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
	if size := cache.Size(); size != 10 {
		t.Errorf("Size() = %d, want 10", size)
	}
}
