package resolver

import (
	"context"
	"sync"
	"testing"
)

func TestCacheMemoizesFound(t *testing.T) {
	calls := 0
	cache := NewCache(func(ctx context.Context, key string) Resolved[string] {
		calls++
		return Found("token-" + key)
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got := cache.Get(ctx, "0xaa")
		if got.Status != StatusFound || got.Value != "token-0xaa" {
			t.Fatalf("unexpected result %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 lookup, got %d", calls)
	}
}

func TestCacheMemoizesNotFound(t *testing.T) {
	calls := 0
	cache := NewCache(func(ctx context.Context, key string) Resolved[string] {
		calls++
		return NotFound[string]()
	})

	ctx := context.Background()
	cache.Get(ctx, "0xaa")
	got := cache.Get(ctx, "0xaa")
	if got.Status != StatusNotFound {
		t.Fatalf("unexpected status %v", got.Status)
	}
	if calls != 1 {
		t.Errorf("negative result should be cached, got %d lookups", calls)
	}
}

func TestCacheDoesNotMemoizeUnavailable(t *testing.T) {
	calls := 0
	cache := NewCache(func(ctx context.Context, key string) Resolved[string] {
		calls++
		if calls == 1 {
			return Unavailable[string]()
		}
		return Found("recovered")
	})

	ctx := context.Background()
	if got := cache.Get(ctx, "0xaa"); got.Status != StatusUnavailable {
		t.Fatalf("expected unavailable on first read, got %+v", got)
	}
	if got := cache.Get(ctx, "0xaa"); got.Status != StatusFound || got.Value != "recovered" {
		t.Fatalf("expected retry to reach the source, got %+v", got)
	}
	if calls != 2 {
		t.Errorf("expected 2 lookups, got %d", calls)
	}
}

func TestCacheConcurrentReaders(t *testing.T) {
	cache := NewCache(func(ctx context.Context, key int) Resolved[int] {
		return Found(key * 2)
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := j % 7
				got := cache.Get(ctx, key)
				if got.Value != key*2 {
					t.Errorf("got %d for key %d", got.Value, key)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != 7 {
		t.Errorf("expected 7 distinct entries, got %d", cache.Len())
	}
}

func TestValueOr(t *testing.T) {
	if got := Found("name").ValueOr("7"); got != "name" {
		t.Errorf("got %q", got)
	}
	if got := NotFound[string]().ValueOr("7"); got != "7" {
		t.Errorf("got %q", got)
	}
	if got := Unavailable[string]().ValueOr("7"); got != "7" {
		t.Errorf("got %q", got)
	}
}
