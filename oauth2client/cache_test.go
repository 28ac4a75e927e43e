package oauth2client

import (
	"sync"
	"testing"
)

func TestMemoryCache(t *testing.T) {
	var cache MemoryCache // zero value is usable

	if _, ok := cache.Get("client"); ok {
		t.Error("expected empty cache")
	}

	cache.Set("client", "token-1")
	cache.Set("client", "token-2")

	if token, ok := cache.Get("client"); !ok || token != "token-2" {
		t.Errorf("expected 'token-2', got %q (%v)", token, ok)
	}

	cache.Delete("client")
	if _, ok := cache.Get("client"); ok {
		t.Error("expected entry to be deleted")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cache.Set("client", "token")
		}()
		go func() {
			defer wg.Done()
			cache.Get("client")
		}()
	}
	wg.Wait()

	if token, ok := cache.Get("client"); !ok || token != "token" {
		t.Errorf("expected 'token', got %q (%v)", token, ok)
	}
}
