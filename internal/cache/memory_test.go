package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(1024)

	key := Key("Focus - 2 minutes", "en", "com", false)
	value := []byte("clip-pcm")

	if err := cache.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := cache.Get(key)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if string(got) != string(value) {
		t.Errorf("Get = %q, want %q", got, value)
	}
	if cache.Size() != int64(len(value)) {
		t.Errorf("Size = %d, want %d", cache.Size(), len(value))
	}

	cache.Delete(key)
	if cache.Contains(key) {
		t.Error("key still present after Delete")
	}
	if cache.Size() != 0 {
		t.Errorf("Size after Delete = %d", cache.Size())
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	cache := NewMemoryCache(30)

	for i := 0; i < 3; i++ {
		if err := cache.Put(fmt.Sprintf("k%d", i), make([]byte, 10)); err != nil {
			t.Fatalf("Put k%d: %v", i, err)
		}
	}

	// Touch k0 so k1 becomes the oldest.
	if _, ok := cache.Get("k0"); !ok {
		t.Fatal("k0 missing")
	}
	if err := cache.Put("k3", make([]byte, 10)); err != nil {
		t.Fatalf("Put k3: %v", err)
	}

	if cache.Contains("k1") {
		t.Error("k1 should have been evicted")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if !cache.Contains(k) {
			t.Errorf("%s should still be cached", k)
		}
	}
	if s := cache.Stats(); s.Evictions != 1 || s.Items != 3 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestMemoryCache_ItemTooLarge(t *testing.T) {
	cache := NewMemoryCache(8)
	if err := cache.Put("big", make([]byte, 9)); err != ErrItemTooLarge {
		t.Errorf("Put = %v, want ErrItemTooLarge", err)
	}
}

func TestMemoryCache_ReplaceUpdatesSize(t *testing.T) {
	cache := NewMemoryCache(100)
	_ = cache.Put("k", make([]byte, 40))
	_ = cache.Put("k", make([]byte, 10))
	if cache.Size() != 10 {
		t.Errorf("Size = %d, want 10", cache.Size())
	}
}

func TestMemoryCache_Prune(t *testing.T) {
	cache := NewMemoryCache(100)
	_ = cache.Put("old", []byte("a"))
	time.Sleep(20 * time.Millisecond)
	_ = cache.Put("new", []byte("b"))

	if n := cache.Prune(10 * time.Millisecond); n != 1 {
		t.Errorf("Prune = %d, want 1", n)
	}
	if cache.Contains("old") || !cache.Contains("new") {
		t.Error("wrong entry pruned")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(1 << 16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", id, j%10)
				_ = cache.Put(key, []byte(key))
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if s := cache.Stats(); s.Hits+s.Misses != 800 {
		t.Errorf("lookups = %d, want 800", s.Hits+s.Misses)
	}
}

func TestStatsHitRate(t *testing.T) {
	if (Stats{}).HitRate() != 0 {
		t.Error("empty stats should have zero hit rate")
	}
	if got := (Stats{Hits: 3, Misses: 1}).HitRate(); got != 0.75 {
		t.Errorf("HitRate = %v, want 0.75", got)
	}
}

func TestKey(t *testing.T) {
	a := Key("ten", "en", "com", false)
	if a != Key("ten", "en", "com", false) {
		t.Error("Key is not stable")
	}
	for _, b := range []string{
		Key("ten", "en", "com", true),
		Key("ten", "fr", "com", false),
		Key("ten", "en", "co.uk", false),
		Key("nine", "en", "com", false),
	} {
		if a == b {
			t.Error("Key ignores an input")
		}
	}
	if len(a) != 32 {
		t.Errorf("len(Key) = %d, want 32", len(a))
	}
}
