package cache_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benchwise/gridvault/cache"
)

func TestGetSetCache_SingleFetch(t *testing.T) {
	c := cache.NewCache(10, time.Minute, cache.NewJitterFn(time.Second))

	var calls int32
	fetch := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	for i := 0; i < 5; i++ {
		v, err := c.GetOrSet("k", fetch)
		if err != nil {
			t.Fatalf("GetOrSet failed: %s", err)
		}
		if v != "value" {
			t.Fatalf("GetOrSet returned %v, expected value", v)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", got)
	}
}

func TestGetSetCache_FetchError(t *testing.T) {
	c := cache.NewCache(10, time.Minute, cache.NewJitterFn(time.Second))
	fetchErr := errors.New("upstream failed")

	_, err := c.GetOrSet("k", func() (interface{}, error) {
		return nil, fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	// a failed fetch must not poison the key
	v, err := c.GetOrSet("k", func() (interface{}, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("GetOrSet after failure: %s", err)
	}
	if v != 42 {
		t.Fatalf("GetOrSet returned %v, expected 42", v)
	}
}

func TestGetSetCache_ConcurrentCoalesce(t *testing.T) {
	c := cache.NewCache(10, time.Minute, cache.NewJitterFn(time.Second))

	var calls int32
	var wg sync.WaitGroup
	const goroutines = 20
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			v, err := c.GetOrSet("k", func() (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(5 * time.Millisecond)
				return "value", nil
			})
			if err != nil {
				t.Errorf("GetOrSet failed: %s", err)
				return
			}
			if v != "value" {
				t.Errorf("GetOrSet returned %v", v)
			}
		}()
	}
	wg.Wait()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected concurrent callers to coalesce into one fetch, got %d", got)
	}
}
