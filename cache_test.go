package gradle

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/snapsam/gradle/module"
)

func TestCacheMemoizesSuccess(t *testing.T) {
	cache, err := newMetadataCache(16)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int64
	fetch := func() (*module.Metadata, error) {
		calls.Add(1)
		return &module.Metadata{Coordinate: module.Coordinate{Group: "g", Name: "n", Version: "1"}}, nil
	}

	for i := 0; i < 3; i++ {
		md, err := cache.lookup("g:n:1", fetch)
		if err != nil {
			t.Fatalf("lookup error = %v", err)
		}
		if md.Coordinate.Version != "1" {
			t.Fatalf("bad metadata: %v", md.Coordinate)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("fetch ran %d times, want 1", calls.Load())
	}
	if cache.fetchCount() != 1 {
		t.Errorf("fetchCount = %d, want 1", cache.fetchCount())
	}
}

func TestCacheMemoizesFailure(t *testing.T) {
	cache, err := newMetadataCache(16)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int64
	wantErr := errors.New("boom")
	fetch := func() (*module.Metadata, error) {
		calls.Add(1)
		return nil, wantErr
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.lookup("g:n:1", fetch); !errors.Is(err, wantErr) {
			t.Fatalf("lookup error = %v, want boom", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("failed fetch ran %d times, want 1 (negative caching)", calls.Load())
	}
}

func TestCacheCoalescesConcurrentLookups(t *testing.T) {
	cache, err := newMetadataCache(16)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int64
	gate := make(chan struct{})
	fetch := func() (*module.Metadata, error) {
		calls.Add(1)
		<-gate
		return &module.Metadata{}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.lookup("g:n:1", fetch); err != nil {
				t.Error(err)
			}
		}()
	}
	close(gate)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("concurrent lookups ran fetch %d times, want 1", calls.Load())
	}
}

func TestCacheListVersions(t *testing.T) {
	cache, err := newMetadataCache(16)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int64
	list := func() ([]string, error) {
		calls.Add(1)
		return []string{"1.0", "2.0"}, nil
	}

	for i := 0; i < 2; i++ {
		vs, err := cache.listVersions("g:n", list)
		if err != nil {
			t.Fatal(err)
		}
		if len(vs) != 2 {
			t.Fatalf("versions = %v", vs)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("listing ran %d times, want 1", calls.Load())
	}

	// Listing failures are not cached.
	fails := func() ([]string, error) { return nil, errors.New("down") }
	if _, err := cache.listVersions("g:other", fails); err == nil {
		t.Fatal("want listing error")
	}
	ok := func() ([]string, error) { return []string{"3.0"}, nil }
	vs, err := cache.listVersions("g:other", ok)
	if err != nil || len(vs) != 1 {
		t.Errorf("retry after failure = %v, %v; want [3.0]", vs, err)
	}
}
