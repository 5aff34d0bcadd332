package gradle

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/snapsam/gradle/module"
)

// lookupResult memoizes one completed lookup, success or failure. Failures
// are cached too so a missing module is not re-fetched within a run.
type lookupResult struct {
	metadata *module.Metadata
	err      error
}

// metadataCache memoizes per-coordinate lookups with single-flight
// coalescing: concurrent requests for the same coordinate share one fetch.
//
// The cache is scoped to a resolution context and passed by reference, not
// ambient global state. A lookup result stays cached even if its version
// later loses conflict resolution, since another run may need it.
type metadataCache struct {
	entries  *lru.Cache[string, lookupResult]
	versions *lru.Cache[string, []string]
	group    singleflight.Group

	// fetches counts descriptor fetches actually performed, for the
	// fetch-avoidance diagnostics on the result.
	fetches atomic.Int64
}

func newMetadataCache(size int) (*metadataCache, error) {
	entries, err := lru.New[string, lookupResult](size)
	if err != nil {
		return nil, err
	}
	versions, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &metadataCache{entries: entries, versions: versions}, nil
}

// lookup returns the cached result for key, or runs fetch exactly once for
// concurrent callers and caches its outcome.
func (c *metadataCache) lookup(key string, fetch func() (*module.Metadata, error)) (*module.Metadata, error) {
	if r, ok := c.entries.Get(key); ok {
		return r.metadata, r.err
	}
	v, _, _ := c.group.Do(key, func() (any, error) {
		if r, ok := c.entries.Get(key); ok {
			return r, nil
		}
		c.fetches.Add(1)
		md, err := fetch()
		r := lookupResult{metadata: md, err: err}
		c.entries.Add(key, r)
		return r, nil
	})
	r := v.(lookupResult)
	return r.metadata, r.err
}

// listVersions memoizes available-version listings per module identity.
func (c *metadataCache) listVersions(key string, list func() ([]string, error)) ([]string, error) {
	if vs, ok := c.versions.Get(key); ok {
		return vs, nil
	}
	v, err, _ := c.group.Do("versions!"+key, func() (any, error) {
		if vs, ok := c.versions.Get(key); ok {
			return vs, nil
		}
		vs, err := list()
		if err != nil {
			return nil, err
		}
		c.versions.Add(key, vs)
		return vs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// fetchCount returns the number of descriptor fetches performed so far.
func (c *metadataCache) fetchCount() int64 {
	return c.fetches.Load()
}
