package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cespare/xxhash"
	"golang.org/x/sync/singleflight"

	"userstream/internal/domain"
	"userstream/internal/logger"
)

// QueryCache memoizes materialized query results for the lifetime of the
// process. There is no eviction and no expiry; the modeled workload is
// read-mostly idempotent queries, and Purge exists for everything else.
//
// Entries are keyed by a fingerprint of the query text and its positional
// parameters, so identical text with different parameters never shares an
// entry. Cold keys are computed at most once even under concurrent callers:
// the singleflight group spans the check-then-compute sequence, and the
// mutex is never held across a store round trip.
type QueryCache struct {
	mu      sync.Mutex
	entries map[uint64][]domain.Record
	group   singleflight.Group
	log     logger.Logger
}

// NewQueryCache returns an empty cache reporting hits and misses to log.
func NewQueryCache(log logger.Logger) *QueryCache {
	if log == nil {
		log = logger.Nop
	}
	return &QueryCache{
		entries: make(map[uint64][]domain.Record),
		log:     log,
	}
}

// Fingerprint hashes a query and its positional parameters into a cache key.
func Fingerprint(query string, args []any) uint64 {
	h := xxhash.New()
	h.Write([]byte(query))
	for _, arg := range args {
		h.Write([]byte{0})
		fmt.Fprintf(h, "%v", arg)
	}
	return h.Sum64()
}

// Fetch returns the cached result for the query, computing and storing it
// via fn on first use. The returned records are shared across callers and
// must not be mutated. A cache miss is not an error; fn's error is returned
// uncached, so a failed computation is retried by the next caller.
func (c *QueryCache) Fetch(ctx context.Context, query string, args []any, fn func(ctx context.Context) ([]domain.Record, error)) ([]domain.Record, error) {
	key := Fingerprint(query, args)

	c.mu.Lock()
	records, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		c.log.Printf("cache hit: %s", query)
		return records, nil
	}

	result, err, _ := c.group.Do(strconv.FormatUint(key, 16), func() (interface{}, error) {
		// A sibling flight may have populated the entry between our check
		// and this call.
		c.mu.Lock()
		records, ok := c.entries[key]
		c.mu.Unlock()
		if ok {
			c.log.Printf("cache hit: %s", query)
			return records, nil
		}

		c.log.Printf("cache miss: %s", query)
		records, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = records
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Record), nil
}

// Len reports the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *QueryCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64][]domain.Record)
}
