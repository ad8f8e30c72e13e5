// Package cache holds the two process-wide caches of the gateway: the
// time-boxed quote cache behind the two-step quote/execute API, and the
// bounded cache of per-network connector singletons.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	quoteCacheNumCounters = 10_000
	quoteCacheMaxCost     = 1_000
	quoteCacheBufferItems = 64
)

// QuoteCache maps an opaque quote id to a previously computed quote so that
// a quote shown to a caller is exactly the quote executed later. Entries
// expire after a fixed TTL regardless of reads; Get never extends the TTL.
type QuoteCache[T any] struct {
	entries *ristretto.Cache[string, T]
	ttl     time.Duration
}

// NewQuoteCache creates a cache whose entries live for ttl.
func NewQuoteCache[T any](ttl time.Duration) (*QuoteCache[T], error) {
	entries, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters: quoteCacheNumCounters,
		MaxCost:     quoteCacheMaxCost,
		BufferItems: quoteCacheBufferItems,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create quote cache")
	}
	return &QuoteCache[T]{entries: entries, ttl: ttl}, nil
}

// Put stores the payload under a fresh id and returns the id. The write is
// synchronous: a subsequent Get for the id observes it.
func (c *QuoteCache[T]) Put(payload T) string {
	id := uuid.NewString()
	c.entries.SetWithTTL(id, payload, 1, c.ttl)
	c.entries.Wait()
	return id
}

// Get returns the payload for id if it is still live.
func (c *QuoteCache[T]) Get(id string) (T, bool) {
	return c.entries.Get(id)
}

// Delete evicts id. Execute flows call this on successful execution so a
// quote is executed at most once; on transient execution failure the entry
// is left for retry within the TTL.
func (c *QuoteCache[T]) Delete(id string) {
	c.entries.Del(id)
	c.entries.Wait()
}

// Close releases the cache's background resources.
func (c *QuoteCache[T]) Close() {
	c.entries.Close()
}
