package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// InstanceCache is a bounded LRU of lazily constructed singletons keyed by
// network name. Construction is single-flight: concurrent first lookups of
// the same key run the factory exactly once and all receive its result.
// Once capacity is exceeded the least-recently-used entry is silently
// dropped; in-flight operations on a dropped instance keep running, it just
// can no longer be looked up afresh.
type InstanceCache[T any] struct {
	entries *lru.Cache[string, T]
	group   singleflight.Group
}

// NewInstanceCache creates a cache bounded to capacity entries.
func NewInstanceCache[T any](capacity int) (*InstanceCache[T], error) {
	entries, err := lru.New[string, T](capacity)
	if err != nil {
		return nil, errors.Wrap(err, "could not create instance cache")
	}
	return &InstanceCache[T]{entries: entries}, nil
}

// GetOrCreate returns the cached instance for key, constructing it with
// factory on first access. A factory error is returned to every waiting
// caller and nothing is cached.
func (c *InstanceCache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if instance, ok := c.entries.Get(key); ok {
		return instance, nil
	}
	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A racing caller may have populated the entry while we waited on
		// the flight group.
		if instance, ok := c.entries.Get(key); ok {
			return instance, nil
		}
		instance, err := factory()
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, instance)
		return instance, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// Len returns the number of live entries.
func (c *InstanceCache[T]) Len() int {
	return c.entries.Len()
}

// Remove drops key if present.
func (c *InstanceCache[T]) Remove(key string) {
	c.entries.Remove(key)
}
