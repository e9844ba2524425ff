// Package cache provides generic cache backends that act as the local source of
// truth for a network-bound resource.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by every backend when a key has no cached value.
var ErrNotFound = errors.New("key not found in cache")

// Cache is a generic interface for a caching layer.
type Cache[K any, V any] interface {
	// FetchFromCache retrieves an item from the cache.
	// A miss returns an error wrapping ErrNotFound.
	FetchFromCache(ctx context.Context, key K) (V, error)
	// WriteToCache adds an item to the cache.
	WriteToCache(ctx context.Context, key K, value V) error
}

// IsNotFound reports whether err is a cache miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
