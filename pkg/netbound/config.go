package netbound

import (
	"context"

	"github.com/illmade-knight/go-netbound/pkg/connectivity"
)

// Config selects the branch a Loader takes for one invocation.
type Config struct {
	// LoadFromCacheFirst emits the cached value before (or instead of) the network call.
	LoadFromCacheFirst bool `yaml:"load_from_cache_first"`
	// RequiresNetwork is false for resources that are always served from cache.
	RequiresNetwork bool `yaml:"requires_network"`
	// NetworkAvailable is the connectivity snapshot for this invocation.
	NetworkAvailable bool `yaml:"-"`
	// CacheOnSuccess persists a successful payload and emits the re-read cache.
	CacheOnSuccess bool `yaml:"cache_on_success"`
	// EmitOnUncachedSuccess emits Success(cache) after a network success that
	// was not persisted. Without it such an invocation ends with no terminal state.
	EmitOnUncachedSuccess bool `yaml:"emit_on_uncached_success"`
}

// WithConnectivity returns a copy of c with NetworkAvailable taken from checker.
// The checker is consulted once.
func (c Config) WithConnectivity(ctx context.Context, checker connectivity.Checker) Config {
	c.NetworkAvailable = checker != nil && checker.Available(ctx)
	return c
}

// Path names the branch an invocation takes.
type Path string

const (
	// PathOffline resolves from cache because the network is unavailable.
	PathOffline Path = "offline"
	// PathCacheOnly resolves from cache because the resource needs no network.
	PathCacheOnly Path = "cache_only"
	// PathNetwork calls the network.
	PathNetwork Path = "network"
)

// Path reports which branch c selects.
func (c Config) Path() Path {
	switch {
	case !c.NetworkAvailable:
		return PathOffline
	case !c.RequiresNetwork:
		return PathCacheOnly
	default:
		return PathNetwork
	}
}
