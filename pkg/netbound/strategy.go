package netbound

import (
	"context"
	"errors"

	"github.com/illmade-knight/go-netbound/pkg/cache"
)

// Strategy supplies the collaborators of one resource: C is what the cache
// holds, R is the payload the server returns.
type Strategy[C any, R any] interface {
	// ReadCache returns the currently cached value.
	ReadCache(ctx context.Context) (C, error)
	// WriteCache persists a network payload.
	WriteCache(ctx context.Context, payload R) error
	// CallNetwork performs the remote call.
	CallNetwork(ctx context.Context) Outcome[R]
	// OnSuccess is invoked for every successful network outcome, whether or
	// not it was cached.
	OnSuccess(ctx context.Context, outcome Succeeded[R])
}

// NetworkCall performs a remote call and classifies its result.
type NetworkCall[R any] func(ctx context.Context) Outcome[R]

// StrategyFuncs adapts plain functions to a Strategy. Nil fields behave as:
// Read returns the zero value, Write and Success do nothing, Call yields NoResponse.
type StrategyFuncs[C any, R any] struct {
	Read    func(ctx context.Context) (C, error)
	Write   func(ctx context.Context, payload R) error
	Call    NetworkCall[R]
	Success func(ctx context.Context, outcome Succeeded[R])
}

func (s StrategyFuncs[C, R]) ReadCache(ctx context.Context) (C, error) {
	if s.Read == nil {
		var zero C
		return zero, nil
	}
	return s.Read(ctx)
}

func (s StrategyFuncs[C, R]) WriteCache(ctx context.Context, payload R) error {
	if s.Write == nil {
		return nil
	}
	return s.Write(ctx, payload)
}

func (s StrategyFuncs[C, R]) CallNetwork(ctx context.Context) Outcome[R] {
	if s.Call == nil {
		return NoResponse[R]{}
	}
	return s.Call(ctx)
}

func (s StrategyFuncs[C, R]) OnSuccess(ctx context.Context, outcome Succeeded[R]) {
	if s.Success != nil {
		s.Success(ctx, outcome)
	}
}

// CachedStrategy serves one key of a cache.Cache and refreshes it from a
// NetworkCall. The payload type is stored as-is.
type CachedStrategy[K comparable, V any] struct {
	cache     cache.Cache[K, V]
	key       K
	call      NetworkCall[V]
	onSuccess func(ctx context.Context, outcome Succeeded[V])
}

// NewCachedStrategy binds key of c to call. onSuccess may be nil.
func NewCachedStrategy[K comparable, V any](
	c cache.Cache[K, V],
	key K,
	call NetworkCall[V],
	onSuccess func(ctx context.Context, outcome Succeeded[V]),
) (*CachedStrategy[K, V], error) {
	if c == nil {
		return nil, errors.New("cache cannot be nil")
	}
	if call == nil {
		return nil, errors.New("network call cannot be nil")
	}
	return &CachedStrategy[K, V]{cache: c, key: key, call: call, onSuccess: onSuccess}, nil
}

// ReadCache returns the cached value; a miss reads as the zero value.
func (s *CachedStrategy[K, V]) ReadCache(ctx context.Context) (V, error) {
	v, err := s.cache.FetchFromCache(ctx, s.key)
	if cache.IsNotFound(err) {
		var zero V
		return zero, nil
	}
	return v, err
}

func (s *CachedStrategy[K, V]) WriteCache(ctx context.Context, payload V) error {
	return s.cache.WriteToCache(ctx, s.key, payload)
}

func (s *CachedStrategy[K, V]) CallNetwork(ctx context.Context) Outcome[V] {
	return s.call(ctx)
}

func (s *CachedStrategy[K, V]) OnSuccess(ctx context.Context, outcome Succeeded[V]) {
	if s.onSuccess != nil {
		s.onSuccess(ctx, outcome)
	}
}
