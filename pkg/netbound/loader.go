package netbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Loader runs the cache-then-network sequence for one Strategy.
// A Loader holds no per-invocation state and may be run concurrently.
type Loader[C any, R any] struct {
	strategy Strategy[C, R]
	observer Observer
	logger   zerolog.Logger
}

// NewLoader creates a Loader. A nil observer is replaced by NoopObserver.
func NewLoader[C any, R any](strategy Strategy[C, R], observer Observer, logger zerolog.Logger) (*Loader[C, R], error) {
	if strategy == nil {
		return nil, errors.New("strategy cannot be nil")
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Loader[C, R]{
		strategy: strategy,
		observer: observer,
		logger:   logger.With().Str("component", "ResourceLoader").Logger(),
	}, nil
}

// Run starts one invocation and returns the channel its states are sent on.
// The channel is unbuffered and closed when the sequence ends. Cancelling ctx
// stops the sequence between steps without emitting an error.
func (l *Loader[C, R]) Run(ctx context.Context, cfg Config) <-chan Resource[C] {
	out := make(chan Resource[C])
	inv := &invocation[C, R]{
		strategy: l.strategy,
		observer: l.observer,
		out:      out,
		logger: l.logger.With().
			Str("invocation_id", uuid.NewString()).
			Str("path", string(cfg.Path())).
			Logger(),
	}
	go func() {
		defer close(out)
		inv.run(ctx, cfg)
	}()
	return out
}

// Run is a convenience for a one-off invocation without logging or metrics.
func Run[C any, R any](ctx context.Context, cfg Config, strategy Strategy[C, R]) <-chan Resource[C] {
	l := &Loader[C, R]{strategy: strategy, observer: NoopObserver{}, logger: zerolog.Nop()}
	return l.Run(ctx, cfg)
}

// Collect drains ch and returns every state received.
func Collect[T any](ch <-chan Resource[T]) []Resource[T] {
	var states []Resource[T]
	for r := range ch {
		states = append(states, r)
	}
	return states
}

// invocation carries the state of a single Run.
type invocation[C any, R any] struct {
	strategy  Strategy[C, R]
	observer  Observer
	out       chan<- Resource[C]
	logger    zerolog.Logger
	cancelled bool
}

func (inv *invocation[C, R]) run(ctx context.Context, cfg Config) {
	path := cfg.Path()
	inv.observer.InvocationStarted(path)
	inv.logger.Debug().Msg("Resource load started.")

	if path != PathNetwork {
		inv.resolveFromCache(ctx, cfg)
		return
	}

	if cfg.LoadFromCacheFirst {
		data, ok := inv.readCache(ctx)
		if !ok {
			return
		}
		if !inv.emit(ctx, Loading(&data)) {
			return
		}
	}

	if !inv.active(ctx) {
		return
	}
	start := time.Now()
	outcome := inv.strategy.CallNetwork(ctx)
	if outcome == nil {
		outcome = NoResponse[R]{}
	}
	inv.observer.NetworkCompleted(outcome.Kind(), time.Since(start))
	inv.logger.Debug().Str("outcome", outcome.Kind().String()).Dur("elapsed", time.Since(start)).Msg("Network request completed.")

	if !inv.active(ctx) {
		return
	}

	switch o := outcome.(type) {
	case Succeeded[R]:
		inv.handleSuccess(ctx, cfg, o)
	case Empty[R]:
		inv.logger.Info().Int("status_code", o.StatusCode).Msg("Network request response received with Empty status.")
		inv.emit(ctx, Error[C](o.Message, nil, nil).WithKind(KindServer))
	case Failed[R]:
		inv.logger.Info().Int("status_code", o.StatusCode).Msg("Network request response received with Error status.")
		inv.emit(ctx, Error[C](o.Message, nil, nil).WithKind(KindServer))
	case NoResponse[R]:
		inv.logger.Warn().AnErr("transport_error", o.Err).Msg("Network request produced no response.")
		inv.emit(ctx, Error[C](MsgTimeout, nil, timeoutCause(o.Err)).WithKind(KindTimeout))
	default:
		inv.logger.Error().Str("outcome", outcome.Kind().String()).Msg("Unrecognized network outcome, treating as no response.")
		inv.emit(ctx, Error[C](MsgTimeout, nil, ErrTimeout).WithKind(KindTimeout))
	}
}

// resolveFromCache serves invocations that never touch the network.
func (inv *invocation[C, R]) resolveFromCache(ctx context.Context, cfg Config) {
	if !cfg.LoadFromCacheFirst {
		inv.emit(ctx, Error[C](MsgNetworkNotAvailable, nil, nil).WithKind(KindNoConnectivity))
		return
	}
	data, ok := inv.readCache(ctx)
	if !ok {
		return
	}
	inv.emit(ctx, Success(data))
}

func (inv *invocation[C, R]) handleSuccess(ctx context.Context, cfg Config, o Succeeded[R]) {
	terminated := false

	if cfg.CacheOnSuccess && o.Payload != nil {
		inv.logger.Info().Msg("Network request response received with success status, saving to cache.")
		if err := inv.strategy.WriteCache(ctx, *o.Payload); err != nil {
			inv.logger.Error().Err(err).Msg("Failed to write network payload to cache.")
			if !inv.emit(ctx, cacheError[C]("write", err)) {
				return
			}
			terminated = true
		} else {
			if !inv.emitFromCache(ctx) {
				return
			}
			terminated = true
		}
	}

	if !terminated && cfg.EmitOnUncachedSuccess {
		if !inv.emitFromCache(ctx) {
			return
		}
		terminated = true
	}

	if !inv.active(ctx) {
		return
	}
	inv.strategy.OnSuccess(ctx, o)

	if !terminated {
		inv.observer.SilentCompletion()
		inv.logger.Warn().
			Bool("cache_on_success", cfg.CacheOnSuccess).
			Bool("has_payload", o.Payload != nil).
			Msg("Network success completed without a terminal state.")
	}
}

// emitFromCache re-reads the cache and emits Success, or a cache Error if the
// read fails. It returns false once the invocation is cancelled.
func (inv *invocation[C, R]) emitFromCache(ctx context.Context) bool {
	if !inv.active(ctx) {
		return false
	}
	data, err := inv.strategy.ReadCache(ctx)
	if err != nil {
		inv.logger.Error().Err(err).Msg("Failed to read cache.")
		return inv.emit(ctx, cacheError[C]("read", err))
	}
	return inv.emit(ctx, Success(data))
}

// readCache reads the cache for a non-terminal step. On failure it emits a
// cache Error and returns false.
func (inv *invocation[C, R]) readCache(ctx context.Context) (C, bool) {
	var zero C
	if !inv.active(ctx) {
		return zero, false
	}
	data, err := inv.strategy.ReadCache(ctx)
	if err != nil {
		inv.logger.Error().Err(err).Msg("Failed to read cache.")
		inv.emit(ctx, cacheError[C]("read", err))
		return zero, false
	}
	return data, true
}

// active reports whether ctx still allows work, recording the first cancellation.
func (inv *invocation[C, R]) active(ctx context.Context) bool {
	if ctx.Err() == nil {
		return true
	}
	if !inv.cancelled {
		inv.cancelled = true
		inv.observer.Cancelled()
		inv.logger.Debug().Msg("Resource load cancelled.")
	}
	return false
}

// emit sends r unless ctx is cancelled first.
func (inv *invocation[C, R]) emit(ctx context.Context, r Resource[C]) bool {
	if !inv.active(ctx) {
		return false
	}
	select {
	case inv.out <- r:
	case <-ctx.Done():
		inv.active(ctx)
		return false
	}
	inv.observer.StateEmitted(r.Status, r.Kind)
	ev := inv.logger.Debug().Str("status", r.Status.String())
	if r.Status == StatusError {
		ev = ev.Str("kind", r.Kind.String()).Str("message", r.Message)
	}
	ev.Msg("Resource state emitted.")
	return true
}
