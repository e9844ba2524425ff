package netbound_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/illmade-knight/go-netbound/pkg/netbound"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStrategy is a test double backed by a single cached value. It records the
// order in which its callbacks are invoked.
type mockStrategy struct {
	mu       sync.Mutex
	cached   []string
	calls    []string
	written  [][]string
	outcome  netbound.Outcome[[]string]
	readErr  error
	writeErr error
	// callFunc overrides outcome when set.
	callFunc  func(ctx context.Context) netbound.Outcome[[]string]
	succeeded []netbound.Succeeded[[]string]
}

func (m *mockStrategy) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockStrategy) ReadCache(_ context.Context) ([]string, error) {
	m.record("read")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]string(nil), m.cached...), nil
}

func (m *mockStrategy) WriteCache(_ context.Context, payload []string) error {
	m.record("write")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, payload)
	if m.writeErr != nil {
		return m.writeErr
	}
	m.cached = payload
	return nil
}

func (m *mockStrategy) CallNetwork(ctx context.Context) netbound.Outcome[[]string] {
	m.record("call")
	if m.callFunc != nil {
		return m.callFunc(ctx)
	}
	return m.outcome
}

func (m *mockStrategy) OnSuccess(_ context.Context, outcome netbound.Succeeded[[]string]) {
	m.record("onSuccess")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.succeeded = append(m.succeeded, outcome)
}

func (m *mockStrategy) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockStrategy) count(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func runLoader(t *testing.T, cfg netbound.Config, s netbound.Strategy[[]string, []string]) []netbound.Resource[[]string] {
	t.Helper()
	loader, err := netbound.NewLoader[[]string, []string](s, nil, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return netbound.Collect(loader.Run(ctx, cfg))
}

func TestNewLoader_NilStrategy(t *testing.T) {
	_, err := netbound.NewLoader[int, int](nil, nil, zerolog.Nop())
	require.Error(t, err)
}

func TestLoader_CacheOnlyPaths(t *testing.T) {
	// Network availability is irrelevant when the request does not need it, so
	// both the offline and the cache-only branch must behave identically.
	branches := []struct {
		name string
		cfg  netbound.Config
	}{
		{name: "Offline", cfg: netbound.Config{NetworkAvailable: false, RequiresNetwork: true}},
		{name: "Offline and not required", cfg: netbound.Config{NetworkAvailable: false, RequiresNetwork: false}},
		{name: "Online but not required", cfg: netbound.Config{NetworkAvailable: true, RequiresNetwork: false}},
	}

	for _, b := range branches {
		t.Run(b.name+" with cache fallback", func(t *testing.T) {
			// Arrange
			s := &mockStrategy{cached: []string{"cached"}}
			cfg := b.cfg
			cfg.LoadFromCacheFirst = true
			cfg.CacheOnSuccess = true

			// Act
			states := runLoader(t, cfg, s)

			// Assert
			require.Len(t, states, 1)
			assert.Equal(t, netbound.StatusSuccess, states[0].Status)
			v, ok := states[0].Value()
			require.True(t, ok)
			assert.Equal(t, []string{"cached"}, v)
			assert.Equal(t, []string{"read"}, s.Calls(), "only the cache should be touched")
		})

		t.Run(b.name+" without cache fallback", func(t *testing.T) {
			// Arrange
			s := &mockStrategy{cached: []string{"cached"}}

			// Act
			states := runLoader(t, b.cfg, s)

			// Assert
			require.Len(t, states, 1)
			r := states[0]
			assert.Equal(t, netbound.StatusError, r.Status)
			assert.Equal(t, "Network not available", r.Message)
			assert.Equal(t, netbound.KindNoConnectivity, r.Kind)
			assert.Nil(t, r.Data)
			assert.Nil(t, r.Cause)
			assert.Empty(t, s.Calls())
		})
	}
}

func TestLoader_NetworkPath(t *testing.T) {
	online := netbound.Config{NetworkAvailable: true, RequiresNetwork: true}

	t.Run("Loading carries the cache at call time", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{
			cached:  []string{"old"},
			outcome: netbound.SucceededWith([]string{"new"}),
		}
		cfg := online
		cfg.LoadFromCacheFirst = true
		cfg.CacheOnSuccess = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		require.Len(t, states, 2)
		assert.Equal(t, netbound.StatusLoading, states[0].Status)
		require.NotNil(t, states[0].Data)
		assert.Equal(t, []string{"old"}, *states[0].Data)
		assert.False(t, states[0].IsTerminal())

		assert.Equal(t, netbound.StatusSuccess, states[1].Status)
		assert.Equal(t, []string{"new"}, *states[1].Data, "the terminal value is the re-read cache")
		assert.Equal(t, []string{"read", "call", "write", "read", "onSuccess"}, s.Calls())
	})

	t.Run("Success with caching writes once then notifies", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{outcome: netbound.Succeeded[[]string]{
			Payload:  &[]string{"a", "b"},
			Metadata: map[string]string{"next_cursor": "2"},
		}}
		cfg := online
		cfg.CacheOnSuccess = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		require.Len(t, states, 1)
		assert.Equal(t, netbound.StatusSuccess, states[0].Status)
		assert.Equal(t, []string{"a", "b"}, *states[0].Data)
		assert.Equal(t, [][]string{{"a", "b"}}, s.written)
		assert.Equal(t, 1, s.count("onSuccess"))
		require.Len(t, s.succeeded, 1)
		assert.Equal(t, "2", s.succeeded[0].Metadata["next_cursor"])
		assert.Equal(t, []string{"call", "write", "read", "onSuccess"}, s.Calls())
	})

	t.Run("Success without caching emits no terminal state", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{
			cached:  []string{"old"},
			outcome: netbound.SucceededWith([]string{"new"}),
		}
		cfg := online
		cfg.LoadFromCacheFirst = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		require.Len(t, states, 1, "only the Loading state is emitted")
		assert.Equal(t, netbound.StatusLoading, states[0].Status)
		assert.Equal(t, 0, s.count("write"))
		assert.Equal(t, 1, s.count("onSuccess"))
	})

	t.Run("Success with nil payload skips the write", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{outcome: netbound.Succeeded[[]string]{StatusCode: 200}}
		cfg := online
		cfg.CacheOnSuccess = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		assert.Empty(t, states)
		assert.Equal(t, []string{"call", "onSuccess"}, s.Calls())
	})

	t.Run("Opt-in emission after an uncached success", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{
			cached:  []string{"old"},
			outcome: netbound.SucceededWith([]string{"new"}),
		}
		cfg := online
		cfg.EmitOnUncachedSuccess = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		require.Len(t, states, 1)
		assert.Equal(t, netbound.StatusSuccess, states[0].Status)
		assert.Equal(t, []string{"old"}, *states[0].Data)
		assert.Equal(t, []string{"call", "read", "onSuccess"}, s.Calls())
	})

	t.Run("No response emits timeout", func(t *testing.T) {
		// Arrange
		transportErr := errors.New("i/o timeout")
		s := &mockStrategy{
			cached:  []string{"old"},
			outcome: netbound.NoResponse[[]string]{Err: transportErr},
		}
		cfg := online
		cfg.LoadFromCacheFirst = true
		cfg.CacheOnSuccess = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		require.Len(t, states, 2)
		assert.Equal(t, netbound.StatusLoading, states[0].Status)
		r := states[1]
		assert.Equal(t, netbound.StatusError, r.Status)
		assert.Equal(t, "timeout", r.Message)
		assert.Equal(t, netbound.KindTimeout, r.Kind)
		assert.Nil(t, r.Data)
		assert.ErrorIs(t, r.Cause, netbound.ErrTimeout)
		assert.ErrorIs(t, r.Cause, transportErr)
		assert.Equal(t, 0, s.count("write"))
		assert.Equal(t, 0, s.count("onSuccess"))
	})

	t.Run("Nil outcome is treated as no response", func(t *testing.T) {
		s := &mockStrategy{}
		cfg := online

		states := runLoader(t, cfg, s)

		require.Len(t, states, 1)
		assert.Equal(t, netbound.KindTimeout, states[0].Kind)
		assert.ErrorIs(t, states[0].Cause, netbound.ErrTimeout)
	})

	serverCases := []struct {
		name    string
		outcome netbound.Outcome[[]string]
		message string
	}{
		{name: "Empty", outcome: netbound.Empty[[]string]{Message: "nothing new", StatusCode: 204}, message: "nothing new"},
		{name: "Failure", outcome: netbound.Failed[[]string]{Message: "invalid token", StatusCode: 401}, message: "invalid token"},
	}
	for _, tc := range serverCases {
		t.Run(tc.name+" passes the server message through", func(t *testing.T) {
			// Arrange
			s := &mockStrategy{outcome: tc.outcome}
			cfg := online
			cfg.CacheOnSuccess = true

			// Act
			states := runLoader(t, cfg, s)

			// Assert
			require.Len(t, states, 1)
			r := states[0]
			assert.Equal(t, netbound.StatusError, r.Status)
			assert.Equal(t, tc.message, r.Message)
			assert.Equal(t, netbound.KindServer, r.Kind)
			assert.Nil(t, r.Data)
			assert.Nil(t, r.Cause)
			assert.Equal(t, []string{"call"}, s.Calls())
		})
	}
}

func TestLoader_CacheFailures(t *testing.T) {
	online := netbound.Config{NetworkAvailable: true, RequiresNetwork: true}
	diskErr := errors.New("disk full")

	t.Run("Read failure before the network call stops the invocation", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{readErr: diskErr, outcome: netbound.SucceededWith([]string{"x"})}
		cfg := online
		cfg.LoadFromCacheFirst = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		require.Len(t, states, 1)
		assert.Equal(t, netbound.KindCache, states[0].Kind)
		assert.ErrorIs(t, states[0].Cause, diskErr)
		assert.Contains(t, states[0].Message, "cache read failed")
		assert.Equal(t, []string{"read"}, s.Calls())
	})

	t.Run("Read failure on the offline path", func(t *testing.T) {
		s := &mockStrategy{readErr: diskErr}

		states := runLoader(t, netbound.Config{LoadFromCacheFirst: true}, s)

		require.Len(t, states, 1)
		assert.Equal(t, netbound.StatusError, states[0].Status)
		assert.Equal(t, netbound.KindCache, states[0].Kind)
	})

	t.Run("Write failure still notifies the success hook", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{writeErr: diskErr, outcome: netbound.SucceededWith([]string{"x"})}
		cfg := online
		cfg.CacheOnSuccess = true

		// Act
		states := runLoader(t, cfg, s)

		// Assert
		require.Len(t, states, 1)
		assert.Equal(t, netbound.KindCache, states[0].Kind)
		assert.Contains(t, states[0].Message, "cache write failed")
		assert.ErrorIs(t, states[0].Cause, diskErr)
		assert.Equal(t, []string{"call", "write", "onSuccess"}, s.Calls())
	})
}

func TestLoader_Cancellation(t *testing.T) {
	online := netbound.Config{NetworkAvailable: true, RequiresNetwork: true, LoadFromCacheFirst: true, CacheOnSuccess: true}

	t.Run("Cancelled before start emits nothing", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{outcome: netbound.SucceededWith([]string{"x"})}
		loader, err := netbound.NewLoader[[]string, []string](s, nil, zerolog.Nop())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Act
		states := netbound.Collect(loader.Run(ctx, online))

		// Assert
		assert.Empty(t, states)
		assert.Empty(t, s.Calls())
	})

	t.Run("Cancelled during the network call", func(t *testing.T) {
		// Arrange
		callStarted := make(chan struct{})
		s := &mockStrategy{
			cached: []string{"old"},
			callFunc: func(ctx context.Context) netbound.Outcome[[]string] {
				close(callStarted)
				<-ctx.Done()
				return netbound.SucceededWith([]string{"late"})
			},
		}
		loader, err := netbound.NewLoader[[]string, []string](s, nil, zerolog.Nop())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Act
		ch := loader.Run(ctx, online)
		first := <-ch
		<-callStarted
		cancel()
		rest := netbound.Collect(ch)

		// Assert
		assert.Equal(t, netbound.StatusLoading, first.Status)
		assert.Empty(t, rest, "no state, and no error, follows a cancellation")
		assert.Equal(t, 0, s.count("write"))
		assert.Equal(t, 0, s.count("onSuccess"))
	})

	t.Run("Consumer that stops reading unblocks on cancel", func(t *testing.T) {
		// Arrange
		s := &mockStrategy{cached: []string{"old"}, outcome: netbound.SucceededWith([]string{"x"})}
		loader, err := netbound.NewLoader[[]string, []string](s, nil, zerolog.Nop())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())

		// Act: never read the Loading state, just cancel.
		ch := loader.Run(ctx, online)
		require.Eventually(t, func() bool { return s.count("read") == 1 }, time.Second, 5*time.Millisecond)
		cancel()

		// Assert: the channel is closed without the network being called.
		select {
		case <-time.After(time.Second):
			t.Fatal("loader did not stop after cancellation")
		case _, ok := <-waitClosed(ch):
			assert.False(t, ok)
		}
		assert.Equal(t, 0, s.count("call"))
	})
}

// waitClosed drains ch in the background and signals once it is closed.
func waitClosed[T any](ch <-chan netbound.Resource[T]) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	return done
}

func TestRun_WithStrategyFuncs(t *testing.T) {
	// Arrange
	var cursor string
	store := []string{"cached"}
	s := netbound.StrategyFuncs[[]string, []string]{
		Read: func(context.Context) ([]string, error) { return store, nil },
		Write: func(_ context.Context, payload []string) error {
			store = append(store, payload...)
			return nil
		},
		Call: func(context.Context) netbound.Outcome[[]string] {
			return netbound.Succeeded[[]string]{Payload: &[]string{"page-2"}, Metadata: map[string]string{"next": "3"}}
		},
		Success: func(_ context.Context, o netbound.Succeeded[[]string]) { cursor = o.Metadata["next"] },
	}
	cfg := netbound.Config{NetworkAvailable: true, RequiresNetwork: true, LoadFromCacheFirst: true, CacheOnSuccess: true}

	// Act
	states := netbound.Collect(netbound.Run[[]string, []string](context.Background(), cfg, s))

	// Assert
	require.Len(t, states, 2)
	assert.Equal(t, []string{"cached"}, *states[0].Data)
	assert.Equal(t, []string{"cached", "page-2"}, *states[1].Data)
	assert.Equal(t, "3", cursor)
}

func TestStrategyFuncs_Defaults(t *testing.T) {
	var s netbound.StrategyFuncs[int, int]
	ctx := context.Background()

	v, err := s.ReadCache(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.NoError(t, s.WriteCache(ctx, 1))
	assert.Equal(t, netbound.OutcomeNoResponse, s.CallNetwork(ctx).Kind())
	s.OnSuccess(ctx, netbound.Succeeded[int]{})
}
