package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerConfig holds configuration for the embedded Badger store.
type BadgerConfig struct {
	// Dir is the on-disk location of the store. Ignored when InMemory is set.
	Dir      string        `yaml:"dir"`
	InMemory bool          `yaml:"in_memory"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// KeyPrefix namespaces keys when several caches share one store.
	KeyPrefix string `yaml:"key_prefix"`
}

// BadgerCache is a generic cache on top of an embedded Badger key-value store.
// It is the on-device persistence layer: values survive restarts and can be
// read without any network.
type BadgerCache[K comparable, V any] struct {
	db     *badger.DB
	ownsDB bool
	ttl    time.Duration
	prefix string
	logger zerolog.Logger
}

// OpenBadgerCache opens a Badger store described by cfg and returns a cache that
// owns it; Close releases the store.
func OpenBadgerCache[K comparable, V any](cfg *BadgerConfig, logger zerolog.Logger) (*BadgerCache[K, V], error) {
	if cfg == nil {
		return nil, errors.New("badger config cannot be nil")
	}
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("badger dir must be set unless running in memory")
	}

	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	logger.Info().Str("dir", cfg.Dir).Bool("in_memory", cfg.InMemory).Msg("Badger store opened.")

	c := NewBadgerCache[K, V](db, cfg, logger)
	c.ownsDB = true
	return c, nil
}

// NewBadgerCache wraps an already open store. The caller keeps ownership of db.
func NewBadgerCache[K comparable, V any](db *badger.DB, cfg *BadgerConfig, logger zerolog.Logger) *BadgerCache[K, V] {
	c := &BadgerCache[K, V]{
		db:     db,
		logger: logger.With().Str("component", "BadgerCache").Logger(),
	}
	if cfg != nil {
		c.ttl = cfg.CacheTTL
		c.prefix = cfg.KeyPrefix
	}
	return c
}

func (c *BadgerCache[K, V]) key(key K) []byte {
	return []byte(fmt.Sprintf("%s%v", c.prefix, key))
}

// FetchFromCache reads and decodes the value stored for key.
func (c *BadgerCache[K, V]) FetchFromCache(ctx context.Context, key K) (V, error) {
	var value V
	if err := ctx.Err(); err != nil {
		return value, err
	}

	k := c.key(key)
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("key '%s': %w", k, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &value)
		})
	})
	if err != nil {
		var zero V
		if !errors.Is(err, ErrNotFound) {
			c.logger.Error().Err(err).Str("key", string(k)).Msg("Failed to read from badger.")
			return zero, fmt.Errorf("badger get for %s: %w", k, err)
		}
		return zero, err
	}
	return value, nil
}

// WriteToCache encodes value as JSON and stores it, applying the TTL when set.
func (c *BadgerCache[K, V]) WriteToCache(ctx context.Context, key K, value V) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	k := c.key(key)
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(k, data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", string(k)).Msg("Failed to write to badger.")
		return fmt.Errorf("badger set for %s: %w", k, err)
	}
	c.logger.Debug().Str("key", string(k)).Msg("Stored data in badger.")
	return nil
}

// Invalidate deletes the entry for key.
func (c *BadgerCache[K, V]) Invalidate(_ context.Context, key K) error {
	k := c.key(key)
	err := c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(k); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger delete for %s: %w", k, err)
	}
	return nil
}

// Close closes the underlying store if this cache opened it.
func (c *BadgerCache[K, V]) Close() error {
	if c.ownsDB && c.db != nil {
		c.logger.Info().Msg("Closing badger store...")
		return c.db.Close()
	}
	return nil
}
