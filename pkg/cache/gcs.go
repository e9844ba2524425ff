package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/rs/zerolog"
)

// GCSConfig holds configuration for a bucket-backed cache.
type GCSConfig struct {
	BucketName      string `yaml:"bucket_name"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// GCSCache stores each value as a JSON object named <prefix>/<key>.json.
// It suits large, rarely changing payloads that are shared across devices.
type GCSCache[K comparable, V any] struct {
	client GCSClient
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewGCSCache creates a new GCSCache.
func NewGCSCache[K comparable, V any](client GCSClient, cfg GCSConfig, logger zerolog.Logger) (*GCSCache[K, V], error) {
	if client == nil {
		return nil, errors.New("gcs client cannot be nil")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("bucket name is required")
	}
	return &GCSCache[K, V]{
		client: client,
		bucket: cfg.BucketName,
		prefix: cfg.ObjectPrefix,
		logger: logger.With().Str("component", "GCSCache").Str("bucket", cfg.BucketName).Logger(),
	}, nil
}

func (c *GCSCache[K, V]) objectName(key K) string {
	return path.Join(c.prefix, fmt.Sprintf("%v.json", key))
}

// FetchFromCache downloads and decodes the object for key.
func (c *GCSCache[K, V]) FetchFromCache(ctx context.Context, key K) (V, error) {
	var zero V
	name := c.objectName(key)
	r, err := c.client.Bucket(c.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, ErrObjectNotExist) {
			return zero, fmt.Errorf("object %s: %w", name, ErrNotFound)
		}
		c.logger.Error().Err(err).Str("object", name).Msg("Failed to open GCS object.")
		return zero, fmt.Errorf("gcs read for %s: %w", name, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return zero, fmt.Errorf("gcs read for %s: %w", name, err)
	}
	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal object %s: %w", name, err)
	}
	return value, nil
}

// WriteToCache encodes value and uploads it, replacing any previous object.
func (c *GCSCache[K, V]) WriteToCache(ctx context.Context, key K, value V) error {
	name := c.objectName(key)
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	w := c.client.Bucket(c.bucket).Object(name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", name, err)
	}
	// The upload is only committed once Close returns.
	if err := w.Close(); err != nil {
		c.logger.Error().Err(err).Str("object", name).Msg("Failed to finalize GCS upload.")
		return fmt.Errorf("failed to close writer for %s: %w", name, err)
	}
	c.logger.Debug().Str("object", name).Int("bytes", len(data)).Msg("Stored data in GCS.")
	return nil
}

// Close is a no-op; the storage client is owned by the caller.
func (c *GCSCache[K, V]) Close() error {
	return nil
}
