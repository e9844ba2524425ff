package cache

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig holds configuration for the Firestore client.
type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	CollectionName  string `yaml:"collection_name"`
	CredentialsFile string `yaml:"credentials_file"`
}

// NewFirestoreClient creates a Firestore client for the configured project,
// using the credentials file when one is set.
func NewFirestoreClient(ctx context.Context, cfg *FirestoreConfig, opts ...option.ClientOption) (*firestore.Client, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// firestoreEntry wraps cached values so that non-struct types (slices, scalars)
// can be stored as a document.
type firestoreEntry[V any] struct {
	Value     V         `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at,serverTimestamp"`
}

// FirestoreCache stores one document per key in a Firestore collection.
// Don't use it like this in high volume deployments - that's what redis is for.
type FirestoreCache[K comparable, V any] struct {
	client         *firestore.Client
	collectionName string
	logger         zerolog.Logger
}

// NewFirestoreCache creates a new generic FirestoreCache.
func NewFirestoreCache[K comparable, V any](
	cfg *FirestoreConfig,
	client *firestore.Client,
	logger zerolog.Logger,
) (*FirestoreCache[K, V], error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}
	if cfg == nil || cfg.CollectionName == "" {
		return nil, fmt.Errorf("firestore collection name cannot be empty")
	}

	logger.Info().Str("project_id", cfg.ProjectID).Str("collection", cfg.CollectionName).Msg("FirestoreCache initialized.")

	return &FirestoreCache[K, V]{
		client:         client,
		collectionName: cfg.CollectionName,
		logger:         logger.With().Str("component", "FirestoreCache").Logger(),
	}, nil
}

// FetchFromCache retrieves a single document from Firestore by its key.
func (s *FirestoreCache[K, V]) FetchFromCache(ctx context.Context, key K) (V, error) {
	var zero V
	stringKey := fmt.Sprintf("%v", key)
	docSnap, err := s.client.Collection(s.collectionName).Doc(stringKey).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			s.logger.Debug().Str("key", stringKey).Msg("Document not found in Firestore.")
			return zero, fmt.Errorf("document %s: %w", stringKey, ErrNotFound)
		}
		s.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to get document from Firestore.")
		return zero, fmt.Errorf("firestore get for %s: %w", stringKey, err)
	}

	var entry firestoreEntry[V]
	if err := docSnap.DataTo(&entry); err != nil {
		s.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to map Firestore document data.")
		return zero, fmt.Errorf("firestore DataTo for %s: %w", stringKey, err)
	}

	s.logger.Debug().Str("key", stringKey).Msg("Successfully fetched data from Firestore.")
	return entry.Value, nil
}

// WriteToCache creates or overwrites the document for key.
func (s *FirestoreCache[K, V]) WriteToCache(ctx context.Context, key K, value V) error {
	stringKey := fmt.Sprintf("%v", key)
	_, err := s.client.Collection(s.collectionName).Doc(stringKey).Set(ctx, firestoreEntry[V]{Value: value})
	if err != nil {
		s.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to write document to Firestore.")
		return fmt.Errorf("firestore set for %s: %w", stringKey, err)
	}
	s.logger.Debug().Str("key", stringKey).Msg("Successfully wrote data to Firestore.")
	return nil
}

// Invalidate removes the document for key. Deleting a missing document is not an error.
func (s *FirestoreCache[K, V]) Invalidate(ctx context.Context, key K) error {
	stringKey := fmt.Sprintf("%v", key)
	_, err := s.client.Collection(s.collectionName).Doc(stringKey).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("firestore delete for %s: %w", stringKey, err)
	}
	return nil
}

// Close is a no-op as the Firestore client's lifecycle is managed externally.
func (s *FirestoreCache[K, V]) Close() error {
	s.logger.Info().Msg("FirestoreCache does not close the injected Firestore client.")
	return nil
}
