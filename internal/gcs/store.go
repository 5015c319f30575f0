// Package gcs provides blob storage access for the document pipeline.
//
// The pipeline only needs four primitives on (bucket, object) pairs:
// existence check, full download, full upload, and delete. The BlobStore
// interface keeps the pipeline testable against in-memory fakes while the
// production implementation wraps the Google Cloud Storage client.
//
// Required Environment Variables (production client):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string, OR
//   - Application Default Credentials from the hosting environment
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// BlobStore defines the storage operations used by the processing pipeline.
type BlobStore interface {
	// Exists reports whether the named object is present in the bucket.
	Exists(ctx context.Context, bucket, object string) (bool, error)

	// Download returns the full byte content of the named object.
	Download(ctx context.Context, bucket, object string) ([]byte, error)

	// Upload writes data to the named object with the given content type,
	// overwriting any existing object.
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error

	// Delete removes the named object.
	Delete(ctx context.Context, bucket, object string) error
}

// Store implements BlobStore using Google Cloud Storage.
type Store struct {
	client *storage.Client
}

// NewStore creates a storage-backed BlobStore with credentials from the
// environment, falling back to Application Default Credentials.
func NewStore(ctx context.Context) (*Store, error) {
	const op = "NewStore"

	var opts []option.ClientOption
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: %s failed: %w", op, err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient creates a BlobStore around an existing client (for testing).
func NewStoreWithClient(client *storage.Client) *Store {
	return &Store{client: client}
}

// Exists reports whether the named object is present in the bucket.
func (s *Store) Exists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := s.client.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs: stat gs://%s/%s: %w", bucket, object, err)
	}
	return true, nil
}

// Download returns the full byte content of the named object.
func (s *Store) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: open gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// Upload writes data to the named object, overwriting any existing object.
// The write is committed by Close, so its error must be checked.
func (s *Store) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: write gs://%s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: commit gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// Delete removes the named object.
func (s *Store) Delete(ctx context.Context, bucket, object string) error {
	if err := s.client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("gcs: delete gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// Close releases the underlying storage client.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
