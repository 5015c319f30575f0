package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"docingest/internal/config"
	"docingest/pkg/models"
)

// fakeStore is an in-memory BlobStore recording call counts and allowing
// forced failures per operation.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	existsCalls   int
	downloadCalls int
	uploadCalls   int
	deleteCalls   int

	existsErr   error
	downloadErr error
	uploadErr   error
	deleteErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func storeKey(bucket, object string) string {
	return bucket + "/" + object
}

func (s *fakeStore) put(bucket, object string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storeKey(bucket, object)] = data
}

func (s *fakeStore) has(bucket, object string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[storeKey(bucket, object)]
	return ok
}

func (s *fakeStore) get(bucket, object string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[storeKey(bucket, object)]
}

func (s *fakeStore) contentType(bucket, object string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[storeKey(bucket, object)]
}

func (s *fakeStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.objects[storeKey(bucket, object)]
	return ok, nil
}

func (s *fakeStore) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadCalls++
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[storeKey(bucket, object)]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *fakeStore) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadCalls++
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.objects[storeKey(bucket, object)] = data
	s.types[storeKey(bucket, object)] = contentType
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, bucket, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, storeKey(bucket, object))
	return nil
}

// fakeExtractor returns a fixed result or error and counts calls.
type fakeExtractor struct {
	mu     sync.Mutex
	calls  int
	result *models.ExtractionResult
	err    error
}

func (e *fakeExtractor) Process(ctx context.Context, content []byte, mimeType string) (*models.ExtractionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func (e *fakeExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func testConfig() *config.Config {
	return &config.Config{
		ProjectID:    "test-project",
		Location:     "eu",
		ProcessorID:  "proc-123",
		OutputBucket: "output-bucket",
		OutputFormat: config.FormatJSON,
		DeleteSource: true,
		DedupTTL:     600 * time.Second,
	}
}

func strPtr(s string) *string { return &s }
