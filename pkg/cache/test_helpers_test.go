package cache_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/illmade-knight/go-netbound/pkg/cache"
)

// --- Mock GCS Client Components ---

// mockGCSWriter is a mock GCSWriter that commits to its object on Close.
type mockGCSWriter struct {
	buf      bytes.Buffer
	closed   bool
	object   *mockGCSObjectHandle
	closeErr error
}

func (m *mockGCSWriter) Write(p []byte) (n int, err error) {
	if m.closed {
		return 0, errors.New("write on closed writer")
	}
	return m.buf.Write(p)
}

func (m *mockGCSWriter) Close() error {
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true
	if m.closeErr != nil {
		return m.closeErr
	}
	m.object.mu.Lock()
	defer m.object.mu.Unlock()
	m.object.data = append([]byte(nil), m.buf.Bytes()...)
	m.object.exists = true
	return nil
}

// mockGCSObjectHandle is a mock GCSObjectHandle.
type mockGCSObjectHandle struct {
	mu       sync.Mutex
	data     []byte
	exists   bool
	closeErr error
}

func (m *mockGCSObjectHandle) NewReader(_ context.Context) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, cache.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func (m *mockGCSObjectHandle) NewWriter(_ context.Context) cache.GCSWriter {
	return &mockGCSWriter{object: m, closeErr: m.closeErr}
}

// mockGCSBucketHandle is a mock GCSBucketHandle that stores created objects in a map.
type mockGCSBucketHandle struct {
	mu      sync.Mutex
	objects map[string]*mockGCSObjectHandle
}

func (m *mockGCSBucketHandle) Object(name string) cache.GCSObjectHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]*mockGCSObjectHandle)
	}
	if _, ok := m.objects[name]; !ok {
		m.objects[name] = &mockGCSObjectHandle{}
	}
	return m.objects[name]
}

// mockGCSClient is a mock GCSClient.
type mockGCSClient struct {
	bucket *mockGCSBucketHandle
}

func newMockGCSClient() *mockGCSClient {
	return &mockGCSClient{
		bucket: &mockGCSBucketHandle{},
	}
}

func (m *mockGCSClient) Bucket(_ string) cache.GCSBucketHandle {
	return m.bucket
}
