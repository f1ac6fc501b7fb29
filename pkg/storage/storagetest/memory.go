// Package storagetest provides an in-memory storage.System for tests.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/JaimeStill/attest/pkg/lifecycle"
	"github.com/JaimeStill/attest/pkg/storage"
)

type blob struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Memory keeps blobs in a map. Set FailUpload or FailDelete to force errors.
type Memory struct {
	mu    sync.Mutex
	blobs map[string]blob

	FailUpload error
	FailDelete error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]blob)}
}

var _ storage.System = (*Memory)(nil)

func (m *Memory) Start(*lifecycle.Coordinator) error { return nil }

func (m *Memory) Upload(_ context.Context, key string, reader io.Reader, contentType string) error {
	if m.FailUpload != nil {
		return m.FailUpload
	}
	if key == "" {
		return storage.ErrEmptyKey
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = blob{data: data, contentType: contentType, modified: time.Now()}
	return nil
}

func (m *Memory) Download(_ context.Context, key string) (*storage.BlobResult, error) {
	b, ok := m.get(key)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.BlobResult{
		Body:          io.NopCloser(bytes.NewReader(b.data)),
		ContentType:   b.contentType,
		ContentLength: int64(len(b.data)),
	}, nil
}

func (m *Memory) Find(_ context.Context, key string) (*storage.BlobMeta, error) {
	b, ok := m.get(key)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.BlobMeta{
		Key:           key,
		ContentType:   b.contentType,
		ContentLength: int64(len(b.data)),
		LastModified:  &b.modified,
	}, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.get(key)
	return ok, nil
}

// Bytes returns the stored content for key, or nil.
func (m *Memory) Bytes(key string) []byte {
	b, _ := m.get(key)
	return b.data
}

// Keys returns every stored key.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.blobs))
	for k := range m.blobs {
		keys = append(keys, k)
	}
	return keys
}

func (m *Memory) get(key string) (blob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	return b, ok
}

// ErrInjected is a convenience error for FailUpload and FailDelete.
var ErrInjected = errors.New("injected storage failure")
