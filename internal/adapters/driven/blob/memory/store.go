// Package memory provides an in-process BlobStore for tests and
// ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

type blob struct {
	data        []byte
	contentType string
}

// Store keeps blobs in a map.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// New creates an empty in-memory blob store.
func New() *Store {
	return &Store{blobs: make(map[string]blob)}
}

// Put stores a copy of data at path.
func (s *Store) Put(_ context.Context, path string, data []byte, contentType string) error {
	if path == "" {
		return fmt.Errorf("%w: empty blob path", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[path] = blob{data: slices.Clone(data), contentType: contentType}
	return nil
}

// Get returns a copy of the blob at path.
func (s *Store) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return slices.Clone(b.data), nil
}

// SignedURL returns a memory:// URL carrying a fresh token. Tokens are not
// checked; the URL only identifies the blob.
func (s *Store) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.blobs[path]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	expires := time.Now().Add(ttl).Unix()
	return "memory://" + path + "?token=" + uuid.NewString() + "&expires=" + strconv.FormatInt(expires, 10), nil
}

// ContentType returns the content type recorded for path.
func (s *Store) ContentType(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blobs[path].contentType
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
