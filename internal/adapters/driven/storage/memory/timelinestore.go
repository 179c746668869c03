package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
)

// Ensure TimelineStore implements the interface.
var _ driven.TimelineStore = (*TimelineStore)(nil)

// TimelineStore is an in-memory implementation of driven.TimelineStore.
// Documents are kept encoded, so every Load returns an independent copy.
type TimelineStore struct {
	mu    sync.RWMutex
	files map[string][]byte
	saves int
}

// NewTimelineStore creates a new in-memory timeline store.
func NewTimelineStore() *TimelineStore {
	return &TimelineStore{files: make(map[string][]byte)}
}

// Load decodes the document stored under path.
func (s *TimelineStore) Load(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	data, ok := s.files[path]
	s.mu.RUnlock()
	if !ok {
		return nil, &domain.DocumentIOError{Op: "open", Path: path, Err: domain.ErrFileNotFound}
	}
	return domain.ParseDocument(data)
}

// Save encodes doc under path.
func (s *TimelineStore) Save(_ context.Context, doc *domain.Document, path string) error {
	data, err := doc.Encode()
	if err != nil {
		return &domain.DocumentIOError{Op: "encode", Path: path, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
	s.saves++
	return nil
}

// PutRaw stores an encoded payload under path.
func (s *TimelineStore) PutRaw(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), data...)
}

// Raw returns the payload stored under path.
func (s *TimelineStore) Raw(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return append([]byte(nil), data...), nil
}

// Saves returns the number of successful Save calls.
func (s *TimelineStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
