package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
)

// Ensure NovelStore implements the interface.
var _ driven.NovelStore = (*NovelStore)(nil)

// NovelStore is an in-memory implementation of driven.NovelStore.
// Novels are copied on Load and Save.
type NovelStore struct {
	mu     sync.RWMutex
	novels map[string]*Novel
	saves  int
}

// NewNovelStore creates a new in-memory novel store.
func NewNovelStore() *NovelStore {
	return &NovelStore{novels: make(map[string]*Novel)}
}

// New returns an empty novel.
func (s *NovelStore) New() driven.NovelModel {
	return NewNovel()
}

// Load returns a copy of the novel stored under path.
func (s *NovelStore) Load(_ context.Context, path string) (driven.NovelModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.novels[path]
	if !ok {
		return nil, &domain.DocumentIOError{Op: "open", Path: path, Err: domain.ErrFileNotFound}
	}
	return n.Clone(), nil
}

// Save stores a copy of novel under path.
func (s *NovelStore) Save(_ context.Context, novel driven.NovelModel, path string) error {
	n, ok := novel.(*Novel)
	if !ok {
		return fmt.Errorf("%w: unsupported novel type %T", domain.ErrInvalidInput, novel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.novels[path] = n.Clone()
	s.saves++
	return nil
}

// Saves returns the number of successful Save calls.
func (s *NovelStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Ensure Locker implements the interface.
var _ driven.ProjectLocker = (*Locker)(nil)

// Locker is an in-memory implementation of driven.ProjectLocker.
type Locker struct {
	mu     sync.Mutex
	locked map[string]bool
}

// NewLocker creates a new in-memory locker.
func NewLocker() *Locker {
	return &Locker{locked: make(map[string]bool)}
}

// Lock marks path as locked.
func (l *Locker) Lock(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked[path] = true
	return nil
}

// IsLocked reports whether path is locked.
func (l *Locker) IsLocked(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked[path]
}
