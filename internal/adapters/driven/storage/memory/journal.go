package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
)

// Ensure JournalStore implements the interface.
var _ driven.JournalStore = (*JournalStore)(nil)

// JournalStore is an in-memory implementation of driven.JournalStore.
type JournalStore struct {
	mu   sync.RWMutex
	runs []domain.SyncRun
}

// NewJournalStore creates a new in-memory journal.
func NewJournalStore() *JournalStore {
	return &JournalStore{}
}

// Record stores a run and returns its id.
func (s *JournalStore) Record(_ context.Context, run domain.SyncRun) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = int64(len(s.runs) + 1)
	s.runs = append(s.runs, run)
	return run.ID, nil
}

// List returns the most recent runs first.
func (s *JournalStore) List(_ context.Context, limit int) ([]domain.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SyncRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, s.runs[i])
	}
	return result, nil
}

// Last returns the most recent run for a source path.
func (s *JournalStore) Last(_ context.Context, sourcePath string) (*domain.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].SourcePath == sourcePath {
			run := s.runs[i]
			return &run, nil
		}
	}
	return nil, domain.ErrNotFound
}
