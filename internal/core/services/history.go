package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads the sync journal.
type HistoryService struct {
	journal driven.JournalStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(journal driven.JournalStore) *HistoryService {
	return &HistoryService{journal: journal}
}

// Recent returns up to limit runs, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if s.journal == nil {
		return nil, nil
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	runs, err := s.journal.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}
