package driven

import (
	"context"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// JournalStore persists the history of synchronisation runs.
type JournalStore interface {
	// Record stores a run and returns its id.
	Record(ctx context.Context, run domain.SyncRun) (int64, error)

	// List returns the most recent runs first, at most limit of them.
	// A limit of 0 or less returns all runs.
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)

	// Last returns the most recent run for a source path.
	// Returns domain.ErrNotFound if the path was never synchronised.
	Last(ctx context.Context, sourcePath string) (*domain.SyncRun, error)
}
