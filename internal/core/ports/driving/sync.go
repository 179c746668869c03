package driving

import (
	"context"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// SyncService synchronises a timeline with its novel project.
type SyncService interface {
	// Plan determines the direction and files of a sync from the source path.
	Plan(sourcePath string) (*domain.SyncPlan, error)

	// Synchronize runs the sync selected by the source path's extension
	// and commits the target once, after all merging succeeded.
	Synchronize(ctx context.Context, sourcePath string) (*domain.SyncResult, error)

	// AddMoonPhase rewrites the project's timeline with moon phase values.
	AddMoonPhase(ctx context.Context, novelPath string) (*domain.SyncResult, error)

	// Info compares the modification times of a project and its timeline.
	Info(ctx context.Context, novelPath string) (*domain.FileComparison, error)
}

// WatchService re-imports a timeline whenever it changes.
type WatchService interface {
	// Watch blocks until ctx is cancelled, calling report after each sync.
	Watch(ctx context.Context, timelinePath string, report func(*domain.SyncResult, error)) error
}
