package driving

import (
	"context"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// HistoryService exposes the journal of past synchronisations.
type HistoryService interface {
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.SyncRun, error)
}
