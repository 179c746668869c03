package driven

import (
	"context"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// TimelineStore loads and saves timeline documents.
// Save replaces the file atomically: readers see the old or the new
// document, never a partial one.
type TimelineStore interface {
	// Load reads and validates the document at path.
	Load(ctx context.Context, path string) (*domain.Document, error)

	// Save writes doc to path, keeping a backup of the previous file.
	Save(ctx context.Context, doc *domain.Document, path string) error
}
