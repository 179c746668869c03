package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
)

// journalStore implements driven.JournalStore.
type journalStore struct {
	store *Store
}

var _ driven.JournalStore = (*journalStore)(nil)

const selectRun = `
	SELECT id, direction, source_path, target_path, started_at, duration_ns,
	       written, created, updated, deleted, error
	FROM sync_runs`

// Record stores a run and returns its id.
func (s *journalStore) Record(ctx context.Context, run domain.SyncRun) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (direction, source_path, target_path, started_at, duration_ns,
		                       written, created, updated, deleted, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(run.Direction), run.SourcePath, run.TargetPath, run.StartedAt.UTC(), int64(run.Duration),
		run.Written, run.Created, run.Updated, run.Deleted, run.Error)
	if err != nil {
		return 0, fmt.Errorf("inserting sync run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading sync run id: %w", err)
	}
	return id, nil
}

// List returns the most recent runs first.
func (s *journalStore) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	query := selectRun + " ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Last returns the most recent run for a source path.
func (s *journalStore) Last(ctx context.Context, sourcePath string) (*domain.SyncRun, error) {
	row := s.store.db.QueryRowContext(ctx, selectRun+" WHERE source_path = ? ORDER BY id DESC LIMIT 1", sourcePath)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return run, err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.SyncRun, error) {
	var (
		run        domain.SyncRun
		direction  string
		startedAt  sql.NullTime
		durationNs int64
	)
	err := row.Scan(&run.ID, &direction, &run.SourcePath, &run.TargetPath, &startedAt, &durationNs,
		&run.Written, &run.Created, &run.Updated, &run.Deleted, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}
	run.Direction = domain.Direction(direction)
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	run.Duration = time.Duration(durationNs)
	return &run, nil
}
