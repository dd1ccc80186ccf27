package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, page_lang, page_title, started_at, ended_at, initialized, rows_added, skipped, error, dry_run`

// SaveRun creates or updates a run record.
func (s *runStore) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	skipped := run.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return fmt.Errorf("marshalling skipped sources: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			page_lang = excluded.page_lang,
			page_title = excluded.page_title,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			initialized = excluded.initialized,
			rows_added = excluded.rows_added,
			skipped = excluded.skipped,
			error = excluded.error,
			dry_run = excluded.dry_run
	`, run.ID, run.Page.Language, run.Page.Title,
		formatTime(run.StartedAt), formatNullableTime(run.EndedAt),
		boolToInt(run.Initialized), run.RowsAdded, string(skippedJSON),
		nullString(run.Error), boolToInt(run.DryRun))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
// A non-positive limit returns every run.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// SaveSnapshots archives the snapshots collected by a run in one transaction.
// Only present metric values are stored.
func (s *runStore) SaveSnapshots(ctx context.Context, snapshots []domain.SnapshotRecord) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshots (run_id, source, taken_at, metrics)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, source) DO UPDATE SET
			taken_at = excluded.taken_at,
			metrics = excluded.metrics
	`)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snapshots {
		metrics, err := json.Marshal(presentValues(snap.Values))
		if err != nil {
			return fmt.Errorf("marshalling snapshot %s: %w", snap.Source, err)
		}
		if _, err := stmt.ExecContext(ctx, snap.RunID, domain.NormaliseID(snap.Source),
			formatTime(snap.TakenAt), string(metrics)); err != nil {
			return fmt.Errorf("saving snapshot %s: %w", snap.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshots: %w", err)
	}
	return nil
}

// ListSnapshots returns archived snapshots for a data source, newest first.
func (s *runStore) ListSnapshots(ctx context.Context, source string, limit int) ([]domain.SnapshotRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, source, taken_at, metrics
		FROM snapshots
		WHERE source = ?
		ORDER BY taken_at DESC, id DESC
		LIMIT ?
	`, domain.NormaliseID(source), limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var records []domain.SnapshotRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.SnapshotRecord
		var takenAt, metrics string
		if err := rows.Scan(&rec.RunID, &rec.Source, &takenAt, &metrics); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		rec.TakenAt = parseTime(takenAt)

		var values map[string]string
		if err := json.Unmarshal([]byte(metrics), &values); err != nil {
			return nil, fmt.Errorf("unmarshalling snapshot metrics: %w", err)
		}
		rec.Values = make(domain.Snapshot, len(values))
		for name, v := range values {
			rec.Values[name] = domain.StringValue(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var startedAt, skipped string
	var endedAt, errMsg sql.NullString
	var initialized, dryRun int

	if err := row.Scan(&run.ID, &run.Page.Language, &run.Page.Title, &startedAt, &endedAt,
		&initialized, &run.RowsAdded, &skipped, &errMsg, &dryRun); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.StartedAt = parseTime(startedAt)
	run.EndedAt = parseNullableTime(endedAt)
	run.Initialized = initialized == 1
	run.DryRun = dryRun == 1
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if err := json.Unmarshal([]byte(skipped), &run.Skipped); err != nil {
		return nil, fmt.Errorf("unmarshalling skipped sources: %w", err)
	}
	if len(run.Skipped) == 0 {
		run.Skipped = nil
	}
	return &run, nil
}

func presentValues(snap domain.Snapshot) map[string]string {
	out := make(map[string]string, len(snap))
	for name, v := range snap {
		if v.Present {
			out[name] = v.Value
		}
	}
	return out
}
