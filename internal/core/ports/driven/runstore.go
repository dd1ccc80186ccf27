package driven

import (
	"context"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

// RunStore keeps a local history of statistics passes and the snapshots
// they collected. History is advisory: the page text remains the record.
type RunStore interface {
	// SaveRun creates or updates a run record.
	SaveRun(ctx context.Context, run *domain.RunRecord) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// SaveSnapshots archives the snapshots collected by a run.
	SaveSnapshots(ctx context.Context, snapshots []domain.SnapshotRecord) error

	// ListSnapshots returns archived snapshots for a data source, newest first.
	ListSnapshots(ctx context.Context, source string, limit int) ([]domain.SnapshotRecord, error)
}
