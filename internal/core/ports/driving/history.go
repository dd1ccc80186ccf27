package driving

import (
	"context"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

// HistoryService exposes the local record of past passes.
type HistoryService interface {
	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Snapshots returns archived snapshots for a data source, newest first.
	Snapshots(ctx context.Context, source string, limit int) ([]domain.SnapshotRecord, error)
}
