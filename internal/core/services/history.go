package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is used when a non-positive limit is requested.
const DefaultHistoryLimit = 20

// HistoryService reads the local run history.
type HistoryService struct {
	runStore driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runStore driven.RunStore) *HistoryService {
	return &HistoryService{runStore: runStore}
}

// Runs returns the most recent runs, newest first.
func (s *HistoryService) Runs(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.runStore == nil {
		return nil, fmt.Errorf("list runs: %w", domain.ErrStoreUnavailable)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	runs, err := s.runStore.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Snapshots returns archived snapshots for a data source, newest first.
func (s *HistoryService) Snapshots(ctx context.Context, source string, limit int) ([]domain.SnapshotRecord, error) {
	if s.runStore == nil {
		return nil, fmt.Errorf("list snapshots: %w", domain.ErrStoreUnavailable)
	}
	source = domain.NormaliseID(source)
	if source == "" {
		return nil, fmt.Errorf("list snapshots: %w: source is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	snaps, err := s.runStore.ListSnapshots(ctx, source, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}
