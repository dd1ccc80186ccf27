package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu        sync.RWMutex
	runs      map[string]domain.RunRecord
	snapshots []domain.SnapshotRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunRecord),
	}
}

// SaveRun creates or updates a run record.
func (s *RunStore) SaveRun(_ context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *run
	r.Skipped = append([]string(nil), run.Skipped...)
	s.runs[run.ID] = r
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SaveSnapshots archives snapshots.
func (s *RunStore) SaveSnapshots(_ context.Context, snapshots []domain.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshots...)
	return nil
}

// ListSnapshots returns archived snapshots for a data source, newest first.
func (s *RunStore) ListSnapshots(_ context.Context, source string, limit int) ([]domain.SnapshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.SnapshotRecord
	for _, snap := range s.snapshots {
		if snap.Source == source {
			result = append(result, snap)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TakenAt.After(result[j].TakenAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
