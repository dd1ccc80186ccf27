package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
)

// --- Mock implementations for services testing ---

// mockDocumentStore implements driven.DocumentStore for testing.
type mockDocumentStore struct {
	mu        sync.Mutex
	pages     map[string]string
	commits   []mockCommit
	existsErr error
	fetchErr  error
	commitErr error
}

type mockCommit struct {
	page    domain.PageLocator
	text    string
	comment string
}

var _ driven.DocumentStore = (*mockDocumentStore)(nil)

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{pages: make(map[string]string)}
}

func (m *mockDocumentStore) Exists(_ context.Context, page domain.PageLocator) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.pages[page.String()]
	return ok, nil
}

func (m *mockDocumentStore) Fetch(_ context.Context, page domain.PageLocator) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return "", m.fetchErr
	}
	text, ok := m.pages[page.String()]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *mockDocumentStore) Commit(_ context.Context, page domain.PageLocator, text, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.pages[page.String()] = text
	m.commits = append(m.commits, mockCommit{page: page, text: text, comment: comment})
	return nil
}

func (m *mockDocumentStore) set(page domain.PageLocator, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.String()] = text
}

func (m *mockDocumentStore) commitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commits)
}

// mockMetricsProvider implements driven.MetricsProvider for testing.
type mockMetricsProvider struct {
	ids       []string
	snapshots map[string]domain.Snapshot
	errs      map[string]error
	listErr   error
	calls     atomic.Int32
	inFlight  atomic.Int32
	maxActive atomic.Int32
	gate      chan struct{}
}

var _ driven.MetricsProvider = (*mockMetricsProvider)(nil)

func newMockMetricsProvider(ids ...string) *mockMetricsProvider {
	return &mockMetricsProvider{
		ids:       ids,
		snapshots: make(map[string]domain.Snapshot),
		errs:      make(map[string]error),
	}
}

func (m *mockMetricsProvider) ListDataSources(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := append([]string(nil), m.ids...)
	sort.Strings(ids)
	return ids, nil
}

func (m *mockMetricsProvider) BaseURL(id string) (string, error) {
	for _, known := range m.ids {
		if known == id {
			return "https://" + id + ".example.org/wiki", nil
		}
	}
	return "", domain.ErrUnknownSource
}

func (m *mockMetricsProvider) Snapshot(ctx context.Context, id string) (domain.Snapshot, error) {
	m.calls.Add(1)
	active := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.maxActive.Load()
		if active <= peak || m.maxActive.CompareAndSwap(peak, active) {
			break
		}
	}

	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := m.errs[id]; ok {
		return nil, err
	}
	snap, ok := m.snapshots[id]
	if !ok {
		return nil, errors.New("no statistics")
	}
	return snap, nil
}

// mockTemplates implements driven.TemplateSource for testing.
type mockTemplates struct {
	body string
	err  error
}

func (m *mockTemplates) Load(_ string) (string, error) {
	return m.body, m.err
}

// mockRunStore implements driven.RunStore for testing.
type mockRunStore struct {
	mu        sync.Mutex
	runs      []domain.RunRecord
	snapshots []domain.SnapshotRecord
	saveErr   error
}

var _ driven.RunStore = (*mockRunStore)(nil)

func (m *mockRunStore) SaveRun(_ context.Context, run *domain.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockRunStore) GetRun(_ context.Context, id string) (*domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == id {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRunStore) ListRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RunRecord, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *mockRunStore) SaveSnapshots(_ context.Context, snapshots []domain.SnapshotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshots...)
	return nil
}

func (m *mockRunStore) ListSnapshots(_ context.Context, source string, limit int) ([]domain.SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SnapshotRecord
	for i := len(m.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		if m.snapshots[i].Source == source {
			out = append(out, m.snapshots[i])
		}
	}
	return out, nil
}
