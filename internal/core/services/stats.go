package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/coder/quartz"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService runs statistics passes. Passes never overlap: a second
// Run while one is executing fails with domain.ErrRunInProgress.
type StatsService struct {
	config      domain.Config
	store       driven.DocumentStore
	provider    driven.MetricsProvider
	runStore    driven.RunStore
	clock       quartz.Clock
	initializer *Initializer
	sync        *Synchroniser

	mu      sync.Mutex
	running bool
}

// NewStatsService creates a stats service.
// The runStore is optional - if nil, runs are not recorded.
// A nil clock uses the wall clock.
func NewStatsService(
	config domain.Config,
	store driven.DocumentStore,
	provider driven.MetricsProvider,
	templates driven.TemplateSource,
	runStore driven.RunStore,
	clock quartz.Clock,
) *StatsService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &StatsService{
		config:      config,
		store:       store,
		provider:    provider,
		runStore:    runStore,
		clock:       clock,
		initializer: NewInitializer(store, provider, templates),
		sync:        NewSynchroniser(provider, config.Stats.Parallel),
	}
}

// Run performs one pass. Nothing is committed when the pass fails after
// initialisation: the update commit happens once, at the end.
func (s *StatsService) Run(ctx context.Context, opts driving.RunOptions) (*driving.RunResult, error) {
	if !s.begin() {
		return nil, domain.ErrRunInProgress
	}
	defer s.end()

	run := NewRun(s.config, s.clock, opts.DryRun)
	page := s.config.Locator()
	record := domain.RunRecord{
		ID:        run.ID,
		Page:      page,
		StartedAt: run.StartedAt,
		DryRun:    opts.DryRun,
	}

	logger.Section("Run " + run.Tag())
	logger.Info("%s: updating %s", run.Tag(), page)

	result, err := s.execute(ctx, run, &record)
	record.EndedAt = s.clock.Now()
	if err != nil {
		record.Error = err.Error()
	}
	s.recordHistory(ctx, run, &record, result)

	if err != nil {
		return nil, err
	}
	result.Record = record
	return result, nil
}

func (s *StatsService) execute(ctx context.Context, run *Run, record *domain.RunRecord) (*driving.RunResult, error) {
	text, initialized, err := s.initializer.Ensure(ctx, run)
	record.Initialized = initialized
	if err != nil {
		return nil, fmt.Errorf("initialise page: %w", err)
	}

	updated, report, err := s.sync.Apply(ctx, run, text)
	if err != nil {
		return nil, fmt.Errorf("apply rows: %w", err)
	}
	record.RowsAdded = len(report.Added)
	record.Skipped = report.SkippedIDs()

	result := &driving.RunResult{
		Report: report,
		Before: text,
		After:  updated,
	}

	if run.DryRun {
		logger.Info("%s: dry run, %d rows not committed", run.Tag(), len(report.Added))
		return result, nil
	}

	if err := s.store.Commit(ctx, record.Page, updated, s.config.Page.UpdateComment); err != nil {
		return nil, fmt.Errorf("commit page: %w", err)
	}
	logger.Info("%s: committed %d rows, %d skipped", run.Tag(), len(report.Added), len(report.Skipped))
	return result, nil
}

// recordHistory stores the run and its snapshots. History is best effort:
// failures are logged and never fail the pass.
func (s *StatsService) recordHistory(
	ctx context.Context,
	run *Run,
	record *domain.RunRecord,
	result *driving.RunResult,
) {
	if s.runStore == nil {
		return
	}
	if err := s.runStore.SaveRun(ctx, record); err != nil {
		logger.Warn("%s: failed to record run: %v", run.Tag(), err)
		return
	}
	if result == nil || result.Report == nil || len(result.Report.Snapshots) == 0 {
		return
	}

	records := make([]domain.SnapshotRecord, 0, len(result.Report.Snapshots))
	for id, snap := range result.Report.Snapshots {
		records = append(records, domain.SnapshotRecord{
			RunID:   run.ID,
			Source:  id,
			TakenAt: result.Report.TakenAt[id],
			Values:  snap,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Source < records[j].Source })

	if err := s.runStore.SaveSnapshots(ctx, records); err != nil {
		logger.Warn("%s: failed to archive snapshots: %v", run.Tag(), err)
	}
}

// Skeleton returns the page text the initialiser would generate.
func (s *StatsService) Skeleton(ctx context.Context) (string, error) {
	return s.initializer.Skeleton(ctx, NewRun(s.config, s.clock, true))
}

// Sites lists the family and their deep-link roots.
func (s *StatsService) Sites(ctx context.Context) ([]driving.SiteInfo, error) {
	ids, err := s.provider.ListDataSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}

	sites := make([]driving.SiteInfo, 0, len(ids))
	for _, id := range ids {
		base, err := s.provider.BaseURL(id)
		if err != nil {
			return nil, fmt.Errorf("resolve base url for %s: %w", id, err)
		}
		sites = append(sites, driving.SiteInfo{ID: id, BaseURL: base})
	}
	return sites, nil
}

func (s *StatsService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *StatsService) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}
