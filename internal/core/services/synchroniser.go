package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// insertion is a planned row for one matched section.
type insertion struct {
	id      string
	section domain.Section
	pos     int
}

// Synchroniser appends a statistics row to every section whose title
// names a known data source.
type Synchroniser struct {
	provider  driven.MetricsProvider
	collector *Collector
}

// NewSynchroniser creates a synchroniser fetching at most parallel
// snapshots at once.
func NewSynchroniser(provider driven.MetricsProvider, parallel int) *Synchroniser {
	return &Synchroniser{
		provider:  provider,
		collector: NewCollector(provider, parallel),
	}
}

// Apply returns text with one new row inserted immediately before the table
// terminator of each matched section. Every insertion point is computed
// against the unmodified text and rows are applied bottom to top, so no
// insertion shifts an offset still to be used. Unmatched text is preserved
// byte for byte.
//
// A matched section without a terminator aborts the pass with a
// *domain.StructuralError before any snapshot is fetched. A source whose
// snapshot is unavailable is skipped and reported.
func (s *Synchroniser) Apply(ctx context.Context, run *Run, text string) (string, *domain.SyncReport, error) {
	ids, err := s.provider.ListDataSources(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("list data sources: %w", err)
	}

	doc := domain.NewDocument(text)
	plan, duplicates, err := planInsertions(doc, ids)
	if err != nil {
		return "", nil, err
	}

	report := &domain.SyncReport{
		Duplicates: duplicates,
		Snapshots:  make(map[string]domain.Snapshot, len(plan)),
		TakenAt:    make(map[string]time.Time, len(plan)),
	}
	for _, id := range duplicates {
		logger.Warn("%s: section %q repeats an earlier section, leaving it untouched", run.Tag(), id)
	}
	if len(plan) == 0 {
		logger.Info("%s: no sections match a known data source", run.Tag())
		return text, report, nil
	}

	planned := make([]string, 0, len(plan))
	for _, ins := range plan {
		planned = append(planned, ins.id)
	}
	collection, err := s.collector.Collect(ctx, planned)
	if err != nil {
		return "", nil, err
	}

	out := doc
	for _, ins := range plan {
		if err := collection.Errors[ins.id]; err != nil {
			logger.Warn("%s: skipping %s: %v", run.Tag(), ins.id, err)
			report.Skipped = append(report.Skipped, domain.SkippedSource{ID: ins.id, Err: err})
			continue
		}

		snap := collection.Snapshots[ins.id]
		ts := run.Now()
		out = out.Insert(ins.pos, domain.FormatRow(ts, snap, run.Config.Stats.Tracked))

		report.Added = append(report.Added, ins.id)
		report.Snapshots[ins.id] = snap
		report.TakenAt[ins.id] = ts
		logger.Debug("%s: row added to %q at offset %d", run.Tag(), ins.section.Title, ins.pos)
	}

	return out.Text, report, nil
}

// planInsertions walks sections bottom to top and returns the insertion
// points of matched sections in descending offset order. The top-most
// section for an id is authoritative; later repeats are returned as
// duplicates.
func planInsertions(doc domain.Document, ids []string) ([]insertion, []string, error) {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[domain.NormaliseID(id)] = struct{}{}
	}

	sections := doc.Sections()
	first := make(map[string]int, len(sections))
	for _, s := range sections {
		key := s.Key()
		if _, ok := known[key]; !ok {
			continue
		}
		if _, seen := first[key]; !seen {
			first[key] = s.Index
		}
	}

	var plan []insertion
	var duplicates []string
	for i := len(sections) - 1; i >= 0; i-- {
		s := sections[i]
		key := s.Key()
		idx, ok := first[key]
		if !ok {
			continue
		}
		if idx != s.Index {
			duplicates = append(duplicates, key)
			continue
		}

		pos, err := doc.TerminatorOffset(s)
		if err != nil {
			return nil, nil, err
		}
		plan = append(plan, insertion{id: key, section: s, pos: pos})
	}

	sort.SliceStable(plan, func(a, b int) bool {
		return plan[a].pos > plan[b].pos
	})
	return plan, duplicates, nil
}
