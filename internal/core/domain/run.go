package domain

import "time"

// RunRecord summarises one statistics pass.
type RunRecord struct {
	// ID is the unique identifier for the run.
	ID string

	// Page is the stats page the run targeted.
	Page PageLocator

	StartedAt time.Time
	EndedAt   time.Time

	// Initialized is true when the run generated the page skeleton.
	Initialized bool

	// RowsAdded is the number of sections that received a row.
	RowsAdded int

	// Skipped lists data sources whose metrics were unavailable.
	Skipped []string

	// Error is the failure message of an aborted run.
	Error string

	// DryRun is true when nothing was committed.
	DryRun bool
}

// Success reports whether the run completed without aborting.
func (r RunRecord) Success() bool {
	return r.Error == ""
}

// SnapshotRecord is an archived snapshot taken during a run.
type SnapshotRecord struct {
	RunID   string
	Source  string
	TakenAt time.Time
	Values  Snapshot
}

// SkippedSource is a matched section that received no row this run.
type SkippedSource struct {
	ID  string
	Err error
}

// SyncReport describes what a synchronisation pass did to the text.
type SyncReport struct {
	// Added lists the data sources that received a row, bottom to top.
	Added []string

	// Skipped lists matched sections whose metrics were unavailable.
	Skipped []SkippedSource

	// Duplicates lists later sections repeating an already matched id.
	// Only the first occurrence receives rows.
	Duplicates []string

	// Snapshots holds every snapshot that was obtained, by data source.
	Snapshots map[string]Snapshot

	// TakenAt records when each snapshot was formatted into a row.
	TakenAt map[string]time.Time
}

// SkippedIDs returns the identifiers of skipped sources.
func (r *SyncReport) SkippedIDs() []string {
	ids := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		ids = append(ids, s.ID)
	}
	return ids
}
