package driving

import (
	"context"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

// StatsService runs statistics passes against the stats page.
type StatsService interface {
	// Run performs one pass: ensure the page is initialised, append a row
	// to every matched section, and commit the result once.
	// Returns domain.ErrRunInProgress if a pass is already executing.
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)

	// Skeleton returns the page text the initialiser would generate.
	Skeleton(ctx context.Context) (string, error)

	// Sites lists the family of data sources and their deep-link roots.
	Sites(ctx context.Context) ([]SiteInfo, error)
}

// RunOptions controls a single pass.
type RunOptions struct {
	// DryRun computes the new text without committing anything,
	// including the skeleton of an uninitialised page.
	DryRun bool
}

// RunResult describes a completed pass.
type RunResult struct {
	Record domain.RunRecord
	Report *domain.SyncReport

	// Before is the text the rows were applied to.
	Before string

	// After is the text that was (or, in a dry run, would have been) committed.
	After string
}

// SiteInfo describes one member of the family.
type SiteInfo struct {
	ID      string
	BaseURL string
}
