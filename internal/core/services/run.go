package services

import (
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

// Run carries the per-pass context handed to every component.
// A new Run is created for each pass and discarded afterwards.
type Run struct {
	ID        string
	Config    domain.Config
	Clock     quartz.Clock
	DryRun    bool
	StartedAt time.Time
}

// NewRun starts a pass with a fresh identifier.
// A nil clock uses the wall clock.
func NewRun(cfg domain.Config, clock quartz.Clock, dryRun bool) *Run {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Run{
		ID:        uuid.NewString(),
		Config:    cfg,
		Clock:     clock,
		DryRun:    dryRun,
		StartedAt: clock.Now(),
	}
}

// Now returns the current time on the run's clock.
func (r *Run) Now() time.Time {
	return r.Clock.Now()
}

// Tag is a short identifier used to prefix log lines.
func (r *Run) Tag() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
