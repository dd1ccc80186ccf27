package driving

import "context"

// Scheduler runs statistics passes on a recurring schedule.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler, waiting for a running pass.
	Stop() error
}
