package driven

import (
	"context"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

// MetricsProvider exposes the family of data sources and their statistics.
type MetricsProvider interface {
	// ListDataSources returns the known data source identifiers,
	// normalised and sorted. The set is fixed for the duration of a run.
	ListDataSources(ctx context.Context) ([]string, error)

	// BaseURL returns the web root used for deep links into a data source.
	// Returns domain.ErrUnknownSource for identifiers outside the family.
	BaseURL(id string) (string, error)

	// Snapshot retrieves the current metric values for a data source.
	// Failures wrap domain.ErrMetricUnavailable.
	Snapshot(ctx context.Context, id string) (domain.Snapshot, error)
}
