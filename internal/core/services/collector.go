package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// Collection holds the outcome of fetching snapshots for a set of sources.
type Collection struct {
	Snapshots map[string]domain.Snapshot
	Errors    map[string]error
}

// Collector fetches snapshots from a MetricsProvider concurrently.
// One source failing never affects another.
type Collector struct {
	provider driven.MetricsProvider
	parallel int
}

// NewCollector creates a collector running at most parallel fetches at once.
func NewCollector(provider driven.MetricsProvider, parallel int) *Collector {
	if parallel < 1 {
		parallel = 1
	}
	return &Collector{
		provider: provider,
		parallel: parallel,
	}
}

// Collect fetches a snapshot for every id. Per-source failures are returned
// in Collection.Errors wrapped with domain.ErrMetricUnavailable. The only
// error returned directly is context cancellation.
func (c *Collector) Collect(ctx context.Context, ids []string) (*Collection, error) {
	out := &Collection{
		Snapshots: make(map[string]domain.Snapshot, len(ids)),
		Errors:    make(map[string]error),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)

	for _, id := range ids {
		g.Go(func() error {
			start := time.Now()
			snap, err := c.provider.Snapshot(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Errors[id] = wrapUnavailable(id, err)
				logger.Debug("snapshot %s failed after %s: %v", id, time.Since(start), err)
				return nil
			}
			out.Snapshots[id] = snap
			logger.Debug("snapshot %s: %d metrics in %s", id, len(snap), time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect snapshots: %w", err)
	}
	return out, nil
}

func wrapUnavailable(id string, err error) error {
	if errors.Is(err, domain.ErrMetricUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrMetricUnavailable, id, err)
}
