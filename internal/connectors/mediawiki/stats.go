package mediawiki

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
)

// Ensure StatsProvider implements the interface.
var _ driven.MetricsProvider = (*StatsProvider)(nil)

// StatsProvider reads site statistics from every wiki of a family.
// Statistics are public, so requests are made without logging in.
type StatsProvider struct {
	family *Family
}

// NewStatsProvider creates a metrics provider over a family.
func NewStatsProvider(family *Family) *StatsProvider {
	return &StatsProvider{family: family}
}

// ListDataSources returns the family prefixes.
func (p *StatsProvider) ListDataSources(_ context.Context) ([]string, error) {
	return p.family.IDs(), nil
}

// BaseURL returns the article root used for deep links.
func (p *StatsProvider) BaseURL(id string) (string, error) {
	return p.family.BaseURL(id)
}

// Snapshot queries meta=siteinfo&siprop=statistics. Every key the wiki
// reports becomes a present metric; anything it omits stays absent.
func (p *StatsProvider) Snapshot(ctx context.Context, id string) (domain.Snapshot, error) {
	client, err := p.family.Client(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMetricUnavailable, err)
	}

	res, err := client.Get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"siteinfo"},
		"siprop": {"statistics"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrMetricUnavailable, id, err)
	}

	stats := res.Get("query.statistics")
	if !stats.IsObject() {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrMetricUnavailable, id, ErrMalformedResponse)
	}

	snap := make(domain.Snapshot)
	stats.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			snap[key.String()] = domain.IntValue(value.Int())
		case gjson.String:
			snap[key.String()] = domain.StringValue(value.String())
		}
		return true
	})
	return snap, nil
}
