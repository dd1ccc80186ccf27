package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// Initializer makes sure the stats page carries a skeleton: the template
// body followed by one empty table per known data source.
type Initializer struct {
	store     driven.DocumentStore
	provider  driven.MetricsProvider
	templates driven.TemplateSource
}

// NewInitializer creates an initializer.
func NewInitializer(
	store driven.DocumentStore,
	provider driven.MetricsProvider,
	templates driven.TemplateSource,
) *Initializer {
	return &Initializer{
		store:     store,
		provider:  provider,
		templates: templates,
	}
}

// Ensure returns the current page text, generating and committing the
// skeleton first when the page is missing or lacks the initialisation
// marker. The returned flag reports whether the skeleton was generated.
//
// In a dry run the skeleton is returned without being committed.
func (i *Initializer) Ensure(ctx context.Context, run *Run) (string, bool, error) {
	page := run.Config.Locator()

	exists, err := i.store.Exists(ctx, page)
	if err != nil {
		return "", false, fmt.Errorf("check page: %w", err)
	}
	if exists {
		text, err := i.store.Fetch(ctx, page)
		if err != nil {
			return "", false, fmt.Errorf("fetch page: %w", err)
		}
		if domain.IsInitialized(text) {
			return text, false, nil
		}
		logger.Info("%s: %s exists but is not initialised", run.Tag(), page)
	}

	skeleton, err := i.Skeleton(ctx, run)
	if err != nil {
		return "", false, err
	}
	if run.DryRun {
		logger.Info("%s: dry run, skeleton for %s not committed", run.Tag(), page)
		return skeleton, true, nil
	}

	if err := i.store.Commit(ctx, page, skeleton, run.Config.Page.InitComment); err != nil {
		return "", false, fmt.Errorf("commit skeleton: %w", err)
	}
	logger.Info("%s: initialised %s", run.Tag(), page)

	text, err := i.store.Fetch(ctx, page)
	if err != nil {
		return "", true, fmt.Errorf("refetch page: %w", err)
	}
	return text, true, nil
}

// Skeleton builds the initial page text. The marker is prepended when the
// template does not carry it, so the result always counts as initialised.
func (i *Initializer) Skeleton(ctx context.Context, run *Run) (string, error) {
	body, err := i.templates.Load(driven.TemplateStatsPage)
	if err != nil {
		return "", fmt.Errorf("load template: %w", err)
	}

	ids, err := i.provider.ListDataSources(ctx)
	if err != nil {
		return "", fmt.Errorf("list data sources: %w", err)
	}
	ids = domain.NormaliseIDs(ids)

	var b strings.Builder
	if !domain.IsInitialized(body) {
		b.WriteString(domain.InitializedMarker)
		b.WriteString("\n")
	}
	b.WriteString(body)

	for _, id := range ids {
		base, err := i.provider.BaseURL(id)
		if err != nil {
			return "", fmt.Errorf("resolve base url for %s: %w", id, err)
		}
		b.WriteString(domain.SkeletonSection(id, base, run.Config.Stats.Tracked))
	}

	return b.String(), nil
}
