package driven

import (
	"context"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

// DocumentStore reads and publishes the stats page.
// Backed by a MediaWiki site, or by local files for rehearsal runs.
type DocumentStore interface {
	// Exists reports whether the page has ever been created.
	Exists(ctx context.Context, page domain.PageLocator) (bool, error)

	// Fetch returns the current raw text of the page.
	// Returns domain.ErrNotFound if the page does not exist.
	Fetch(ctx context.Context, page domain.PageLocator) (string, error)

	// Commit replaces the page text with an edit summary.
	// Commits are never retried.
	Commit(ctx context.Context, page domain.PageLocator, text, comment string) error
}
