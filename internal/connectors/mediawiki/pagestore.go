package mediawiki

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// Ensure PageStore implements the interface.
var _ driven.DocumentStore = (*PageStore)(nil)

// PageStore reads and edits pages through the action API. The locator's
// language selects which wiki of the family hosts the page.
type PageStore struct {
	family *Family
}

// NewPageStore creates a page store over a family.
func NewPageStore(family *Family) *PageStore {
	return &PageStore{family: family}
}

// Exists reports whether the page has been created.
func (s *PageStore) Exists(ctx context.Context, page domain.PageLocator) (bool, error) {
	client, err := s.family.Client(page.Language)
	if err != nil {
		return false, wrapStoreError("check", page, err)
	}

	res, err := client.Get(ctx, url.Values{
		"action": {"query"},
		"prop":   {"info"},
		"titles": {page.Title},
	})
	if err != nil {
		return false, wrapStoreError("check", page, err)
	}

	p := res.Get("query.pages.0")
	if !p.Exists() {
		return false, wrapStoreError("check", page, ErrMalformedResponse)
	}
	if p.Get("invalid").Bool() {
		return false, fmt.Errorf("%w: invalid title %q: %s", domain.ErrInvalidInput, page.Title, p.Get("invalidreason").String())
	}
	return !p.Get("missing").Bool(), nil
}

// Fetch returns the wikitext of the latest revision.
func (s *PageStore) Fetch(ctx context.Context, page domain.PageLocator) (string, error) {
	client, err := s.family.Client(page.Language)
	if err != nil {
		return "", wrapStoreError("fetch", page, err)
	}

	res, err := client.Get(ctx, url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"rvprop":  {"content"},
		"rvslots": {"main"},
		"titles":  {page.Title},
	})
	if err != nil {
		return "", wrapStoreError("fetch", page, err)
	}

	p := res.Get("query.pages.0")
	if p.Get("missing").Bool() {
		return "", fmt.Errorf("fetch %s: %w", page, domain.ErrNotFound)
	}
	content := p.Get("revisions.0.slots.main.content")
	if !content.Exists() {
		return "", wrapStoreError("fetch", page, ErrMalformedResponse)
	}
	return content.String(), nil
}

// Commit saves text as a new bot revision. A rejected edit token is
// refreshed once. Every failure wraps domain.ErrStoreUnavailable; login
// failures also keep their domain.ErrAuth* cause.
func (s *PageStore) Commit(ctx context.Context, page domain.PageLocator, text, comment string) error {
	client, err := s.family.Client(page.Language)
	if err != nil {
		return wrapStoreError("commit", page, err)
	}
	if err := client.EnsureSession(ctx); err != nil {
		return wrapStoreError("commit", page, err)
	}

	err = s.edit(ctx, client, page, text, comment)
	if IsBadToken(err) {
		logger.Debug("mediawiki: edit token rejected for %s, logging in again", page)
		client.resetSession()
		if err := client.EnsureSession(ctx); err != nil {
			return wrapStoreError("commit", page, err)
		}
		err = s.edit(ctx, client, page, text, comment)
	}
	if err != nil {
		return wrapStoreError("commit", page, err)
	}
	return nil
}

func (s *PageStore) edit(ctx context.Context, client *Client, page domain.PageLocator, text, comment string) error {
	token, err := client.Token(ctx, "csrf")
	if err != nil {
		return err
	}

	params := url.Values{
		"action":  {"edit"},
		"title":   {page.Title},
		"text":    {text},
		"summary": {comment},
		"bot":     {"1"},
		"token":   {token},
	}
	if client.cfg.OAuthToken == "" {
		params.Set("assert", "user")
	}

	res, err := client.Post(ctx, params)
	if err != nil {
		return err
	}
	if result := res.Get("edit.result").String(); result != "Success" {
		return fmt.Errorf("%w: edit result %q", ErrMalformedResponse, result)
	}

	if res.Get("edit.nochange").Bool() {
		logger.Info("mediawiki: %s unchanged", page)
	} else {
		logger.Info("mediawiki: saved %s as revision %d", page, res.Get("edit.newrevid").Int())
	}
	return nil
}
