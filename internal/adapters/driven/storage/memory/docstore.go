package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// Revision is one committed version of a page.
type Revision struct {
	Text    string
	Comment string
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Every commit is kept so tests can inspect the edit history.
type DocumentStore struct {
	mu        sync.RWMutex
	revisions map[domain.PageLocator][]Revision
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		revisions: make(map[domain.PageLocator][]Revision),
	}
}

// Exists reports whether the page has at least one revision.
func (s *DocumentStore) Exists(_ context.Context, page domain.PageLocator) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revisions[page]) > 0, nil
}

// Fetch returns the latest revision of the page.
func (s *DocumentStore) Fetch(_ context.Context, page domain.PageLocator) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	revs := s.revisions[page]
	if len(revs) == 0 {
		return "", domain.ErrNotFound
	}
	return revs[len(revs)-1].Text, nil
}

// Commit appends a new revision.
func (s *DocumentStore) Commit(_ context.Context, page domain.PageLocator, text, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions[page] = append(s.revisions[page], Revision{Text: text, Comment: comment})
	return nil
}

// History returns every revision of the page, oldest first.
func (s *DocumentStore) History(page domain.PageLocator) []Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Revision(nil), s.revisions[page]...)
}
