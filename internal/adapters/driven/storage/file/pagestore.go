// Package file provides a DocumentStore backed by plain wikitext files, for
// rehearsing a run without touching a live wiki.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// Ensure PageStore implements the interface.
var _ driven.DocumentStore = (*PageStore)(nil)

// Extension is the file extension of stored pages.
const Extension = ".wiki"

// PageStore keeps each page at <dir>/<language>/<title>.wiki. Writes are
// atomic, so an interrupted commit leaves the previous text in place.
type PageStore struct {
	mu  sync.RWMutex
	dir string
}

// NewPageStore creates a page store rooted at dir.
func NewPageStore(dir string) (*PageStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: page directory is required", domain.ErrInvalidInput)
	}
	return &PageStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *PageStore) Dir() string {
	return s.dir
}

// PathFor returns the file backing a page. Titles are stored the way
// MediaWiki forms URLs: spaces become underscores, then the title is escaped
// so subpage slashes stay inside one file name.
func (s *PageStore) PathFor(page domain.PageLocator) string {
	lang := domain.NormaliseID(page.Language)
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	name := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(page.Title), " ", "_"))
	return filepath.Join(s.dir, lang, name+Extension)
}

// Exists reports whether the page file exists.
func (s *PageStore) Exists(_ context.Context, page domain.PageLocator) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.PathFor(page))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: check %s: %w", domain.ErrStoreUnavailable, page, err)
	}
	return true, nil
}

// Fetch reads the page text.
func (s *PageStore) Fetch(_ context.Context, page domain.PageLocator) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.PathFor(page))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("fetch %s: %w", page, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", domain.ErrStoreUnavailable, page, err)
	}
	return string(data), nil
}

// Commit replaces the page text. The comment is only logged; files carry no
// revision history.
func (s *PageStore) Commit(_ context.Context, page domain.PageLocator, text, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PathFor(page)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: commit %s: %w", domain.ErrStoreUnavailable, page, err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("%w: commit %s: %w", domain.ErrStoreUnavailable, page, err)
	}
	logger.Info("file: wrote %s (%s)", path, comment)
	return nil
}
