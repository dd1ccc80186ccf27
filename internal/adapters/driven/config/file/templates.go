package file

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateSource = (*TemplateStore)(nil)

//go:embed templates/stats_page.txt
var defaultStatsPage string

// defaultTemplates are written to disk on first use and served when the
// user's copy cannot be read.
var defaultTemplates = map[string]string{
	driven.TemplateStatsPage: defaultStatsPage,
}

// TemplateStore loads page templates from user-editable files on disk,
// falling back to the embedded defaults.
//
// The directory is created lazily on the first Load, not in the constructor.
type TemplateStore struct {
	mu       sync.RWMutex
	dir      string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

// NewTemplateStore creates a new file-based template store.
// If dir is empty, defaults to ~/.wikistats/templates/.
func NewTemplateStore(dir string) (*TemplateStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "templates")
	}

	return &TemplateStore{
		dir:   dir,
		cache: make(map[string]string),
	}, nil
}

// Load returns the named template. Templates always end with a newline so
// the sections appended after them start on their own line.
func (s *TemplateStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if tmpl, ok := defaultTemplates[name]; ok {
			return tmpl, nil
		}
		return "", fmt.Errorf("template store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if tmpl, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return tmpl, nil
	}
	s.mu.RUnlock()

	tmpl, err := s.loadFromFile(name)
	if err != nil {
		if def, ok := defaultTemplates[name]; ok {
			return def, nil
		}
		return "", fmt.Errorf("load template %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		tmpl = cached
	} else {
		s.cache[name] = tmpl
	}
	s.mu.Unlock()

	return tmpl, nil
}

// Reload clears the cache, forcing fresh loads from disk.
func (s *TemplateStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the template directory path.
func (s *TemplateStore) Dir() string {
	return s.dir
}

// initialise creates the directory and any missing default files.
func (s *TemplateStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create template directory: %w", err)
		return
	}

	for name, content := range defaultTemplates {
		path := filepath.Join(s.dir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default template %q: %w", name, err)
				return
			}
		}
	}
}

func (s *TemplateStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	text := strings.TrimRight(string(data), "\n\r\t ")
	if text == "" {
		return "", nil
	}
	return text + "\n", nil
}
