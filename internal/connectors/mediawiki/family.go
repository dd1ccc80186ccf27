package mediawiki

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

// Family is the set of wikis statistics are collected from, keyed by
// prefix (e.g. "en", "fr"). Clients are created on first use and share
// one rate limiter.
type Family struct {
	sites   map[string]string
	cfg     ClientConfig
	limiter *RateLimiter

	mu      sync.Mutex
	clients map[string]*Client
}

// NewFamily validates the prefix to api.php mapping.
func NewFamily(sites map[string]string, cfg ClientConfig, limiter *RateLimiter) (*Family, error) {
	normalised := make(map[string]string, len(sites))
	for prefix, api := range sites {
		id := domain.NormaliseID(prefix)
		if id == "" {
			return nil, fmt.Errorf("%w: empty site prefix", domain.ErrInvalidInput)
		}
		u, err := url.Parse(api)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("%w: site %s: %q", ErrInvalidEndpoint, id, api)
		}
		normalised[id] = api
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultDelay)
	}
	return &Family{
		sites:   normalised,
		cfg:     cfg,
		limiter: limiter,
		clients: make(map[string]*Client),
	}, nil
}

// IDs returns the family prefixes, sorted.
func (f *Family) IDs() []string {
	ids := make([]string, 0, len(f.sites))
	for id := range f.sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// APIURL returns the api.php endpoint of a member wiki.
func (f *Family) APIURL(id string) (string, error) {
	api, ok := f.sites[domain.NormaliseID(id)]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownSource, id)
	}
	return api, nil
}

// BaseURL returns the article root of a member wiki: the api.php URL with
// its last path element replaced by "/wiki".
func (f *Family) BaseURL(id string) (string, error) {
	api, err := f.APIURL(id)
	if err != nil {
		return "", err
	}
	return SiteURL(api), nil
}

// SiteURL derives the article root from an api.php URL.
func SiteURL(api string) string {
	u, err := url.Parse(api)
	if err != nil {
		return api
	}
	u.RawQuery = ""
	u.Fragment = ""
	dir := u.Path
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i]
	}
	u.Path = dir + "/wiki"
	return u.String()
}

// Client returns the client for a member wiki.
func (f *Family) Client(id string) (*Client, error) {
	id = domain.NormaliseID(id)
	api, err := f.APIURL(id)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[id]; ok {
		return c, nil
	}
	c, err := NewClient(api, f.cfg, f.limiter)
	if err != nil {
		return nil, err
	}
	f.clients[id] = c
	return c, nil
}
