package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Well-known metric names, as reported by MediaWiki's siteinfo statistics.
const (
	MetricPages       = "pages"
	MetricArticles    = "articles"
	MetricEdits       = "edits"
	MetricImages      = "images"
	MetricUsers       = "users"
	MetricActiveUsers = "activeusers"
	MetricAdmins      = "admins"
)

// DefaultTrackedMetrics returns the column order used when none is configured.
func DefaultTrackedMetrics() []string {
	return []string{
		MetricPages,
		MetricArticles,
		MetricEdits,
		MetricImages,
		MetricUsers,
		MetricActiveUsers,
		MetricAdmins,
	}
}

// NormaliseID trims and case-folds a data source identifier or section title.
func NormaliseID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormaliseIDs normalises, de-duplicates and sorts a list of identifiers.
// Empty identifiers are dropped.
func NormaliseIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = NormaliseID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MetricValue is an optional metric reading. The zero value is absent,
// which is distinct from a present zero.
type MetricValue struct {
	Value   string
	Present bool
}

// IntValue returns a present numeric value.
func IntValue(n int64) MetricValue {
	return MetricValue{Value: strconv.FormatInt(n, 10), Present: true}
}

// StringValue returns a present textual value.
func StringValue(s string) MetricValue {
	return MetricValue{Value: s, Present: true}
}

// String returns the value, or "" when absent.
func (v MetricValue) String() string {
	if !v.Present {
		return ""
	}
	return v.Value
}

// Snapshot is the set of metric values retrieved for one data source at one
// point in time. A missing key means the metric is absent.
type Snapshot map[string]MetricValue

// Get returns the metric value and whether it is present.
func (s Snapshot) Get(name string) (string, bool) {
	v, ok := s[name]
	if !ok || !v.Present {
		return "", false
	}
	return v.Value, true
}

// Missing returns the names in order that have no value in the snapshot.
func (s Snapshot) Missing(order []string) []string {
	var missing []string
	for _, name := range order {
		if _, ok := s.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
