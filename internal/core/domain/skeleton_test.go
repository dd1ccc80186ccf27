package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_Header(t *testing.T) {
	tests := []struct {
		name    string
		metric  string
		baseURL string
		want    string
	}{
		{"unlinked pages", MetricPages, "https://a.example/wiki", "!Pages"},
		{"articles", MetricArticles, "https://a.example/wiki", "![https://a.example/wiki/Special:AllPages Articles]"},
		{"trailing slash", MetricEdits, "https://a.example/wiki/", "![https://a.example/wiki/Special:RecentChanges Edits]"},
		{"admins", MetricAdmins, "https://a.example/wiki", "![https://a.example/wiki/Special:ListUsers&group=sysop Admins]"},
		{"no base url", MetricUsers, "", "!Users"},
		{"unknown metric", "jobs", "https://a.example/wiki", "!jobs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnFor(tt.metric).Header(tt.baseURL))
		})
	}
}

func TestIsInitialized(t *testing.T) {
	assert.True(t, IsInitialized("intro "+InitializedMarker+"\n"))
	assert.False(t, IsInitialized(""))
	assert.False(t, IsInitialized("<!--initialized-->"))
}

func TestSkeletonSection(t *testing.T) {
	order := DefaultTrackedMetrics()

	text := SkeletonSection("alpha", "https://a.example/wiki", order)

	assert.True(t, strings.HasPrefix(text, "\n== alpha ==\n\n"+TableAttributes+"\n|-\n!Time\n!Pages\n"))
	assert.True(t, strings.HasSuffix(text, "\n|}\n"))
	assert.Equal(t, len(order)+1, strings.Count(text, "\n!"))
}

func TestSkeletonSection_ParsesAsMatchedSection(t *testing.T) {
	order := []string{MetricPages, MetricEdits}
	doc := NewDocument(InitializedMarker + "\n" +
		SkeletonSection("alpha", "https://a.example/wiki", order) +
		SkeletonSection("beta", "https://b.example/wiki", order))

	sections := doc.Sections()

	require.Len(t, sections, 2)
	assert.Equal(t, "alpha", sections[0].Key())
	assert.Equal(t, "beta", sections[1].Key())
	for _, s := range sections {
		pos, err := doc.TerminatorOffset(s)
		require.NoError(t, err)
		assert.Less(t, pos, s.End)
	}
}
