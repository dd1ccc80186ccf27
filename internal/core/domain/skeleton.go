package domain

import (
	"strings"
)

// InitializedMarker is present in every page that has been set up.
// Its absence means the skeleton must be (re)generated.
const InitializedMarker = "<!--Initialized-->"

// TableAttributes is the opening line of every statistics table.
const TableAttributes = "{|class='wikitable sortable' style='width:700px'"

// Column describes a statistics table header cell.
type Column struct {
	// Label is the visible header text.
	Label string

	// LinkSuffix is appended to the data source's base URL to build a deep
	// link into its web UI. Empty means the header is not linked.
	LinkSuffix string
}

// metricColumns maps tracked metrics to their fixed header cells.
var metricColumns = map[string]Column{
	MetricPages:       {Label: "Pages"},
	MetricArticles:    {Label: "Articles", LinkSuffix: "/Special:AllPages"},
	MetricEdits:       {Label: "Edits", LinkSuffix: "/Special:RecentChanges"},
	MetricImages:      {Label: "Images", LinkSuffix: "/Special:AllPages&namespace=6"},
	MetricUsers:       {Label: "Users", LinkSuffix: "/Special:ListUsers"},
	MetricActiveUsers: {Label: "Active Users", LinkSuffix: "/Special:ActiveUsers"},
	MetricAdmins:      {Label: "Admins", LinkSuffix: "/Special:ListUsers&group=sysop"},
}

// ColumnFor returns the header cell for a metric. Unknown metrics get an
// unlinked header named after the metric.
func ColumnFor(metric string) Column {
	if c, ok := metricColumns[metric]; ok {
		return c
	}
	return Column{Label: metric}
}

// Header renders a header cell, linking it when baseURL and a suffix exist.
func (c Column) Header(baseURL string) string {
	if c.LinkSuffix == "" || baseURL == "" {
		return "!" + c.Label
	}
	return "![" + strings.TrimRight(baseURL, "/") + c.LinkSuffix + " " + c.Label + "]"
}

// IsInitialized reports whether text carries the initialisation marker.
func IsInitialized(text string) bool {
	return strings.Contains(text, InitializedMarker)
}

// SkeletonSection renders the heading and empty table for one data source.
// The header has a Time column followed by one column per tracked metric,
// matching the cells produced by FormatRow.
func SkeletonSection(id, baseURL string, order []string) string {
	var b strings.Builder
	b.WriteString("\n== ")
	b.WriteString(id)
	b.WriteString(" ==\n\n")
	b.WriteString(TableAttributes)
	b.WriteString("\n|-\n!Time")
	for _, metric := range order {
		b.WriteString("\n")
		b.WriteString(ColumnFor(metric).Header(baseURL))
	}
	b.WriteString("\n")
	b.WriteString(TableTerminator)
	b.WriteString("\n")
	return b.String()
}
