package driven

// TemplateSource provides the body text the page skeleton is built from.
// Implementations may load templates from files or embed them in the binary.
type TemplateSource interface {
	// Load returns the template for the given name.
	Load(name string) (string, error)
}

// Well-known template names.
const (
	// TemplateStatsPage is the introduction placed above the per-site tables.
	// It has no format placeholders.
	TemplateStatsPage = "stats_page"
)
