package domain

import (
	"fmt"
	"sort"
	"time"
)

// DefaultLanguage is the family prefix of the wiki hosting the stats page
// when none is configured.
const DefaultLanguage = "en"

// PageLocator identifies the stats page: which family wiki hosts it and its title.
type PageLocator struct {
	Language string
	Title    string
}

func (l PageLocator) String() string {
	return l.Language + ":" + l.Title
}

// BotSettings holds the account used to read and edit the stats page.
type BotSettings struct {
	Username string

	// Password is a bot password. It is never written back to disk.
	Password string

	// OAuthToken is an owner-only OAuth 2 access token. When set it
	// replaces password login.
	OAuthToken string

	// Language is the family prefix of the wiki hosting the stats page.
	Language string
}

// PageSettings describes the stats page and its edit summaries.
type PageSettings struct {
	Title         string
	InitComment   string
	UpdateComment string
}

// StatsSettings controls which metrics are tracked and how they are collected.
type StatsSettings struct {
	// Tracked is the column order of every row. Order is significant.
	Tracked []string

	// Parallel bounds concurrent snapshot fetches.
	Parallel int
}

// APISettings controls outbound API behaviour.
type APISettings struct {
	// Delay is the minimum gap between two API calls.
	Delay     time.Duration
	Timeout   time.Duration
	Retries   int
	UserAgent string
}

// Config is the complete run configuration. It is built once at startup
// and passed explicitly; nothing mutates it afterwards.
type Config struct {
	Bot       BotSettings
	Page      PageSettings
	Stats     StatsSettings
	API       APISettings
	Scheduler SchedulerConfig

	// Sites maps each family prefix to its api.php endpoint.
	Sites map[string]string
}

// DefaultConfig returns a Config with sensible defaults.
// Username and Sites have no defaults.
func DefaultConfig() Config {
	return Config{
		Bot: BotSettings{
			Language: DefaultLanguage,
		},
		Page: PageSettings{
			InitComment:   "Initializing.",
			UpdateComment: "Weekly update.",
		},
		Stats: StatsSettings{
			Tracked:  DefaultTrackedMetrics(),
			Parallel: 4,
		},
		API: APISettings{
			Delay:     500 * time.Millisecond,
			Timeout:   30 * time.Second,
			Retries:   3,
			UserAgent: "wikistats",
		},
		Scheduler: DefaultSchedulerConfig(),
		Sites:     map[string]string{},
	}
}

// Locator returns the stats page location. The title defaults to a
// subpage of the bot's user page.
func (c Config) Locator() PageLocator {
	title := c.Page.Title
	if title == "" {
		title = "User:" + c.Bot.Username + "/International Stats"
	}
	return PageLocator{Language: c.Bot.Language, Title: title}
}

// SiteIDs returns the configured family prefixes, normalised and sorted.
func (c Config) SiteIDs() []string {
	ids := make([]string, 0, len(c.Sites))
	for id := range c.Sites {
		ids = append(ids, id)
	}
	ids = NormaliseIDs(ids)
	sort.Strings(ids)
	return ids
}

// Validate checks the configuration is usable for a run.
func (c Config) Validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("%w: no sites configured", ErrInvalidInput)
	}
	if c.Page.Title == "" && c.Bot.Username == "" {
		return fmt.Errorf("%w: bot.username or page.title is required", ErrInvalidInput)
	}
	if _, ok := c.Sites[NormaliseID(c.Bot.Language)]; !ok {
		return fmt.Errorf("%w: bot.language %q is not a configured site", ErrInvalidInput, c.Bot.Language)
	}
	if len(c.Stats.Tracked) == 0 {
		return fmt.Errorf("%w: stats.tracked is empty", ErrInvalidInput)
	}
	if c.Stats.Parallel < 1 {
		return fmt.Errorf("%w: stats.parallel must be at least 1", ErrInvalidInput)
	}
	return nil
}
