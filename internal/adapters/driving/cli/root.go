package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// version is set at build time via Execute.
var version = "dev"

// Options are the global settings handed to the Builder once flags are parsed.
type Options struct {
	// ConfigDir holds config.toml, templates and the history database.
	// Empty means ~/.wikistats.
	ConfigDir string

	// LocalDir, when set, replaces the hosting wiki with a directory of
	// .wiki files.
	LocalDir string

	Version string
}

// App holds the services the commands drive.
type App struct {
	Config    domain.Config
	Stats     driving.StatsService
	History   driving.HistoryService
	Scheduler driving.Scheduler

	// Closer releases databases and other resources. May be nil.
	Closer func() error
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.Closer == nil {
		return nil
	}
	return a.Closer()
}

// Builder assembles an App from the global options.
type Builder func(ctx context.Context, opts Options) (*App, error)

var (
	builder Builder

	// app, when set, is used instead of calling builder. Tests preset it.
	app *App

	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "wikistats",
	Short: "Keep a statistics page for a family of wikis",
	Long: `wikistats appends a row of site statistics (pages, edits, users...)
for every wiki of a family to a single wiki page, one section per wiki.

The page is generated on first use. Each run reads every wiki's statistics,
adds one timestamped row to that wiki's table, and saves the page once.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and API activity to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.wikistats)")
}

// Execute runs the command line. The builder is called lazily by the
// commands that need services.
func Execute(ctx context.Context, b Builder, v string) error {
	builder = b
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}

// loadApp returns the preset app, or builds one from the global flags.
// The returned release func must be called when the command finishes.
func loadApp(cmd *cobra.Command, opts Options) (*App, func(), error) {
	if app != nil {
		return app, func() {}, nil
	}
	if builder == nil {
		return nil, nil, errors.New("wikistats not configured")
	}

	opts.ConfigDir = configDir
	opts.Version = version
	a, err := builder(cmd.Context(), opts)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := a.Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	return a, release, nil
}
