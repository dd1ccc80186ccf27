package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/coder/quartz"

	"github.com/custodia-labs/wikistats/internal/adapters/driven/config/file"
	filestore "github.com/custodia-labs/wikistats/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/wikistats/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/wikistats/internal/adapters/driving/cli"
	"github.com/custodia-labs/wikistats/internal/connectors/mediawiki"
	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/core/services"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// build wires the adapters and services for one command invocation.
func build(_ context.Context, opts cli.Options) (*cli.App, error) {
	dir := opts.ConfigDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg, err := services.NewConfigService(configStore).Load()
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded from %s", configStore.Path())

	family, err := mediawiki.NewFamily(cfg.Sites, clientConfig(cfg, opts.Version), mediawiki.NewRateLimiter(cfg.API.Delay))
	if err != nil {
		return nil, fmt.Errorf("configure sites: %w", err)
	}

	var pages driven.DocumentStore = mediawiki.NewPageStore(family)
	if opts.LocalDir != "" {
		local, err := filestore.NewPageStore(opts.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("open local pages: %w", err)
		}
		logger.Info("using local page store %s", opts.LocalDir)
		pages = local
	}

	templates, err := file.NewTemplateStore(filepath.Join(dir, "templates"))
	if err != nil {
		return nil, fmt.Errorf("open templates: %w", err)
	}

	db, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	clock := quartz.NewReal()
	stats := services.NewStatsService(cfg, pages, mediawiki.NewStatsProvider(family), templates, db.RunStore(), clock)

	return &cli.App{
		Config:    cfg,
		Stats:     stats,
		History:   services.NewHistoryService(db.RunStore()),
		Scheduler: services.NewScheduler(cfg.Scheduler, db.SchedulerStore(), stats, clock),
		Closer:    db.Close,
	}, nil
}

func clientConfig(cfg domain.Config, version string) mediawiki.ClientConfig {
	ua := cfg.API.UserAgent
	if ua == domain.DefaultConfig().API.UserAgent && version != "" {
		ua += "/" + version
	}
	return mediawiki.ClientConfig{
		UserAgent:    ua,
		Timeout:      cfg.API.Timeout,
		Retries:      cfg.API.Retries,
		Username:     cfg.Bot.Username,
		Password:     cfg.Bot.Password,
		PasswordFunc: cli.PasswordPrompt(cfg.Bot.Username),
		OAuthToken:   cfg.Bot.OAuthToken,
	}
}
