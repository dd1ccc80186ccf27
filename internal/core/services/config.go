package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
)

// Ensure ConfigService implements the interface.
var _ driving.ConfigService = (*ConfigService)(nil)

// Config keys.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBotUsername      = "bot.username"
	keyBotPassword      = "bot.password"
	keyBotOAuthToken    = "bot.oauth_token"
	keyBotLanguage      = "bot.language"
	keyPageTitle        = "page.title"
	keyPageInitComment  = "page.init_comment"
	keyPageUpdate       = "page.update_comment"
	keyStatsTracked     = "stats.tracked"
	keyStatsParallel    = "stats.parallel"
	keyAPIDelay         = "api.delay"
	keyAPITimeout       = "api.timeout"
	keyAPIRetries       = "api.retries"
	keyAPIUserAgent     = "api.user_agent"
	keySchedulerEnabled = "scheduler.enabled"
	keySchedulerEvery   = "scheduler.interval"
	keySchedulerCron    = "scheduler.cron"
	prefixSites         = "sites"
)

// ConfigService builds a domain.Config from the config store.
type ConfigService struct {
	configStore driven.ConfigStore
}

// NewConfigService creates a new config service.
func NewConfigService(configStore driven.ConfigStore) *ConfigService {
	return &ConfigService{configStore: configStore}
}

// Path returns the configuration file path.
func (s *ConfigService) Path() string {
	return s.configStore.Path()
}

// Load reads the configuration, applying defaults for unset keys,
// and validates the result.
func (s *ConfigService) Load() (domain.Config, error) {
	cfg := domain.DefaultConfig()

	cfg.Bot = domain.BotSettings{
		Username:   s.configStore.GetString(keyBotUsername),
		Password:   s.configStore.GetString(keyBotPassword),
		OAuthToken: s.configStore.GetString(keyBotOAuthToken),
		Language:   domain.NormaliseID(s.getString(keyBotLanguage, cfg.Bot.Language)),
	}
	cfg.Page = domain.PageSettings{
		Title:         s.configStore.GetString(keyPageTitle),
		InitComment:   s.getString(keyPageInitComment, cfg.Page.InitComment),
		UpdateComment: s.getString(keyPageUpdate, cfg.Page.UpdateComment),
	}

	if tracked := s.configStore.GetStringSlice(keyStatsTracked); len(tracked) > 0 {
		cfg.Stats.Tracked = normaliseMetrics(tracked)
	}
	cfg.Stats.Parallel = s.getInt(keyStatsParallel, cfg.Stats.Parallel)

	var err error
	if cfg.API.Delay, err = s.getDuration(keyAPIDelay, cfg.API.Delay); err != nil {
		return domain.Config{}, err
	}
	if cfg.API.Timeout, err = s.getDuration(keyAPITimeout, cfg.API.Timeout); err != nil {
		return domain.Config{}, err
	}
	cfg.API.Retries = s.getInt(keyAPIRetries, cfg.API.Retries)
	cfg.API.UserAgent = s.getString(keyAPIUserAgent, cfg.API.UserAgent)

	task := cfg.Scheduler.GetTaskConfig(domain.TaskIDStatsSync)
	if task.Interval, err = s.getDuration(keySchedulerEvery, task.Interval); err != nil {
		return domain.Config{}, err
	}
	task.Cron = s.configStore.GetString(keySchedulerCron)
	if task.Cron != "" {
		if _, err := cron.ParseStandard(task.Cron); err != nil {
			return domain.Config{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, keySchedulerCron, err)
		}
	}
	cfg.Scheduler.Enabled = s.getBool(keySchedulerEnabled, cfg.Scheduler.Enabled)
	cfg.Scheduler.TaskConfigs[domain.TaskIDStatsSync] = task

	for prefix, api := range s.configStore.GetStringMap(prefixSites) {
		if id := domain.NormaliseID(prefix); id != "" && api != "" {
			cfg.Sites[id] = api
		}
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("validate config %s: %w", s.configStore.Path(), err)
	}
	return cfg, nil
}

// normaliseMetrics case-folds metric names and drops repeats, keeping the
// configured order.
func normaliseMetrics(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = domain.NormaliseID(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (s *ConfigService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *ConfigService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *ConfigService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *ConfigService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}
