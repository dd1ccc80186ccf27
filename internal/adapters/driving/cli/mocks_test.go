package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
)

type mockStats struct {
	result   *driving.RunResult
	err      error
	skeleton string
	sites    []driving.SiteInfo
	lastOpts driving.RunOptions
	runs     int
}

func (m *mockStats) Run(_ context.Context, opts driving.RunOptions) (*driving.RunResult, error) {
	m.runs++
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockStats) Skeleton(context.Context) (string, error) {
	return m.skeleton, m.err
}

func (m *mockStats) Sites(context.Context) ([]driving.SiteInfo, error) {
	return m.sites, m.err
}

type mockHistory struct {
	runs       []domain.RunRecord
	snaps      []domain.SnapshotRecord
	err        error
	lastLimit  int
	lastSource string
}

func (m *mockHistory) Runs(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.lastLimit = limit
	return m.runs, m.err
}

func (m *mockHistory) Snapshots(_ context.Context, source string, limit int) ([]domain.SnapshotRecord, error) {
	m.lastSource = source
	m.lastLimit = limit
	return m.snaps, m.err
}

type mockScheduler struct {
	mu      sync.Mutex
	started chan struct{}
	stopped bool
	err     error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	close(m.started)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) wasStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func resetFlags() {
	runDryRun = false
	runPrint = false
	runLocal = ""
	historyLimit = 20
	historySource = ""
	verbose = false
	configDir = ""
}

// execute runs the root command against a preset app and returns its output.
func execute(t *testing.T, ctx context.Context, a *App, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	prevApp, prevBuilder := app, builder
	app = a

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		app, builder = prevApp, prevBuilder
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags()
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func testAppConfig() domain.Config {
	cfg := domain.DefaultConfig()
	cfg.Bot.Username = "StatsBot"
	cfg.Stats.Tracked = []string{domain.MetricPages, domain.MetricEdits}
	cfg.Sites = map[string]string{
		"en": "https://en.example.org/w/api.php",
		"fr": "https://fr.example.org/w/api.php",
	}
	return cfg
}
