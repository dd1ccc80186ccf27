package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikistats/internal/logger"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"run", "skeleton", "sites", "history", "daemon", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestLoadApp_NotConfigured(t *testing.T) {
	orig := builder
	builder = nil
	t.Cleanup(func() { builder = orig })

	_, err := execute(t, context.Background(), nil, "sites")

	assert.EqualError(t, err, "wikistats not configured")
}

func TestLoadApp_UsesBuilder(t *testing.T) {
	orig := builder
	t.Cleanup(func() { builder = orig })

	var got Options
	closed := false
	builder = func(_ context.Context, opts Options) (*App, error) {
		got = opts
		return &App{
			Config: testAppConfig(),
			Stats:  &mockStats{result: sampleResult(false)},
			Closer: func() error {
				closed = true
				return nil
			},
		}, nil
	}

	_, err := execute(t, context.Background(), nil, "--config-dir", "/tmp/ws", "run", "--local", "/tmp/pages")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/ws", got.ConfigDir)
	assert.Equal(t, "/tmp/pages", got.LocalDir)
	assert.Equal(t, version, got.Version)
	assert.True(t, closed)
}

func TestLoadApp_BuilderError(t *testing.T) {
	orig := builder
	t.Cleanup(func() { builder = orig })
	builder = func(context.Context, Options) (*App, error) {
		return nil, errors.New("bad config")
	}

	_, err := execute(t, context.Background(), nil, "skeleton")

	assert.EqualError(t, err, "bad config")
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	t.Cleanup(func() { logger.SetVerbose(false) })

	_, err := execute(t, context.Background(), &App{}, "--verbose", "version")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestApp_CloseWithoutCloser(t *testing.T) {
	assert.NoError(t, (&App{}).Close())
}
