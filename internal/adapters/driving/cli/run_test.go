package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
)

var takenAt = time.Date(2031, 3, 2, 8, 30, 0, 0, time.UTC)

func sampleResult(dryRun bool) *driving.RunResult {
	cfg := testAppConfig()
	return &driving.RunResult{
		Record: domain.RunRecord{
			ID:          "run-1",
			Page:        cfg.Locator(),
			StartedAt:   takenAt,
			Initialized: true,
			RowsAdded:   1,
			Skipped:     []string{"fr"},
			DryRun:      dryRun,
		},
		Report: &domain.SyncReport{
			Added:   []string{"en"},
			Skipped: []domain.SkippedSource{{ID: "fr", Err: fmt.Errorf("%w: timeout", domain.ErrMetricUnavailable)}},
			Snapshots: map[string]domain.Snapshot{
				"en": {domain.MetricPages: domain.IntValue(100), domain.MetricEdits: domain.IntValue(2000)},
			},
			TakenAt: map[string]time.Time{"en": takenAt},
		},
		Before: "== en ==\n{|\n|}\n",
		After:  "== en ==\n{|\n|-\n|2031/03/02 08:30\n|100\n|2000\n|}\n",
	}
}

func TestRunCmd_PrintsReport(t *testing.T) {
	stats := &mockStats{result: sampleResult(false)}

	out, err := execute(t, context.Background(), &App{Config: testAppConfig(), Stats: stats}, "run")

	require.NoError(t, err)
	assert.False(t, stats.lastOpts.DryRun)
	assert.Contains(t, out, "Stats page updated")
	assert.Contains(t, out, "en:User:StatsBot/International Stats")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Initialised")
	assert.Contains(t, out, "Updated")
	assert.Contains(t, out, "timeout")
	assert.NotContains(t, out, "|2031/03/02 08:30")
}

func TestRunCmd_DryRunShowsRows(t *testing.T) {
	stats := &mockStats{result: sampleResult(true)}

	out, err := execute(t, context.Background(), &App{Config: testAppConfig(), Stats: stats}, "run", "--dry-run")

	require.NoError(t, err)
	assert.True(t, stats.lastOpts.DryRun)
	assert.Contains(t, out, "Dry run, nothing saved")
	assert.Contains(t, out, "+4 lines")
	assert.Contains(t, out, "== en ==")
	assert.Contains(t, out, "|-\n|2031/03/02 08:30\n|100\n|2000\n")
}

func TestRunCmd_PrintShowsPage(t *testing.T) {
	stats := &mockStats{result: sampleResult(false)}

	out, err := execute(t, context.Background(), &App{Config: testAppConfig(), Stats: stats}, "run", "--print")

	require.NoError(t, err)
	assert.Contains(t, out, stats.result.After)
}

func TestRunCmd_RunInProgress(t *testing.T) {
	stats := &mockStats{err: domain.ErrRunInProgress}

	_, err := execute(t, context.Background(), &App{Stats: stats}, "run")

	assert.EqualError(t, err, "another run is in progress")
}

func TestRunCmd_Failure(t *testing.T) {
	stats := &mockStats{err: &domain.StructuralError{Section: "fr"}}

	_, err := execute(t, context.Background(), &App{Stats: stats}, "run")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStructural))
	assert.Contains(t, err.Error(), "run failed")
}

func TestRunCmd_NoStatsService(t *testing.T) {
	_, err := execute(t, context.Background(), &App{}, "run")

	assert.EqualError(t, err, "stats service not configured")
}

func TestRunCmd_RejectsArguments(t *testing.T) {
	_, err := execute(t, context.Background(), &App{Stats: &mockStats{}}, "run", "extra")

	assert.Error(t, err)
}

func TestLineDelta(t *testing.T) {
	assert.Equal(t, 2, lineDelta("a\n", "a\nb\nc\n"))
	assert.Equal(t, 0, lineDelta("", ""))
}
