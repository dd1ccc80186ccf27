package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/wikistats/internal/core/domain"
)

func TestCollector_Collect(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := newMockMetricsProvider("a", "b", "c")
	provider.snapshots["a"] = domain.Snapshot{domain.MetricPages: domain.IntValue(1)}
	provider.snapshots["b"] = domain.Snapshot{domain.MetricPages: domain.IntValue(2)}
	provider.errs["c"] = errors.New("timeout")

	got, err := NewCollector(provider, 2).Collect(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Len(t, got.Snapshots, 2)
	assert.Equal(t, "2", got.Snapshots["b"][domain.MetricPages].Value)
	require.Contains(t, got.Errors, "c")
	assert.True(t, errors.Is(got.Errors["c"], domain.ErrMetricUnavailable))
	assert.ErrorContains(t, got.Errors["c"], "timeout")
}

func TestCollector_KeepsExistingUnavailableError(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := newMockMetricsProvider("a")
	provider.errs["a"] = domain.ErrMetricUnavailable

	got, err := NewCollector(provider, 1).Collect(context.Background(), []string{"a"})

	require.NoError(t, err)
	assert.Equal(t, domain.ErrMetricUnavailable, got.Errors["a"])
}

func TestCollector_BoundsParallelism(t *testing.T) {
	defer goleak.VerifyNone(t)

	ids := []string{"a", "b", "c", "d", "e", "f"}
	provider := newMockMetricsProvider(ids...)
	for _, id := range ids {
		provider.snapshots[id] = domain.Snapshot{}
	}
	provider.gate = make(chan struct{})

	done := make(chan *Collection, 1)
	go func() {
		got, _ := NewCollector(provider, 2).Collect(context.Background(), ids)
		done <- got
	}()

	require.Eventually(t, func() bool { return provider.inFlight.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), provider.inFlight.Load())

	close(provider.gate)
	got := <-done

	assert.Len(t, got.Snapshots, len(ids))
	assert.Equal(t, int32(2), provider.maxActive.Load())
}

func TestCollector_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := newMockMetricsProvider("a", "b")
	provider.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := NewCollector(provider, 2).Collect(ctx, []string{"a", "b"})
		done <- err
	}()

	require.Eventually(t, func() bool { return provider.inFlight.Load() == 2 }, time.Second, time.Millisecond)
	cancel()

	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewCollector_MinimumParallelism(t *testing.T) {
	c := NewCollector(newMockMetricsProvider(), 0)

	assert.Equal(t, 1, c.parallel)
}
