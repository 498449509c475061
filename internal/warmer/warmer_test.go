package warmer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redstonelake/lakeside-api/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_DropsUnscheduledJobs(t *testing.T) {
	noop := func(context.Context) error { return nil }
	w := New([]Job{
		{Name: "weather", Schedule: "0 */10 * * * *", Run: noop},
		{Name: "fireban", Schedule: "", Run: noop},
		{Name: "broken", Schedule: "@every 1m"},
	}, observability.NewMetricsForTesting(), discardLogger())

	require.Len(t, w.Jobs(), 1)
	assert.Equal(t, "weather", w.Jobs()[0].Name)
}

func TestStart_NoJobs(t *testing.T) {
	w := New(nil, observability.NewMetricsForTesting(), discardLogger())
	assert.ErrorIs(t, w.Start(context.Background()), ErrNoJobs)
}

func TestStart_InvalidSchedule(t *testing.T) {
	w := New([]Job{{Name: "weather", Schedule: "every tuesday", Run: func(context.Context) error { return nil }}},
		observability.NewMetricsForTesting(), discardLogger())

	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather")
}

func TestRunOnce_RecordsOutcome(t *testing.T) {
	m := observability.NewMetricsForTesting()
	w := New(nil, m, discardLogger())

	w.RunOnce(context.Background(), Job{Name: "weather", Run: func(context.Context) error { return nil }})
	w.RunOnce(context.Background(), Job{Name: "fireban", Run: func(context.Context) error { return errors.New("feed down") }})

	assert.InDelta(t, 1, testutil.ToFloat64(m.WarmRuns.WithLabelValues("weather", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.WarmRuns.WithLabelValues("fireban", "error")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.WarmRuns.WithLabelValues("weather", "error")), 0)
}

func TestStart_RunsScheduledJobUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	m := observability.NewMetricsForTesting()
	w := New([]Job{{
		Name:     "weather",
		Schedule: "@every 1s",
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}}, m, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("warmer did not stop after cancel")
	}
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.WarmRuns.WithLabelValues("weather", "success")), 1.0)
}
