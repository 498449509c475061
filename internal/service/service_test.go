package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redstonelake/lakeside-api/internal/cache"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

var errUpstream = errors.New("upstream down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// frozenClock pins both the domain clock and a fresh memory cache to the
// same fake time.
func frozenClock(t *testing.T) (*clockwork.FakeClock, *cache.Memory) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 7, 14, 16, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })
	return clock, cache.NewMemory(100, clock)
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// --- weather provider ---

type fakeProvider struct {
	mu           sync.Mutex
	oneCall      domain.OneCall
	oneCallErr   error
	current      domain.Observation
	currentErr   error
	series       domain.ForecastSeries
	seriesErr    error
	oneCallCalls int
	currentCalls int
	seriesCalls  int
}

func (f *fakeProvider) OneCall(ctx context.Context) (domain.OneCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oneCallCalls++
	if err := ctx.Err(); err != nil {
		return domain.OneCall{}, err
	}
	return f.oneCall, f.oneCallErr
}

func (f *fakeProvider) Current(context.Context) (domain.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentCalls++
	return f.current, f.currentErr
}

func (f *fakeProvider) Forecast(context.Context) (domain.ForecastSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesCalls++
	return f.series, f.seriesErr
}

// --- geocoder ---

type fixedGeocoder struct {
	name  string
	calls int
}

func (g *fixedGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	g.calls++
	return domain.GeocodingResult{PlaceName: g.name, FormattedAddress: g.name}, nil
}

// --- water levels ---

type fakeWaterSource struct {
	body  string
	err   error
	calls int
	last  domain.WaterLevelQuery
}

func (f *fakeWaterSource) WaterLevels(ctx context.Context, q domain.WaterLevelQuery) (json.RawMessage, error) {
	f.calls++
	f.last = q
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.body), nil
}

// --- fire ban ---

type fakeFeed struct {
	alerts []domain.Alert
	err    error
	calls  int
}

func (f *fakeFeed) Alerts(ctx context.Context) ([]domain.Alert, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.alerts, f.err
}

func (f *fakeFeed) FeedURL() string { return "https://example.test/feed" }

type fakeClassifier struct {
	analysis domain.AIAnalysis
	err      error
	calls    int
}

func (f *fakeClassifier) Classify(ctx context.Context, _ []domain.Alert, _ string) (domain.AIAnalysis, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return domain.AIAnalysis{}, err
	}
	return f.analysis, f.err
}

func (f *fakeClassifier) Name() string { return "fake:model" }

type recordingPublisher struct {
	err     error
	changes []domain.FireBanStatusChange
}

func (p *recordingPublisher) Publish(_ context.Context, c domain.FireBanStatusChange) error {
	if p.err != nil {
		return p.err
	}
	p.changes = append(p.changes, c)
	return nil
}
