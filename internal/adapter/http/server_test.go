package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/redstonelake/lakeside-api/internal/adapter/http"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
	"github.com/redstonelake/lakeside-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type fakeWeather struct {
	current domain.CurrentWeather
	panics  bool
}

func (f *fakeWeather) Current(context.Context) domain.CurrentWeather {
	if f.panics {
		panic("boom")
	}
	return f.current
}

func (f *fakeWeather) Forecast(context.Context) domain.Forecast {
	return domain.Forecast{Days: []domain.ForecastDay{{Date: "Rest of Today", TempMax: 20, TempMin: 10}}}
}

func (f *fakeWeather) Hourly(context.Context) domain.HourlyForecast {
	return domain.HourlyForecast{Slots: []domain.HourlySlot{{Time: "Now", Temp: 0}}}
}

type fakeWater struct {
	body    string
	err     error
	last    domain.WaterLevelQuery
	noCache bool
}

func (f *fakeWater) Series(_ context.Context, q domain.WaterLevelQuery, noCache bool) (json.RawMessage, error) {
	f.last, f.noCache = q, noCache
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.body), nil
}

type fakeFireBan struct {
	last service.FireBanRequest
}

func (f *fakeFireBan) Report(_ context.Context, req service.FireBanRequest) domain.FireBanReport {
	f.last = req
	r := domain.NewFireBanReport("Dysart et al", "https://example.test/feed", domain.Now())
	r.HasActiveBan = req.Test == "total"
	return r
}

type fixture struct {
	srv     *httpadapter.Server
	weather *fakeWeather
	water   *fakeWater
	fireBan *fakeFireBan
}

func newFixture(readyErr error, token string) *fixture {
	return newFixtureWith(readyErr, token, nil)
}

// newFixtureWith lets a test adjust Deps before the server is built.
func newFixtureWith(readyErr error, token string, adjust func(*httpadapter.Deps)) *fixture {
	f := &fixture{
		weather: &fakeWeather{current: domain.CurrentWeather{Temp: 20, FeelsLike: 22, Location: "Redstone Lake, ON"}},
		water:   &fakeWater{body: `{"current":[{"t":"2025-07-14","y":290.41}]}`},
		fireBan: &fakeFireBan{},
	}
	deps := httpadapter.Deps{
		Weather:     f.weather,
		Water:       f.water,
		FireBan:     f.fireBan,
		Ready:       &mockReadiness{err: readyErr},
		MapboxToken: token,
		RadarURL:    "https://radar.example.test/map",
		Metrics:     observability.NewMetricsForTesting(),
	}
	if adjust != nil {
		adjust(&deps)
	}
	f.srv = httpadapter.NewServer(":0", deps, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func newTestServer(readyErr error) *httpadapter.Server {
	return newFixture(readyErr, "pk.test").srv
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("redis unreachable"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "redis unreachable", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestIDIsAssignedOrPropagated(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(httpadapter.RequestIDHeader), 36, "uuid assigned")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpadapter.RequestIDHeader, "edge-1234")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "edge-1234", rec.Header().Get(httpadapter.RequestIDHeader))
}

func TestPanicBecomes500JSON(t *testing.T) {
	f := newFixture(nil, "pk.test")
	f.weather.panics = true
	rec := httptest.NewRecorder()

	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/weather", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(nil)

	for _, path := range []string{"/api/weather", "/api/water-levels", "/api/fire-ban"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"), path)
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"), path)
		assert.Empty(t, rec.Body.String(), path)
	}
}
