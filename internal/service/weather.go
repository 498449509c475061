// Package service orchestrates cache lookups, upstream calls and fallbacks
// for each public route.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/redstonelake/lakeside-api/internal/cache"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

// Sources recorded on the weather metrics.
const (
	sourceCache   = "cache"
	sourceOneCall = "onecall"
	sourceFree    = "free"
	sourceMock    = "mock"
)

const defaultUpstreamTimeout = 10 * time.Second

// WeatherOptions configures a WeatherService.
type WeatherOptions struct {
	Lat, Lon     float64
	LocationName string
	CacheTTL     time.Duration
	Timeout      time.Duration
}

// WeatherService serves the three weather views: cache, then One Call 3.0,
// then the free tier, then a static mock.
type WeatherService struct {
	provider domain.WeatherProvider // nil when no API key is configured
	geocoder domain.Geocoder        // nil disables reverse geocoding
	store    cache.Store
	opts     WeatherOptions
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewWeatherService creates a WeatherService. provider and geocoder may be nil.
func NewWeatherService(provider domain.WeatherProvider, geocoder domain.Geocoder, store cache.Store, opts WeatherOptions, metrics *observability.Metrics, logger *slog.Logger) *WeatherService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = domain.WeatherCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultUpstreamTimeout
	}
	return &WeatherService{
		provider: provider,
		geocoder: geocoder,
		store:    store,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
	}
}

func weatherKey(kind domain.WeatherKind) string {
	return "weather:" + string(kind)
}

// Current returns current conditions in Celsius.
func (s *WeatherService) Current(ctx context.Context) domain.CurrentWeather {
	return serveWeather(ctx, s, domain.WeatherCurrent, s.fetchCurrent)
}

// Forecast returns the daily forecast in Celsius.
func (s *WeatherService) Forecast(ctx context.Context) domain.Forecast {
	return serveWeather(ctx, s, domain.WeatherForecast, s.fetchForecast)
}

// Hourly returns the hourly forecast in Celsius.
func (s *WeatherService) Hourly(ctx context.Context) domain.HourlyForecast {
	return serveWeather(ctx, s, domain.WeatherHourly, s.fetchHourly)
}

// Refresh refetches every view and rewrites the cache, skipping the cache
// reads. Used by the warmer. Without an API key there is nothing to warm.
func (s *WeatherService) Refresh(ctx context.Context) {
	if s.provider == nil {
		return
	}
	refreshWeather(ctx, s, domain.WeatherCurrent, s.fetchCurrent)
	refreshWeather(ctx, s, domain.WeatherForecast, s.fetchForecast)
	refreshWeather(ctx, s, domain.WeatherHourly, s.fetchHourly)
}

// serveWeather returns the cached view or fetches a fresh one. Mock
// payloads are never cached.
func serveWeather[T any](ctx context.Context, s *WeatherService, kind domain.WeatherKind, fetch func(context.Context) (T, string)) T {
	if v, ok := lookup[T](ctx, s.store, weatherKey(kind), "weather", s.metrics, s.logger); ok {
		s.record(kind, sourceCache)
		return v
	}
	return refreshWeather(context.WithoutCancel(ctx), s, kind, fetch)
}

func refreshWeather[T any](ctx context.Context, s *WeatherService, kind domain.WeatherKind, fetch func(context.Context) (T, string)) T {
	v, source := fetch(ctx)
	s.record(kind, source)
	if source == sourceMock {
		return v
	}
	if err := cache.SetJSON(ctx, s.store, weatherKey(kind), v, s.opts.CacheTTL); err != nil {
		s.logger.Warn("weather cache write failed", "kind", kind, "error", err)
	}
	return v
}

func (s *WeatherService) fetchCurrent(ctx context.Context) (domain.CurrentWeather, string) {
	if s.provider == nil {
		return domain.MockCurrent(s.opts.LocationName), sourceMock
	}

	if oc, err := s.oneCall(ctx); err == nil {
		label := domain.LocationLabel(ctx, s.geocoder, s.opts.Lat, s.opts.Lon, s.opts.LocationName, s.logger)
		v := domain.BuildCurrent(oc.Current, label, oc.Alerts)
		v.CachedAt = domain.Timestamp(domain.Now())
		return v, sourceOneCall
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	obs, err := s.provider.Current(callCtx)
	cancel()
	if err != nil {
		s.logger.Warn("free tier current weather failed, serving mock", "error", err)
		return domain.MockCurrent(s.opts.LocationName), sourceMock
	}
	location := obs.StationName
	if location == "" {
		location = s.opts.LocationName
	}
	v := domain.BuildCurrent(obs, location, nil)
	v.CachedAt = domain.Timestamp(domain.Now())
	return v, sourceFree
}

func (s *WeatherService) fetchForecast(ctx context.Context) (domain.Forecast, string) {
	if s.provider == nil {
		return domain.MockForecast(), sourceMock
	}
	now := domain.Now()

	if oc, err := s.oneCall(ctx); err == nil {
		return domain.Forecast{Days: domain.DailyFromOneCall(oc, now), CachedAt: domain.Timestamp(now)}, sourceOneCall
	}
	if fs, err := s.series(ctx); err == nil {
		return domain.Forecast{Days: domain.DailyFromSeries(fs, now), CachedAt: domain.Timestamp(now)}, sourceFree
	}
	return domain.MockForecast(), sourceMock
}

func (s *WeatherService) fetchHourly(ctx context.Context) (domain.HourlyForecast, string) {
	if s.provider == nil {
		return domain.MockHourly(), sourceMock
	}
	now := domain.Now()

	if oc, err := s.oneCall(ctx); err == nil {
		return domain.HourlyForecast{Slots: domain.HourlyFromOneCall(oc), CachedAt: domain.Timestamp(now)}, sourceOneCall
	}
	if fs, err := s.series(ctx); err == nil {
		return domain.HourlyForecast{Slots: domain.HourlyFromSeries(fs), CachedAt: domain.Timestamp(now)}, sourceFree
	}
	return domain.MockHourly(), sourceMock
}

func (s *WeatherService) oneCall(ctx context.Context) (domain.OneCall, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	oc, err := s.provider.OneCall(callCtx)
	if err != nil {
		s.logger.Info("one call unavailable, trying free tier", "error", err)
	}
	return oc, err
}

func (s *WeatherService) series(ctx context.Context) (domain.ForecastSeries, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	fs, err := s.provider.Forecast(callCtx)
	if err != nil {
		s.logger.Warn("free tier forecast failed, serving mock", "error", err)
	}
	return fs, err
}

func (s *WeatherService) record(kind domain.WeatherKind, source string) {
	s.metrics.WeatherSource.WithLabelValues(string(kind), source).Inc()
}

// lookup reads a JSON value from store and records the outcome on the cache
// metrics. Read errors are logged and treated as misses.
func lookup[T any](ctx context.Context, store cache.Store, key, name string, metrics *observability.Metrics, logger *slog.Logger) (T, bool) {
	v, ok, err := cache.GetJSON[T](ctx, store, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(name, "error").Inc()
		logger.Warn("cache read failed", "key", key, "error", err)
	case ok:
		metrics.CacheLookups.WithLabelValues(name, "hit").Inc()
	default:
		metrics.CacheLookups.WithLabelValues(name, "miss").Inc()
	}
	return v, ok
}
