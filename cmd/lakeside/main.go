// Command lakeside serves the Redstone Lake website's API routes: weather,
// water levels, the fire-ban banner, the Mapbox token, and the radar link.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/redstonelake/lakeside-api/internal/adapter/anthropic"
	"github.com/redstonelake/lakeside-api/internal/adapter/gemini"
	httpadapter "github.com/redstonelake/lakeside-api/internal/adapter/http"
	kafkaadapter "github.com/redstonelake/lakeside-api/internal/adapter/kafka"
	"github.com/redstonelake/lakeside-api/internal/adapter/mapbox"
	"github.com/redstonelake/lakeside-api/internal/adapter/municipal"
	"github.com/redstonelake/lakeside-api/internal/adapter/openweather"
	"github.com/redstonelake/lakeside-api/internal/adapter/parkscanada"
	"github.com/redstonelake/lakeside-api/internal/cache"
	"github.com/redstonelake/lakeside-api/internal/config"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
	"github.com/redstonelake/lakeside-api/internal/service"
	"github.com/redstonelake/lakeside-api/internal/warmer"
)

// store is a cache backend that can also report readiness.
type store interface {
	cache.Store
	CheckReadiness(ctx context.Context) error
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer

	// Cache backend.
	var st store
	switch cfg.CacheBackend {
	case config.CacheRedis:
		r, err := cache.NewRedisFromURL(cfg.RedisURL, "lakeside:")
		if err != nil {
			logger.Error("failed to connect redis", "error", err)
			os.Exit(1)
		}
		closers = append(closers, r)
		st = r
		logger.Info("redis cache enabled")
	default:
		st = cache.NewMemory(cfg.CacheMaxEntries, clockwork.NewRealClock())
		logger.Info("memory cache enabled", "max_entries", cfg.CacheMaxEntries)
	}

	// Weather (mock payloads when OPENWEATHER_API_KEY is unset).
	var provider domain.WeatherProvider
	if cfg.OpenWeatherAPIKey != "" {
		provider = openweather.NewClient(cfg, metrics, logger)
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set, serving mock weather")
	}

	// Optional reverse geocoding of the weather location label.
	var geocoder domain.Geocoder
	if cfg.MapboxGeocodeEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, st, mapbox.GeocodeCacheTTL, metrics, logger)
		logger.Info("mapbox geocoding enabled", "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	weather := service.NewWeatherService(provider, geocoder, st, service.WeatherOptions{
		Lat:          cfg.LakeLat,
		Lon:          cfg.LakeLon,
		LocationName: cfg.LocationName,
		CacheTTL:     cfg.WeatherCacheTTL,
		Timeout:      cfg.OpenWeatherTimeout,
	}, metrics, logger)

	water := service.NewWaterLevelService(
		parkscanada.NewClient(cfg.WaterLevelURL, cfg.WaterLevelTimeout, metrics, logger),
		st, cfg.WaterLevelCacheTTL, cfg.WaterLevelTimeout, metrics, logger,
	)

	// Fire ban: classifier and status publisher are both optional.
	classifier, err := newClassifier(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to create classifier", "error", err)
		os.Exit(1)
	}

	var publisher service.StatusPublisher
	if len(cfg.KafkaBrokers) > 0 {
		w := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, w)
		publisher = w
		logger.Info("fire-ban status events enabled", "topic", cfg.KafkaFireBanTopic)
	}

	fireBan := service.NewFireBanService(
		municipal.NewClient(cfg.FireBanFeedURL, cfg.FireBanTimeout, metrics, logger),
		classifier, publisher, st,
		service.FireBanOptions{
			SourceName:        municipal.SourceName,
			CacheTTL:          cfg.FireBanCacheTTL,
			FeedTimeout:       cfg.FireBanTimeout,
			ClassifierTimeout: cfg.ClassifierTimeout,
		}, metrics, logger,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Weather:     weather,
		Water:       water,
		FireBan:     fireBan,
		Ready:          st,
		DefaultStation: cfg.WaterLevelStation,
		MapboxToken:    cfg.MapboxToken,
		RadarURL:    cfg.RadarURL,
		Metrics:     metrics,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start cache warmer.
	warm := warmer.New(warmJobs(cfg, weather, fireBan), metrics, logger)
	go func() {
		if err := warm.Start(ctx); err != nil {
			if errors.Is(err, warmer.ErrNoJobs) {
				logger.Info("cache warmer disabled")
				return
			}
			logger.Error("cache warmer error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newClassifier returns the configured fire-ban classifier, or nil when the
// keyword heuristic alone should decide.
func newClassifier(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.Classifier, error) {
	switch cfg.ClassifierProvider {
	case config.ProviderAnthropic:
		logger.Info("fire-ban classifier enabled", "provider", "anthropic", "model", cfg.AnthropicModel)
		return anthropic.NewClassifier(cfg.AnthropicAPIKey, cfg.AnthropicModel, municipal.SourceName, cfg.ClassifierTimeout, metrics, logger), nil
	case config.ProviderGemini:
		c, err := gemini.NewClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, municipal.SourceName, metrics, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("fire-ban classifier enabled", "provider", "gemini", "model", cfg.GeminiModel)
		return c, nil
	}
	logger.Info("fire-ban classifier disabled, using keyword heuristic")
	return nil, nil
}

func warmJobs(cfg *config.Config, weather *service.WeatherService, fireBan *service.FireBanService) []warmer.Job {
	return []warmer.Job{
		{
			Name:     "weather",
			Schedule: cfg.WarmSchedule,
			Run: func(ctx context.Context) error {
				weather.Refresh(ctx)
				return nil
			},
		},
		{
			Name:     "fireban",
			Schedule: cfg.WarmFireBanSchedule,
			Run: func(ctx context.Context) error {
				if r := fireBan.Refresh(ctx); r.Summary.Status == domain.StatusError {
					return errors.New("alert feed unavailable")
				}
				return nil
			},
		},
	}
}
