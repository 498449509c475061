// Command probe performs one live request against every upstream the API
// depends on (OpenWeatherMap, Parks Canada, the municipal alert feed, the
// configured classifier, Mapbox, and Redis) and reports PASS/FAIL per phase.
//
// Usage:
//
//	go run ./cmd/probe -timeout 20s
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/redstonelake/lakeside-api/internal/adapter/anthropic"
	"github.com/redstonelake/lakeside-api/internal/adapter/gemini"
	"github.com/redstonelake/lakeside-api/internal/adapter/mapbox"
	"github.com/redstonelake/lakeside-api/internal/adapter/municipal"
	"github.com/redstonelake/lakeside-api/internal/adapter/openweather"
	"github.com/redstonelake/lakeside-api/internal/adapter/parkscanada"
	"github.com/redstonelake/lakeside-api/internal/cache"
	"github.com/redstonelake/lakeside-api/internal/config"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

// phase tracks pass/fail for a probe phase.
type phase struct {
	name    string
	skipped string
	notes   []string
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for all probes")
	verbose := flag.Bool("v", false, "log client activity to stderr")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if code := run(ctx, cfg, logger); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) int {
	metrics := observability.NewMetricsForTesting()

	fmt.Println("=== Lakeside Upstream Probe ===")
	fmt.Println()

	feedPhase, alerts := probeFeed(ctx, cfg, metrics, logger)
	phases := []*phase{
		probeWeather(ctx, cfg, metrics, logger),
		probeWater(ctx, cfg, metrics, logger),
		feedPhase,
		probeClassifier(ctx, cfg, alerts, feedPhase.passed(), metrics, logger),
		probeMapbox(ctx, cfg, metrics, logger),
		probeRedis(ctx, cfg),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped != "":
			status = "\033[33mSKIP\033[0m (" + p.skipped + ")"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-28s %s\n", p.name, status)
		for _, n := range p.notes {
			fmt.Printf("      %s\n", n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll probes passed.")
		return 0
	}
	fmt.Println("\nProbe FAILED.")
	return 1
}

func probeWeather(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *phase {
	p := &phase{name: "OpenWeatherMap"}
	if cfg.OpenWeatherAPIKey == "" {
		p.skipped = "OPENWEATHER_API_KEY not set"
		return p
	}
	client := openweather.NewClient(cfg, metrics, logger)

	if oc, err := client.OneCall(ctx); err != nil {
		p.notef("one call 3.0 unavailable: %v", err)
	} else {
		p.notef("one call 3.0: %.1f°C, %d hourly, %d daily, %d alerts", oc.Current.Temp, len(oc.Hourly), len(oc.Daily), len(oc.Alerts))
	}

	obs, err := client.Current(ctx)
	if err != nil {
		p.errorf("free tier current: %v", err)
	} else {
		p.notef("free tier current: %.1f°C at %q", obs.Temp, obs.StationName)
	}

	series, err := client.Forecast(ctx)
	switch {
	case err != nil:
		p.errorf("free tier forecast: %v", err)
	case len(series.Samples) == 0:
		p.errorf("free tier forecast: no samples")
	default:
		days := domain.DailyFromSeries(series, domain.Now())
		p.notef("free tier forecast: %d samples, %d days", len(series.Samples), len(days))
	}
	return p
}

func probeWater(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *phase {
	p := &phase{name: "Parks Canada water levels"}
	q, err := domain.NewWaterLevelQuery(cfg.WaterLevelStation, domain.DefaultLang)
	if err != nil {
		p.errorf("WATER_LEVEL_STATION: %v", err)
		return p
	}

	body, err := parkscanada.NewClient(cfg.WaterLevelURL, cfg.WaterLevelTimeout, metrics, logger).WaterLevels(ctx, q)
	if err != nil {
		p.errorf("station %s: %v", q.StationID, err)
		return p
	}

	var series map[string]json.RawMessage
	if err := json.Unmarshal(body, &series); err != nil {
		p.errorf("station %s: body is not a JSON object: %v", q.StationID, err)
		return p
	}
	if _, ok := series["current"]; !ok {
		p.errorf("station %s: no \"current\" series in response", q.StationID)
	}
	p.notef("station %s: %d bytes", q.StationID, len(body))
	return p
}

func probeFeed(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*phase, []domain.Alert) {
	p := &phase{name: "Municipal alert feed"}
	alerts, err := municipal.NewClient(cfg.FireBanFeedURL, cfg.FireBanTimeout, metrics, logger).Alerts(ctx)
	if err != nil {
		p.errorf("%v", err)
		return p, nil
	}

	d := domain.DetectFireBan(alerts)
	p.notef("%d banners; heuristic: ban=%s confidence=%.2f", len(alerts), d.BanType, d.Confidence)
	return p, alerts
}

func probeClassifier(ctx context.Context, cfg *config.Config, alerts []domain.Alert, feedOK bool, metrics *observability.Metrics, logger *slog.Logger) *phase {
	p := &phase{name: "Fire-ban classifier"}
	if !feedOK {
		p.skipped = "alert feed unavailable"
		return p
	}

	var classifier domain.Classifier
	switch cfg.ClassifierProvider {
	case config.ProviderAnthropic:
		classifier = anthropic.NewClassifier(cfg.AnthropicAPIKey, cfg.AnthropicModel, municipal.SourceName, cfg.ClassifierTimeout, metrics, logger)
	case config.ProviderGemini:
		c, err := gemini.NewClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, municipal.SourceName, metrics, logger)
		if err != nil {
			p.errorf("create gemini client: %v", err)
			return p
		}
		classifier = c
	default:
		p.skipped = "no classifier configured"
		return p
	}

	a, err := classifier.Classify(ctx, alerts, cfg.FireBanFeedURL)
	if err != nil {
		p.errorf("%s: %v", classifier.Name(), err)
		return p
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		p.errorf("%s: confidence %.2f out of range", classifier.Name(), a.Confidence)
	}
	p.notef("%s: hasFireBan=%t ban=%s confidence=%.2f", classifier.Name(), a.HasFireBan, a.BanType, a.Confidence)
	return p
}

func probeMapbox(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *phase {
	p := &phase{name: "Mapbox reverse geocoding"}
	if cfg.MapboxToken == "" {
		p.skipped = "MAPBOX_TOKEN not set"
		return p
	}

	res, err := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger).ReverseGeocode(ctx, cfg.LakeLat, cfg.LakeLon)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if res.FormattedAddress == "" {
		p.errorf("no place found at %.4f,%.4f", cfg.LakeLat, cfg.LakeLon)
		return p
	}
	p.notef("%.4f,%.4f → %q", cfg.LakeLat, cfg.LakeLon, res.FormattedAddress)
	return p
}

func probeRedis(ctx context.Context, cfg *config.Config) *phase {
	p := &phase{name: "Redis cache"}
	if cfg.CacheBackend != config.CacheRedis {
		p.skipped = "CACHE_BACKEND is " + cfg.CacheBackend
		return p
	}

	r, err := cache.NewRedisFromURL(cfg.RedisURL, "lakeside:probe:")
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	defer r.Close() //nolint:errcheck // probe exits right after

	if err := r.CheckReadiness(ctx); err != nil {
		p.errorf("ping: %v", err)
		return p
	}
	if err := r.Set(ctx, "roundtrip", []byte("ok"), time.Minute); err != nil {
		p.errorf("set: %v", err)
		return p
	}
	v, ok, err := r.Get(ctx, "roundtrip")
	if err != nil || !ok || string(v) != "ok" {
		p.errorf("get: ok=%t value=%q err=%v", ok, v, err)
	}
	return p
}
