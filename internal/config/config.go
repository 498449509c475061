package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Classifier providers accepted by CLASSIFIER_PROVIDER.
const (
	ProviderAuto      = "auto"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

const (
	defaultWaterLevelURL = "https://www.pc.gc.ca/apps/waterlevels/api/Charts/GetWaterLevelData"
	defaultFireBanURL    = "https://www.dysartetal.ca//modules/NewsModule/services/getalertbannerfeeds.ashx"
	defaultRadarURL      = "https://www.rainviewer.com/map.html?loc=45.0576,-78.4186,10&oFa=0&oC=0&oU=0&oCS=1&oF=0&oAP=0&rmt=4&c=1&o=83&lm=0&layer=radar&sm=1&sn=1&oP=0"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Lake location.
	LakeLat      float64
	LakeLon      float64
	LocationName string

	// OpenWeatherMap.
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherTimeout time.Duration
	OpenWeatherRPS     float64
	OpenWeatherBurst   int
	WeatherCacheTTL    time.Duration

	// Parks Canada water levels.
	WaterLevelURL      string
	WaterLevelTimeout  time.Duration
	WaterLevelCacheTTL time.Duration
	WaterLevelStation  string

	// Municipal fire-ban feed and classifier.
	FireBanFeedURL     string
	FireBanTimeout     time.Duration
	FireBanCacheTTL    time.Duration
	ClassifierProvider string
	ClassifierTimeout  time.Duration
	AnthropicAPIKey    string
	AnthropicModel     string
	GeminiAPIKey       string
	GeminiModel        string

	// Mapbox token relay and optional reverse geocoding of the lake label.
	MapboxToken          string
	MapboxGeocodeEnabled bool
	MapboxTimeout        time.Duration

	RadarURL string

	// Cache backend.
	CacheBackend    string
	CacheMaxEntries int
	RedisURL        string

	// Fire-ban status change events. Disabled when no brokers are set.
	KafkaBrokers      []string
	KafkaFireBanTopic string

	// Cron schedules (with seconds) for the cache warmer. Empty disables a job.
	WarmSchedule        string
	WarmFireBanSchedule string
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		LocationName: sharedcfg.EnvOrDefault("LOCATION_NAME", "Redstone Lake, ON"),

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data"), "/"),

		WaterLevelURL:     strings.TrimRight(sharedcfg.EnvOrDefault("WATER_LEVEL_URL", defaultWaterLevelURL), "/"),
		WaterLevelStation: sharedcfg.EnvOrDefault("WATER_LEVEL_STATION", "17"),

		FireBanFeedURL:  sharedcfg.EnvOrDefault("FIRE_BAN_FEED_URL", defaultFireBanURL),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  sharedcfg.EnvOrDefault("ANTHROPIC_MODEL", "claude-3-7-sonnet-20250219"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     sharedcfg.EnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		MapboxToken: sharedcfg.EnvOrDefault("MAPBOX_TOKEN", os.Getenv("NEXT_PUBLIC_MAPBOX_ACCESS_TOKEN")),
		RadarURL:    sharedcfg.EnvOrDefault("RADAR_URL", defaultRadarURL),

		CacheBackend: strings.ToLower(sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheMemory)),
		RedisURL:     os.Getenv("REDIS_URL"),

		KafkaFireBanTopic: sharedcfg.EnvOrDefault("KAFKA_FIRE_BAN_TOPIC", "fire-ban-status"),

		WarmSchedule:        os.Getenv("WARM_SCHEDULE"),
		WarmFireBanSchedule: os.Getenv("WARM_FIRE_BAN_SCHEDULE"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	p := parser{}
	cfg.LakeLat = p.number("LAKE_LAT", 45.0)
	cfg.LakeLon = p.number("LAKE_LON", -78.5)
	cfg.OpenWeatherTimeout = p.duration("OPENWEATHER_TIMEOUT", 10*time.Second)
	cfg.OpenWeatherRPS = p.number("OPENWEATHER_RPS", 1)
	cfg.OpenWeatherBurst = p.positiveInt("OPENWEATHER_BURST", 5)
	cfg.WeatherCacheTTL = p.duration("WEATHER_CACHE_TTL", 15*time.Minute)
	cfg.WaterLevelTimeout = p.duration("WATER_LEVEL_TIMEOUT", 10*time.Second)
	cfg.WaterLevelCacheTTL = p.duration("WATER_LEVEL_CACHE_TTL", 15*time.Minute)
	cfg.FireBanTimeout = p.duration("FIRE_BAN_TIMEOUT", 10*time.Second)
	cfg.FireBanCacheTTL = p.duration("FIRE_BAN_CACHE_TTL", 6*time.Hour)
	cfg.ClassifierTimeout = p.duration("CLASSIFIER_TIMEOUT", 12*time.Second)
	cfg.MapboxTimeout = p.duration("MAPBOX_TIMEOUT", 5*time.Second)
	cfg.MapboxGeocodeEnabled = p.flag("MAPBOX_GEOCODE_ENABLED", false)
	cfg.CacheMaxEntries = p.positiveInt("CACHE_MAX_ENTRIES", 1000)
	if p.err != nil {
		return nil, p.err
	}

	if !isDigits(cfg.WaterLevelStation) {
		return nil, fmt.Errorf("invalid WATER_LEVEL_STATION %q: must be numeric", cfg.WaterLevelStation)
	}
	if cfg.OpenWeatherRPS <= 0 {
		return nil, errors.New("invalid OPENWEATHER_RPS: must be positive")
	}

	provider, err := resolveProvider(cfg)
	if err != nil {
		return nil, err
	}
	cfg.ClassifierProvider = provider

	switch cfg.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("CACHE_BACKEND is redis but REDIS_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want memory or redis", cfg.CacheBackend)
	}

	if cfg.MapboxGeocodeEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_GEOCODE_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaFireBanTopic == "" {
		return nil, errors.New("KAFKA_FIRE_BAN_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// resolveProvider picks the classifier: an explicit CLASSIFIER_PROVIDER wins,
// otherwise the first provider with an API key.
func resolveProvider(cfg *Config) (string, error) {
	provider := strings.ToLower(sharedcfg.EnvOrDefault("CLASSIFIER_PROVIDER", ProviderAuto))
	switch provider {
	case ProviderAuto:
		switch {
		case cfg.AnthropicAPIKey != "":
			return ProviderAnthropic, nil
		case cfg.GeminiAPIKey != "":
			return ProviderGemini, nil
		}
		return ProviderNone, nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return "", errors.New("CLASSIFIER_PROVIDER is anthropic but ANTHROPIC_API_KEY is not set")
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return "", errors.New("CLASSIFIER_PROVIDER is gemini but GEMINI_API_KEY is not set")
		}
	case ProviderNone:
	default:
		return "", fmt.Errorf("invalid CLASSIFIER_PROVIDER %q", provider)
	}
	return provider, nil
}

// parser records the first parse failure so Load can report it once.
type parser struct {
	err error
}

func (p *parser) fail(key string, reason string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %s", key, reason)
	}
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		p.fail(key, "must be a positive duration")
		return def
	}
	return d
}

func (p *parser) number(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(key, "must be a number")
		return def
	}
	return v
}

func (p *parser) positiveInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		p.fail(key, "must be a positive integer")
		return def
	}
	return n
}

func (p *parser) flag(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.fail(key, "must be true or false")
		return def
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
