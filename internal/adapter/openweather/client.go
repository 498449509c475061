// Package openweather implements domain.WeatherProvider against the
// OpenWeatherMap One Call 3.0 and free-tier 2.5 APIs.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redstonelake/lakeside-api/internal/config"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
	"golang.org/x/time/rate"
)

// Upstream labels used in metrics and logs.
const (
	upstreamOneCall  = "openweather_onecall"
	upstreamCurrent  = "openweather_current"
	upstreamForecast = "openweather_forecast"
)

// StatusError is returned for non-200 upstream responses. A 401 on One Call
// usually means the key has no One Call subscription.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openweather %s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Client fetches weather for a fixed coordinate.
type Client struct {
	apiKey     string
	baseURL    string // e.g. https://api.openweathermap.org/data
	lat, lon   float64
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a rate-limited OpenWeatherMap client for the lake.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.OpenWeatherAPIKey,
		baseURL: cfg.OpenWeatherBaseURL,
		lat:     cfg.LakeLat,
		lon:     cfg.LakeLon,
		httpClient: &http.Client{
			Timeout: cfg.OpenWeatherTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.OpenWeatherRPS), cfg.OpenWeatherBurst),
		metrics: metrics,
		logger:  logger,
	}
}

// OneCall fetches current, hourly, daily and alerts in one request.
func (c *Client) OneCall(ctx context.Context) (domain.OneCall, error) {
	var resp oneCallResponse
	if err := c.get(ctx, upstreamOneCall, "/3.0/onecall", &resp); err != nil {
		return domain.OneCall{}, err
	}
	return resp.toDomain(), nil
}

// Current fetches free-tier current conditions.
func (c *Client) Current(ctx context.Context) (domain.Observation, error) {
	var resp currentResponse
	if err := c.get(ctx, upstreamCurrent, "/2.5/weather", &resp); err != nil {
		return domain.Observation{}, err
	}
	return resp.toDomain(), nil
}

// Forecast fetches the free-tier 5 day / 3 hour forecast.
func (c *Client) Forecast(ctx context.Context) (domain.ForecastSeries, error) {
	var resp forecastResponse
	if err := c.get(ctx, upstreamForecast, "/2.5/forecast", &resp); err != nil {
		return domain.ForecastSeries{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) get(ctx context.Context, upstream, path string, out any) (err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}

	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	}()

	params := url.Values{
		"lat":   {strconv.FormatFloat(c.lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(c.lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error embeds the full URL, which carries the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("openweather %s request: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Endpoint: path, Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	c.logger.Debug("openweather response", "endpoint", path, "duration", time.Since(start))
	return nil
}
