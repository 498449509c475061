// Package parkscanada fetches hydrometric water-level series from the Parks
// Canada water levels API.
package parkscanada

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

const (
	upstream  = "parkscanada"
	userAgent = "Redstone Lake Website"

	// maxBody bounds a station series; real responses are well under 1 MiB.
	maxBody = 8 << 20
)

// ErrInvalidPayload is returned when the upstream body is not JSON.
var ErrInvalidPayload = errors.New("parks canada returned invalid JSON")

// Client relays station series verbatim.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Parks Canada client rooted at baseURL
// (".../api/Charts/GetWaterLevelData").
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// WaterLevels returns the raw series JSON for the query's station and language.
func (c *Client) WaterLevels(ctx context.Context, q domain.WaterLevelQuery) (_ json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	}()

	u := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(q.StationID), url.Values{"lang": {q.Lang}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("water level request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parks canada API responded with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read water level response: %w", err)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidPayload
	}

	c.logger.Debug("water levels fetched", "station", q.StationID, "lang", q.Lang, "bytes", len(body))
	return json.RawMessage(body), nil
}
