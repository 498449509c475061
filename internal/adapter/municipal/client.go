// Package municipal reads the township alert banner feed.
package municipal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

const (
	upstream  = "municipal_feed"
	userAgent = "Redstone Lake Website"

	// SourceName is the publisher shown on fire-ban reports.
	SourceName = "Dysart et al"
)

// Client fetches the alert banner list.
type Client struct {
	feedURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for feedURL.
func NewClient(feedURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FeedURL is the URL reported as the source of fire-ban reports.
func (c *Client) FeedURL() string {
	return c.feedURL
}

// Alerts returns the current banners. A JSON body that is not an array
// yields an empty list.
func (c *Client) Alerts(ctx context.Context) (_ []domain.Alert, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alert feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alert feed: status %d", resp.StatusCode)
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode alert feed: %w", err)
	}

	var alerts []domain.Alert
	if err := json.Unmarshal(body, &alerts); err != nil {
		c.logger.Warn("alert feed is not a banner list", "error", err)
		return []domain.Alert{}, nil
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	c.logger.Debug("alert feed fetched", "count", len(alerts))
	return alerts, nil
}
