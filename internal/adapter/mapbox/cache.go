package mapbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redstonelake/lakeside-api/internal/cache"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

// GeocodeCacheTTL is how long a place label is reused. Place names around the
// lake do not change, so this mostly bounds the cost of a wrong answer.
const GeocodeCacheTTL = 24 * time.Hour

const cacheName = "geocode"

// CachedGeocoder wraps a Geocoder with a shared cache.Store.
type CachedGeocoder struct {
	inner   domain.Geocoder
	store   cache.Store
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, store cache.Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode serves a cached label or asks the inner geocoder.
func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("geocode:rev:%.6f,%.6f", lat, lon)

	result, ok, err := cache.GetJSON[domain.GeocodingResult](ctx, c.store, key)
	switch {
	case err != nil:
		c.metrics.CacheLookups.WithLabelValues(cacheName, "error").Inc()
		c.logger.Warn("geocode cache read failed", "error", err)
	case ok:
		c.metrics.CacheLookups.WithLabelValues(cacheName, "hit").Inc()
		return result, nil
	default:
		c.metrics.CacheLookups.WithLabelValues(cacheName, "miss").Inc()
	}

	result, err = c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if result.FormattedAddress != "" {
		if err := cache.SetJSON(ctx, c.store, key, result, c.ttl); err != nil {
			c.logger.Warn("geocode cache write failed", "error", err)
		}
	}
	return result, nil
}
