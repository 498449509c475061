package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redstonelake/lakeside-api/internal/cache"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

// WaterLevelSource fetches a raw station series.
type WaterLevelSource interface {
	WaterLevels(ctx context.Context, q domain.WaterLevelQuery) (json.RawMessage, error)
}

// WaterLevelService relays Parks Canada series through the cache.
type WaterLevelService struct {
	source  WaterLevelSource
	store   cache.Store
	ttl     time.Duration
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWaterLevelService creates a WaterLevelService.
func NewWaterLevelService(source WaterLevelSource, store cache.Store, ttl, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *WaterLevelService {
	if ttl <= 0 {
		ttl = domain.WaterLevelCacheTTL
	}
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}
	return &WaterLevelService{
		source:  source,
		store:   store,
		ttl:     ttl,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

func waterKey(q domain.WaterLevelQuery) string {
	return "water:" + q.CacheKey()
}

// Series returns the station series. noCache skips the cache read but the
// fresh series is still written back.
func (s *WaterLevelService) Series(ctx context.Context, q domain.WaterLevelQuery, noCache bool) (json.RawMessage, error) {
	key := waterKey(q)
	if !noCache {
		data, ok, err := s.store.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.CacheLookups.WithLabelValues("water", "error").Inc()
			s.logger.Warn("cache read failed", "key", key, "error", err)
		case ok:
			s.metrics.CacheLookups.WithLabelValues("water", "hit").Inc()
			return json.RawMessage(data), nil
		default:
			s.metrics.CacheLookups.WithLabelValues("water", "miss").Inc()
		}
	}

	ctx = context.WithoutCancel(ctx)
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.source.WaterLevels(callCtx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch station %s: %w", q.StationID, err)
	}

	if err := s.store.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("water level cache write failed", "key", key, "error", err)
	}
	return data, nil
}
