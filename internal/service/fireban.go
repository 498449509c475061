package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redstonelake/lakeside-api/internal/cache"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

const (
	fireBanKey     = "fireban:report"
	publishTimeout = 5 * time.Second
)

// AlertFeed reads the municipal alert banners.
type AlertFeed interface {
	Alerts(ctx context.Context) ([]domain.Alert, error)
	FeedURL() string
}

// StatusPublisher announces fire-ban status changes.
type StatusPublisher interface {
	Publish(ctx context.Context, change domain.FireBanStatusChange) error
}

// FireBanRequest carries the /api/fire-ban query flags.
type FireBanRequest struct {
	Force bool
	Debug bool   // implies Force and adds debug fields
	Test  string // none|restricted|total; other values are ignored
}

// FireBanOptions configures a FireBanService.
type FireBanOptions struct {
	SourceName        string
	CacheTTL          time.Duration
	FeedTimeout       time.Duration
	ClassifierTimeout time.Duration
}

// FireBanService decides whether a fire ban is in effect.
type FireBanService struct {
	feed       AlertFeed
	classifier domain.Classifier // nil: heuristic only
	publisher  StatusPublisher   // nil: status changes are not announced
	store      cache.Store
	opts       FireBanOptions
	metrics    *observability.Metrics
	logger     *slog.Logger

	mu      sync.Mutex
	lastBan domain.BanType
}

// NewFireBanService creates a FireBanService. classifier and publisher may be nil.
func NewFireBanService(feed AlertFeed, classifier domain.Classifier, publisher StatusPublisher, store cache.Store, opts FireBanOptions, metrics *observability.Metrics, logger *slog.Logger) *FireBanService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = domain.FireBanCacheTTL
	}
	if opts.FeedTimeout <= 0 {
		opts.FeedTimeout = defaultUpstreamTimeout
	}
	if opts.ClassifierTimeout <= 0 {
		opts.ClassifierTimeout = 12 * time.Second
	}
	return &FireBanService{
		feed:       feed,
		classifier: classifier,
		publisher:  publisher,
		store:      store,
		opts:       opts,
		metrics:    metrics,
		logger:     logger,
	}
}

// Report returns the current fire-ban report. It never fails: a feed
// outage yields a report with status "error".
func (s *FireBanService) Report(ctx context.Context, req FireBanRequest) domain.FireBanReport {
	now := domain.Now()

	if ban, ok := domain.ParseBanType(req.Test); ok {
		r := domain.TestFireBanReport(ban, s.opts.SourceName, s.feed.FeedURL(), now)
		r.CacheTTLSeconds = int(s.opts.CacheTTL.Seconds())
		if req.Debug {
			r.AIDebug = []string{"Test mode: " + string(ban)}
		}
		s.metrics.FireBanDecisions.WithLabelValues(string(r.DecisionSource)).Inc()
		return r
	}

	if !req.Force && !req.Debug {
		if r, ok := lookup[domain.FireBanReport](ctx, s.store, fireBanKey, "fireban", s.metrics, s.logger); ok {
			return r
		}
	}
	return s.refresh(ctx, req.Debug, now)
}

// Refresh recomputes and caches the report. Used by the warmer.
func (s *FireBanService) Refresh(ctx context.Context) domain.FireBanReport {
	return s.refresh(ctx, false, domain.Now())
}

// refresh detaches from the caller's cancellation: a client that goes away
// must not turn a classifier failure into a cached, published decision.
// Every upstream call below carries its own timeout.
func (s *FireBanService) refresh(ctx context.Context, debug bool, now time.Time) domain.FireBanReport {
	ctx = context.WithoutCancel(ctx)
	r := s.compute(ctx, debug, now)

	s.metrics.FireBanDecisions.WithLabelValues(string(r.DecisionSource)).Inc()
	if r.Summary.Status == domain.StatusError {
		return r
	}

	active := 0.0
	if r.HasActiveBan {
		active = 1
	}
	s.metrics.FireBanActive.Set(active)

	if err := cache.SetJSON(ctx, s.store, fireBanKey, r.WithoutDebug(), s.opts.CacheTTL); err != nil {
		s.logger.Warn("fire-ban cache write failed", "error", err)
	}
	s.announce(ctx, r, now)
	return r
}

func (s *FireBanService) compute(ctx context.Context, debug bool, now time.Time) (r domain.FireBanReport) {
	feedURL := s.feed.FeedURL()
	r = domain.NewFireBanReport(s.opts.SourceName, feedURL, now)
	r.CacheTTLSeconds = int(s.opts.CacheTTL.Seconds())

	var notes []string
	defer func() {
		if debug && len(notes) > 0 {
			r.AIDebug = notes
		}
	}()

	feedCtx, cancel := context.WithTimeout(ctx, s.opts.FeedTimeout)
	alerts, err := s.feed.Alerts(feedCtx)
	cancel()
	if err != nil {
		s.logger.Error("alert feed unavailable", "url", feedURL, "error", err)
		r.MarkFeedError()
		notes = append(notes, fmt.Sprintf("Alert feed error: %v", err))
		return r
	}
	r.Alerts = alerts
	if debug {
		r.DebugInfo = &domain.DebugInfo{RequestURL: feedURL, AlertCount: len(alerts)}
	}

	if s.classifier == nil {
		notes = append(notes, "AI disabled: no classifier configured, using keyword heuristic")
	} else {
		classifyCtx, cancel := context.WithTimeout(ctx, s.opts.ClassifierTimeout)
		analysis, err := s.classifier.Classify(classifyCtx, alerts, feedURL)
		cancel()
		if err == nil {
			r.ApplyAnalysis(analysis)
			if r.DebugInfo != nil {
				r.DebugInfo.Classifier = s.classifier.Name()
			}
			return r
		}
		s.logger.Warn("classifier failed, using keyword heuristic", "classifier", s.classifier.Name(), "error", err)
		notes = append(notes, fmt.Sprintf("%s failed: %v; using keyword heuristic", s.classifier.Name(), err))
	}

	r.ApplyDetection(domain.DetectFireBan(alerts))
	return r
}

// announce publishes a status change when the ban type differs from the last
// one announced. A failed publish is retried on the next refresh.
func (s *FireBanService) announce(ctx context.Context, r domain.FireBanReport, now time.Time) {
	if s.publisher == nil {
		return
	}

	s.mu.Lock()
	previous := s.lastBan
	change, changed := r.StatusChange(previous, now)
	if changed {
		s.lastBan = r.BanType
	}
	s.mu.Unlock()
	if !changed {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, change); err != nil {
		s.metrics.StatusPublished.WithLabelValues("error").Inc()
		s.logger.Warn("fire-ban status publish failed", "current", change.Current, "error", err)

		s.mu.Lock()
		if s.lastBan == r.BanType {
			s.lastBan = previous
		}
		s.mu.Unlock()
		return
	}
	s.metrics.StatusPublished.WithLabelValues("success").Inc()
}
