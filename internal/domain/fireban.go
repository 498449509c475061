package domain

import (
	"strings"
	"time"
)

// FireBanCacheTTL is how long a computed fire-ban report is served from cache.
const FireBanCacheTTL = 6 * time.Hour

// BanType is the normalised fire-ban classification.
type BanType string

const (
	BanNone       BanType = "none"
	BanRestricted BanType = "restricted"
	BanTotal      BanType = "total"
)

// ParseBanType accepts the three ban types case-insensitively.
func ParseBanType(s string) (BanType, bool) {
	switch b := BanType(strings.ToLower(strings.TrimSpace(s))); b {
	case BanNone, BanRestricted, BanTotal:
		return b, true
	}
	return "", false
}

// Status is the summary state shown on the site's banner.
type Status string

const (
	StatusActive Status = "active"
	StatusNone   Status = "none"
	// StatusError means the municipal feed could not be read.
	StatusError Status = "error"
)

// DecisionSource records which path produced the ban decision.
type DecisionSource string

const (
	DecidedByAI         DecisionSource = "ai"
	DecidedByHeuristic  DecisionSource = "heuristic"
	DecidedByTest       DecisionSource = "test"
	DecisionUnavailable DecisionSource = "unavailable"
)

// Alert is one banner from the municipal alert feed.
type Alert struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// AIAnalysis is the structured result of classifying the banners with a model.
type AIAnalysis struct {
	HasFireBan    bool    `json:"hasFireBan"`
	BanType       BanType `json:"banType,omitempty"`
	EffectiveFrom string  `json:"effectiveFrom,omitempty"`
	EffectiveTo   string  `json:"effectiveTo,omitempty"`
	Summary       string  `json:"summary,omitempty"`
	Confidence    float64 `json:"confidence"`
}

// Detection is the result of the keyword and colour heuristic.
type Detection struct {
	MatchedKeywords []string `json:"matchedKeywords"`
	MatchedColor    string   `json:"matchedColor,omitempty"`
	Confidence      float64  `json:"confidence"`
	BanType         BanType  `json:"banType"`

	// Alert is the first banner that matched, if any.
	Alert *Alert `json:"-"`
}

// Active reports whether the heuristic found any evidence of a ban.
func (d Detection) Active() bool {
	return d.Alert != nil
}

// FireBanSummary is the short status block read by the site's banner.
type FireBanSummary struct {
	Status       Status `json:"status"`
	PrimaryAlert *Alert `json:"primaryAlert,omitempty"`
	LastUpdated  string `json:"lastUpdated"`
}

// DebugInfo is attached to reports requested with debug=1.
type DebugInfo struct {
	RequestURL string `json:"requestUrl,omitempty"`
	Classifier string `json:"classifier,omitempty"`
	AlertCount int    `json:"alertCount"`
}

// FireBanReport is the /api/fire-ban response body.
type FireBanReport struct {
	Source          string         `json:"source"`
	SourceURL       string         `json:"sourceUrl"`
	Alerts          []Alert        `json:"alerts"`
	HasActiveBan    bool           `json:"hasActiveBan"`
	BanType         BanType        `json:"banType"`
	DecisionSource  DecisionSource `json:"decisionSource"`
	AIAnalysis      *AIAnalysis    `json:"aiAnalysis,omitempty"`
	Detection       *Detection     `json:"detection,omitempty"`
	Summary         FireBanSummary `json:"summary"`
	CachedAt        string         `json:"cachedAt"`
	CacheTTLSeconds int            `json:"cacheTtlSeconds"`
	DebugInfo       *DebugInfo     `json:"debugInfo,omitempty"`
	AIDebug         []string       `json:"aiDebug,omitempty"`
}

// NewFireBanReport returns an empty "no ban" report stamped at now.
func NewFireBanReport(source, sourceURL string, now time.Time) FireBanReport {
	stamp := Timestamp(now)
	return FireBanReport{
		Source:          source,
		SourceURL:       sourceURL,
		Alerts:          []Alert{},
		BanType:         BanNone,
		DecisionSource:  DecisionUnavailable,
		Summary:         FireBanSummary{Status: StatusNone, LastUpdated: stamp},
		CachedAt:        stamp,
		CacheTTLSeconds: int(FireBanCacheTTL.Seconds()),
	}
}

// ApplyAnalysis records a model classification as the decision.
func (r *FireBanReport) ApplyAnalysis(a AIAnalysis) {
	r.AIAnalysis = &a
	r.Detection = nil
	r.DecisionSource = DecidedByAI
	r.HasActiveBan = a.HasFireBan
	r.BanType = a.BanType
	if r.BanType == "" {
		r.BanType = BanNone
		if a.HasFireBan {
			r.BanType = BanTotal
		}
	}
	r.Summary.Status = StatusNone
	if a.HasFireBan {
		r.Summary.Status = StatusActive
	}
	if r.Summary.PrimaryAlert == nil && len(r.Alerts) > 0 {
		first := r.Alerts[0]
		r.Summary.PrimaryAlert = &first
	}
}

// ApplyDetection records the heuristic result as the decision.
func (r *FireBanReport) ApplyDetection(d Detection) {
	r.Detection = &d
	r.AIAnalysis = nil
	r.DecisionSource = DecidedByHeuristic
	r.HasActiveBan = d.Active()
	r.BanType = d.BanType
	r.Summary.Status = StatusNone
	r.Summary.PrimaryAlert = nil
	if d.Active() {
		r.Summary.Status = StatusActive
		primary := *d.Alert
		r.Summary.PrimaryAlert = &primary
	}
}

// MarkFeedError records that the municipal feed could not be read.
func (r *FireBanReport) MarkFeedError() {
	r.Alerts = []Alert{}
	r.HasActiveBan = false
	r.BanType = BanNone
	r.DecisionSource = DecisionUnavailable
	r.AIAnalysis = nil
	r.Detection = nil
	r.Summary.Status = StatusError
	r.Summary.PrimaryAlert = nil
}

// WithoutDebug strips the per-request debug fields so the report can be cached.
func (r FireBanReport) WithoutDebug() FireBanReport {
	r.DebugInfo = nil
	r.AIDebug = nil
	return r
}

// TestFireBanReport returns the canned report for ?test=<banType>, used to
// exercise the site's banner states without touching any upstream.
func TestFireBanReport(ban BanType, source, sourceURL string, now time.Time) FireBanReport {
	r := NewFireBanReport(source, sourceURL, now)
	r.DecisionSource = DecidedByTest

	switch ban {
	case BanRestricted:
		r.Alerts = []Alert{{
			Title:       "Restricted Fire Zone in Effect",
			Description: "A restricted fire zone is in effect. Open air burning is prohibited between 8:00 AM and 8:00 PM. Small cooking fires and properly contained campfires are permitted during evening hours with proper safety precautions.",
			Color:       "Orange",
		}}
		r.AIAnalysis = &AIAnalysis{
			HasFireBan:    true,
			BanType:       BanRestricted,
			EffectiveFrom: Timestamp(now),
			Summary:       "Restricted fire zone with time-based burning restrictions from 8 AM to 8 PM.",
			Confidence:    0.92,
		}
	case BanTotal:
		r.Alerts = []Alert{{
			Title:       "Total Fire Ban in Haliburton County: Effective Immediately",
			Description: "A total fire ban is in effect throughout Haliburton County. This means no outdoor burning any time of day or night. Bonfires, fireworks, torches and the lighting of charcoal barbecues, as well as any other light sources that use an open flame, are prohibited.",
			Color:       "Red",
		}}
		r.AIAnalysis = &AIAnalysis{
			HasFireBan:    true,
			BanType:       BanTotal,
			EffectiveFrom: Timestamp(now),
			Summary:       "Total fire ban prohibiting all outdoor burning and open flames.",
			Confidence:    0.99,
		}
	default:
		r.AIAnalysis = &AIAnalysis{
			HasFireBan: false,
			BanType:    BanNone,
			Summary:    "No fire ban is currently in effect.",
			Confidence: 0.98,
		}
		return r
	}

	r.HasActiveBan = true
	r.BanType = ban
	r.Summary.Status = StatusActive
	primary := r.Alerts[0]
	r.Summary.PrimaryAlert = &primary
	return r
}

// FireBanStatusChange is published when the ban type differs from the last
// one observed.
type FireBanStatusChange struct {
	Previous          BanType        `json:"previous,omitempty"`
	Current           BanType        `json:"current"`
	HasActiveBan      bool           `json:"hasActiveBan"`
	DecisionSource    DecisionSource `json:"decisionSource"`
	PrimaryAlertTitle string         `json:"primaryAlertTitle,omitempty"`
	ChangedAt         time.Time      `json:"changedAt"`
}

// StatusChange compares r against the previously observed ban type and
// reports whether a change should be published. An empty previous value
// means nothing has been observed yet.
func (r FireBanReport) StatusChange(previous BanType, now time.Time) (FireBanStatusChange, bool) {
	if r.Summary.Status == StatusError || r.BanType == previous {
		return FireBanStatusChange{}, false
	}
	change := FireBanStatusChange{
		Previous:       previous,
		Current:        r.BanType,
		HasActiveBan:   r.HasActiveBan,
		DecisionSource: r.DecisionSource,
		ChangedAt:      now.UTC(),
	}
	if r.Summary.PrimaryAlert != nil {
		change.PrimaryAlertTitle = r.Summary.PrimaryAlert.Title
	}
	return change, true
}
