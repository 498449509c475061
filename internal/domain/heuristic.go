package domain

import (
	"math"
	"strings"
)

const (
	keywordWeight = 0.7
	colorWeight   = 0.4
)

// fireBanKeywords are matched case-insensitively against title + description.
var fireBanKeywords = []string{
	"fire ban",
	"total fire ban",
	"burn ban",
	"no open air burning",
	"open air burning is prohibited",
	"restricted fire zone",
	"rfz",
}

// restrictedMarkers downgrade a match from a total ban to a restricted one.
var restrictedMarkers = []string{"restricted fire zone", "rfz", "restricted"}

// DetectFireBan scans the banners for fire-ban wording and a red banner
// colour. The first banner with any evidence becomes the primary alert.
func DetectFireBan(alerts []Alert) Detection {
	for i := range alerts {
		a := alerts[i]
		text := strings.ToLower(a.Title + " " + a.Description)

		var matched []string
		for _, kw := range fireBanKeywords {
			if strings.Contains(text, kw) {
				matched = append(matched, kw)
			}
		}
		red := strings.EqualFold(strings.TrimSpace(a.Color), "red")
		if len(matched) == 0 && !red {
			continue
		}

		score := 0.0
		if len(matched) > 0 {
			score += keywordWeight
		}
		d := Detection{
			MatchedKeywords: matched,
			BanType:         BanTotal,
			Alert:           &a,
		}
		if red {
			score += colorWeight
			d.MatchedColor = a.Color
		}
		if d.MatchedKeywords == nil {
			d.MatchedKeywords = []string{}
		}
		for _, m := range restrictedMarkers {
			if strings.Contains(text, m) {
				d.BanType = BanRestricted
				break
			}
		}
		d.Confidence = ClampConfidence(score)
		return d
	}

	return Detection{MatchedKeywords: []string{}, BanType: BanNone}
}

// ClampConfidence limits v to [0, 1]. NaN becomes 0.
func ClampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
