package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFireBan(t *testing.T) {
	tests := []struct {
		name       string
		alerts     []Alert
		active     bool
		banType    BanType
		confidence float64
		color      string
		keywords   []string
	}{
		{
			name:       "no alerts",
			alerts:     nil,
			banType:    BanNone,
			confidence: 0,
			keywords:   []string{},
		},
		{
			name:       "unrelated banner",
			alerts:     []Alert{{Title: "Road closure on Hwy 118", Description: "Detour in effect", Color: "Blue"}},
			banType:    BanNone,
			confidence: 0,
			keywords:   []string{},
		},
		{
			name:       "keyword only",
			alerts:     []Alert{{Title: "Fire Ban in Effect", Description: "Until further notice", Color: "Orange"}},
			active:     true,
			banType:    BanTotal,
			confidence: 0.7,
			keywords:   []string{"fire ban"},
		},
		{
			name:       "red banner only",
			alerts:     []Alert{{Title: "Important notice", Description: "See township website", Color: "red"}},
			active:     true,
			banType:    BanTotal,
			confidence: 0.4,
			color:      "red",
			keywords:   []string{},
		},
		{
			name:       "keyword and red is capped at 1",
			alerts:     []Alert{{Title: "Total Fire Ban", Description: "No open air burning", Color: "Red"}},
			active:     true,
			banType:    BanTotal,
			confidence: 1.0,
			color:      "Red",
			keywords:   []string{"fire ban", "total fire ban", "no open air burning"},
		},
		{
			name:       "restricted fire zone",
			alerts:     []Alert{{Title: "RFZ declared", Description: "Restricted Fire Zone rules apply", Color: "Orange"}},
			active:     true,
			banType:    BanRestricted,
			confidence: 0.7,
			keywords:   []string{"restricted fire zone", "rfz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetectFireBan(tt.alerts)

			assert.Equal(t, tt.active, d.Active())
			assert.Equal(t, tt.banType, d.BanType)
			assert.InDelta(t, tt.confidence, d.Confidence, 1e-9)
			assert.Equal(t, tt.color, d.MatchedColor)
			assert.Equal(t, tt.keywords, d.MatchedKeywords)
			assert.GreaterOrEqual(t, d.Confidence, 0.0)
			assert.LessOrEqual(t, d.Confidence, 1.0)
		})
	}
}

func TestDetectFireBan_FirstMatchIsPrimary(t *testing.T) {
	alerts := []Alert{
		{Title: "Landfill hours", Color: "Blue"},
		{Title: "Burn ban for the long weekend", Color: "Yellow"},
		{Title: "Total Fire Ban", Color: "Red"},
	}

	d := DetectFireBan(alerts)

	require.NotNil(t, d.Alert)
	assert.Equal(t, "Burn ban for the long weekend", d.Alert.Title)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.2))
	assert.Equal(t, 1.0, ClampConfidence(1.7))
	assert.Equal(t, 0.42, ClampConfidence(0.42))
	assert.Equal(t, 0.0, ClampConfidence(math.NaN()))
}
