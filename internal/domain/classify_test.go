package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name string
		text string
		want AIAnalysis
	}{
		{
			name: "plain JSON",
			text: `{"hasFireBan":true,"banType":"total","effectiveFrom":"2025-07-01T00:00:00Z","effectiveTo":null,"summary":"Total ban.","confidence":0.93}`,
			want: AIAnalysis{HasFireBan: true, BanType: BanTotal, EffectiveFrom: "2025-07-01T00:00:00Z", Summary: "Total ban.", Confidence: 0.93},
		},
		{
			name: "wrapped in prose and fences",
			text: "Here you go:\n```json\n{\"hasFireBan\": false, \"banType\": \"NONE\", \"confidence\": 0.8}\n```",
			want: AIAnalysis{HasFireBan: false, BanType: BanNone, Confidence: 0.8},
		},
		{
			name: "missing hasFireBan derived from ban type",
			text: `{"banType":"Restricted","confidence":0.6}`,
			want: AIAnalysis{HasFireBan: true, BanType: BanRestricted, Confidence: 0.6},
		},
		{
			name: "unknown ban type dropped",
			text: `{"hasFireBan":true,"banType":"partial"}`,
			want: AIAnalysis{HasFireBan: true},
		},
		{
			name: "confidence clamped",
			text: `{"hasFireBan":true,"banType":"total","confidence":7}`,
			want: AIAnalysis{HasFireBan: true, BanType: BanTotal, Confidence: 1},
		},
		{
			name: "negative confidence clamped",
			text: `{"hasFireBan":false,"banType":"none","confidence":-3}`,
			want: AIAnalysis{BanType: BanNone, Confidence: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClassification(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClassification_NoJSON(t *testing.T) {
	_, err := ParseClassification("I cannot determine that.")
	require.ErrorIs(t, err, ErrNoJSONObject)
}

func TestParseClassification_BrokenJSON(t *testing.T) {
	_, err := ParseClassification(`{"hasFireBan": tru}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode classification")
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject(`noise {"a":{"b":1}} trailing`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":1}}`, got)

	_, err = ExtractJSONObject("} backwards {")
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestClassificationPrompt(t *testing.T) {
	prompt := ClassificationPrompt("Dysart et al", "https://example.test/feed", []Alert{
		{Title: "Fire Ban", Color: "Red", Description: "No burning"},
		{Title: "Road work", Color: "Blue", Description: "Hwy 118"},
	})

	assert.Contains(t, prompt, "From the following alerts from Dysart et al")
	assert.Contains(t, prompt, "Source URL: https://example.test/feed")
	assert.Contains(t, prompt, "# Alert 1\nTitle: Fire Ban\nColor: Red\nDescription: No burning")
	assert.Contains(t, prompt, "\n\n# Alert 2\nTitle: Road work")
}
