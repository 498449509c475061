package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoJSONObject is returned when model output contains no {...} block.
	ErrNoJSONObject = errors.New("no JSON object in model output")
	// ErrNoClassification is returned when a model response carries no text.
	ErrNoClassification = errors.New("model returned no text content")
)

// Classifier turns municipal banners into a structured fire-ban decision.
type Classifier interface {
	Classify(ctx context.Context, alerts []Alert, sourceURL string) (AIAnalysis, error)
	// Name identifies the provider in logs and debug output.
	Name() string
}

// ClassifierInstruction is the system instruction sent with every classification.
const ClassifierInstruction = "You extract structured fire-ban policy from municipal alerts. Respond with strict JSON only, no prose."

// ClassificationPrompt renders the user prompt listing every banner.
func ClassificationPrompt(sourceName, sourceURL string, alerts []Alert) string {
	blocks := make([]string, len(alerts))
	for i, a := range alerts {
		blocks[i] = fmt.Sprintf("# Alert %d\nTitle: %s\nColor: %s\nDescription: %s", i+1, a.Title, a.Color, a.Description)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From the following alerts from %s, determine if a fire ban is currently in effect. ", sourceName)
	b.WriteString(`Classify ban type strictly as one of: "total", "restricted", or "none". Include effective dates if present. `)
	b.WriteString(`Return strict JSON with keys: hasFireBan (boolean), banType ("total"|"restricted"|"none"), `)
	b.WriteString(`effectiveFrom (ISO 8601 string or null), effectiveTo (ISO 8601 string or null), summary (string, one sentence), confidence (0..1).`)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- If no ban is in effect, set hasFireBan=false and banType=\"none\".\n")
	b.WriteString("- If partial restrictions (e.g., time-of-day, specific activities) are in effect, use banType=\"restricted\".\n")
	b.WriteString("- If all open flames/outdoor burning are prohibited, use banType=\"total\".\n")
	fmt.Fprintf(&b, "\nSource URL: %s\n\nAlerts:\n%s", sourceURL, strings.Join(blocks, "\n\n"))
	return b.String()
}

// ExtractJSONObject returns the text between the first '{' and the last '}'.
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// ParseClassification decodes model output into an AIAnalysis. Unknown ban
// types are dropped, a missing hasFireBan is derived from the ban type, and
// confidence is clamped to [0, 1].
func ParseClassification(text string) (AIAnalysis, error) {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return AIAnalysis{}, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return AIAnalysis{}, fmt.Errorf("decode classification: %w", err)
	}

	var a AIAnalysis
	if s, ok := fields["banType"].(string); ok {
		if bt, ok := ParseBanType(s); ok {
			a.BanType = bt
		}
	}
	if has, ok := fields["hasFireBan"].(bool); ok {
		a.HasFireBan = has
	} else if a.BanType != "" {
		a.HasFireBan = a.BanType != BanNone
	}
	a.EffectiveFrom = stringField(fields, "effectiveFrom")
	a.EffectiveTo = stringField(fields, "effectiveTo")
	a.Summary = stringField(fields, "summary")
	if c, ok := fields["confidence"].(float64); ok {
		a.Confidence = ClampConfidence(c)
	}
	return a, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
