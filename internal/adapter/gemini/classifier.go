// Package gemini classifies fire-ban banners with Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
	"google.golang.org/genai"
)

const upstream = "gemini"

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Classifier implements domain.Classifier.
type Classifier struct {
	models     generator
	model      string
	sourceName string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClassifier creates a Gemini client for apiKey.
func NewClassifier(ctx context.Context, apiKey, model, sourceName string, metrics *observability.Metrics, logger *slog.Logger) (*Classifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Classifier{
		models:     client.Models,
		model:      model,
		sourceName: sourceName,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Name implements domain.Classifier.
func (c *Classifier) Name() string {
	return "gemini:" + c.model
}

// Classify asks the model for a JSON verdict on the banners.
func (c *Classifier) Classify(ctx context.Context, alerts []domain.Alert, sourceURL string) (_ domain.AIAnalysis, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(domain.ClassificationPrompt(c.sourceName, sourceURL, alerts)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	var temperature float32
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(domain.ClassifierInstruction)}, genai.RoleUser),
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
	}

	result, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return domain.AIAnalysis{}, fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return domain.AIAnalysis{}, domain.ErrNoClassification
	}
	analysis, err := domain.ParseClassification(text)
	if err != nil {
		return domain.AIAnalysis{}, err
	}
	c.logger.Debug("gemini classification", "ban_type", analysis.BanType, "confidence", analysis.Confidence)
	return analysis, nil
}
