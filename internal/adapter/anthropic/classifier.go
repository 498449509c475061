// Package anthropic classifies fire-ban banners with the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/redstonelake/lakeside-api/internal/domain"
	"github.com/redstonelake/lakeside-api/internal/observability"
)

const (
	upstream  = "anthropic"
	maxTokens = 400
)

// messenger is the subset of sdk.MessageService used here.
type messenger interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Classifier implements domain.Classifier.
type Classifier struct {
	messages   messenger
	model      string
	sourceName string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClassifier creates a Messages API classifier. sourceName is the
// publisher named in the prompt. The SDK's own retries are disabled; the
// caller falls back to the keyword heuristic instead.
func NewClassifier(apiKey, model, sourceName string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...option.RequestOption) *Classifier {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		base = append(base, option.WithRequestTimeout(timeout))
	}
	client := sdk.NewClient(append(base, opts...)...)
	return &Classifier{
		messages:   &client.Messages,
		model:      model,
		sourceName: sourceName,
		metrics:    metrics,
		logger:     logger,
	}
}

// Name implements domain.Classifier.
func (c *Classifier) Name() string {
	return "anthropic:" + c.model
}

// Classify sends the banners to the model and parses its JSON verdict.
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

	msg, err := c.messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(0),
		System:      []sdk.TextBlockParam{{Text: domain.ClassifierInstruction}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(domain.ClassificationPrompt(c.sourceName, sourceURL, alerts))),
		},
	})
	if err != nil {
		return domain.AIAnalysis{}, fmt.Errorf("anthropic messages: %w", err)
	}

	text, ok := firstText(msg)
	if !ok {
		return domain.AIAnalysis{}, domain.ErrNoClassification
	}
	analysis, err := domain.ParseClassification(text)
	if err != nil {
		return domain.AIAnalysis{}, err
	}
	c.logger.Debug("anthropic classification", "ban_type", analysis.BanType, "confidence", analysis.Confidence)
	return analysis, nil
}

func firstText(msg *sdk.Message) (string, bool) {
	if msg == nil {
		return "", false
	}
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, true
		}
	}
	return "", false
}
