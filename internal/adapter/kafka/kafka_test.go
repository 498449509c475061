package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redstonelake/lakeside-api/internal/config"
	"github.com/redstonelake/lakeside-api/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 7, 14, 15, 10, 0, 0, time.UTC)
	change := domain.FireBanStatusChange{
		Previous:          domain.BanNone,
		Current:           domain.BanTotal,
		HasActiveBan:      true,
		DecisionSource:    domain.DecidedByAI,
		PrimaryAlertTitle: "Total Fire Ban",
		ChangedAt:         now,
	}

	msg, err := serializeToMessage(change)
	require.NoError(t, err)

	assert.Equal(t, []byte(StatusKey), msg.Key)
	var decoded domain.FireBanStatusChange
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, change, decoded)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "ban_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("total"), msg.Headers[0].Value)
	assert.Equal(t, "decision_source", msg.Headers[1].Key)
	assert.Equal(t, []byte("ai"), msg.Headers[1].Value)
	assert.Equal(t, "changed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_FirstObservationOmitsPrevious(t *testing.T) {
	msg, err := serializeToMessage(domain.FireBanStatusChange{
		Current:        domain.BanNone,
		DecisionSource: domain.DecidedByHeuristic,
		ChangedAt:      time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), `"previous"`)
	assert.Contains(t, string(msg.Value), `"current":"none"`)
}

func TestNewWriter_UsesConfiguredTopic(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"b1:9092", "b2:9092"}, KafkaFireBanTopic: "fire-ban-status"}

	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "fire-ban-status", w.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
	assert.NotNil(t, w.writer.Addr)
}
