package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, s Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	return string(v), ok
}

func set(t *testing.T, s Store, key, value string, ttl time.Duration) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), key, []byte(value), ttl))
}

func TestMemory_BasicGetSet(t *testing.T) {
	c := NewMemory(3, nil)

	set(t, c, "a", "A", time.Minute)
	set(t, c, "b", "B", time.Minute)

	v, ok := get(t, c, "a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = get(t, c, "missing")
	assert.False(t, ok)
}

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC))
	c := NewMemory(10, clock)

	set(t, c, "weather:current", "fresh", 15*time.Minute)

	clock.Advance(14*time.Minute + 59*time.Second)
	_, ok := get(t, c, "weather:current")
	assert.True(t, ok, "still within TTL")

	clock.Advance(time.Second)
	_, ok = get(t, c, "weather:current")
	assert.False(t, ok, "an entry exactly TTL old is stale")
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
}

func TestMemory_RewriteRefreshesTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemory(10, clock)

	set(t, c, "k", "v1", time.Minute)
	clock.Advance(50 * time.Second)
	set(t, c, "k", "v2", time.Minute)
	clock.Advance(50 * time.Second)

	v, ok := get(t, c, "k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestMemory_Eviction(t *testing.T) {
	c := NewMemory(2, nil)

	set(t, c, "a", "A", time.Minute)
	set(t, c, "b", "B", time.Minute)
	set(t, c, "c", "C", time.Minute) // evicts "a"

	_, ok := get(t, c, "a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := get(t, c, "b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = get(t, c, "c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
}

func TestMemory_AccessPromotesEntry(t *testing.T) {
	c := NewMemory(2, nil)

	set(t, c, "a", "A", time.Minute)
	set(t, c, "b", "B", time.Minute)

	// Access "a" to promote it
	get(t, c, "a")

	// Insert "c": should evict "b" (LRU), not "a"
	set(t, c, "c", "C", time.Minute)

	_, ok := get(t, c, "a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = get(t, c, "b")
	assert.False(t, ok, "b should have been evicted")
}

func TestGetJSON_RoundTripAndCorruptValue(t *testing.T) {
	type payload struct {
		Temp int `json:"temp"`
	}
	c := NewMemory(10, nil)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, c, "p", payload{Temp: 21}, time.Minute))
	got, ok, err := GetJSON[payload](ctx, c, "p")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 21, got.Temp)

	set(t, c, "bad", "{not json", time.Minute)
	_, ok, err = GetJSON[payload](ctx, c, "bad")
	require.NoError(t, err)
	assert.False(t, ok, "undecodable value is a miss")
}
