package messaging

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranscriptStore(t *testing.T) *TranscriptStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTranscriptStore(client)
}

func TestTranscriptAppendAndList(t *testing.T) {
	store := newTestTranscriptStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "+15551234567", TranscriptMessage{Direction: "inbound", Body: "BOOK 25/12/2099 10:30 fever"}))
	require.NoError(t, store.Append(ctx, "+15551234567", TranscriptMessage{Direction: "outbound", Body: "confirmed", Outcome: OutcomeBooked}))

	messages, err := store.List(ctx, "+15551234567", 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "inbound", messages[0].Direction)
	assert.Equal(t, "outbound", messages[1].Direction)
	assert.Equal(t, OutcomeBooked, messages[1].Outcome)
	assert.NotEmpty(t, messages[0].ID)
	assert.False(t, messages[0].Timestamp.IsZero())
}

func TestTranscriptListLimit(t *testing.T) {
	store := newTestTranscriptStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "+15551234567", TranscriptMessage{Direction: "inbound", Body: "msg"}))
	}

	messages, err := store.List(ctx, "+15551234567", 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestTranscriptTrimsToCap(t *testing.T) {
	store := newTestTranscriptStore(t)
	store.maxMessages = 3
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, "+15551234567", TranscriptMessage{Direction: "inbound", Body: "msg"}))
	}

	messages, err := store.List(ctx, "+15551234567", 0)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestTranscriptIsolatedPerPhone(t *testing.T) {
	store := newTestTranscriptStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "+15551111111", TranscriptMessage{Direction: "inbound", Body: "a"}))

	messages, err := store.List(ctx, "+15552222222", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestTranscriptNilStoreIsNoOp(t *testing.T) {
	var store *TranscriptStore

	assert.NoError(t, store.Append(context.Background(), "+15551234567", TranscriptMessage{Body: "x"}))
	messages, err := store.List(context.Background(), "+15551234567", 0)
	assert.NoError(t, err)
	assert.Nil(t, messages)
}
