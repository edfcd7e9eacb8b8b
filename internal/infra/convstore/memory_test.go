package convstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/karenlo/mapchat/internal/domain/assistant"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	conv := assistant.Conversation{
		ID:       uuid.New(),
		Location: assistant.Location{Latitude: 40.7589, Longitude: -73.9851},
		Messages: []assistant.ChatMessage{{ID: "user_1", Type: assistant.MessageTypeUser, Content: "hi"}},
		NextSeq:  1,
	}
	require.NoError(t, store.Save(ctx, conv))

	got, ok, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, conv, got)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	conv := assistant.Conversation{ID: uuid.New()}
	require.NoError(t, store.Save(ctx, conv))
	require.NoError(t, store.Delete(ctx, conv.ID))

	_, ok, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreCopiesMessages(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	conv := assistant.Conversation{
		ID:       uuid.New(),
		Messages: []assistant.ChatMessage{{ID: "user_1", Content: "original"}},
	}
	require.NoError(t, store.Save(ctx, conv))

	// Mutating the caller's slice must not leak into the stored snapshot.
	conv.Messages[0].Content = "mutated"

	got, ok, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "original", got.Messages[0].Content)
}
