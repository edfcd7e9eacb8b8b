package querylog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/karenlo/mapchat/internal/domain/assistant"
)

func TestMemoryRepositoryAppendOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	convID := uuid.New()

	first := assistant.QueryRecord{ID: uuid.New(), ConversationID: convID, Query: "coffee near me"}
	second := assistant.QueryRecord{ID: uuid.New(), ConversationID: convID, Query: "any open late?"}
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	got, err := repo.ListByConversation(ctx, convID)
	require.NoError(t, err)
	require.Equal(t, []assistant.QueryRecord{first, second}, got)
}

func TestMemoryRepositoryIsolatesConversations(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	rec := assistant.QueryRecord{ID: uuid.New(), ConversationID: uuid.New(), Query: "parks"}
	require.NoError(t, repo.Append(ctx, rec))

	got, err := repo.ListByConversation(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, got)
}
