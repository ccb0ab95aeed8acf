package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/chat-service/internal/models"
)

func TestMemoryIndexUpsertSemantics(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	at := time.Now()
	conv := &models.Conversation{
		ConversationID:     1,
		User1ID:            1,
		User2ID:            2,
		LastMessageAt:      at,
		LastMessageContent: "hello",
	}

	// Same primary key twice is one row, like the store's insert-as-upsert.
	require.NoError(t, repo.UpsertUserConversation(ctx, 1, conv))
	require.NoError(t, repo.UpsertUserConversation(ctx, 1, conv))

	total, err := repo.CountUserConversations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// A different last_message_at is a different clustering key: the
	// old row stays behind, exactly as it does in the real table.
	later := *conv
	later.LastMessageAt = at.Add(time.Minute)
	require.NoError(t, repo.UpsertUserConversation(ctx, 1, &later))

	total, err = repo.CountUserConversations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	rows, err := repo.FetchUserConversations(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].LastMessageAt.After(rows[1].LastMessageAt))
}

func TestMemoryFetchMessagesClusteringOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	base := time.Now()
	for _, m := range []struct {
		id int64
		at time.Time
	}{
		{2, base},
		{1, base},
		{3, base.Add(time.Second)},
	} {
		require.NoError(t, repo.CreateMessage(ctx, &models.Message{
			MessageID:      m.id,
			ConversationID: 7,
			SenderID:       1,
			ReceiverID:     2,
			CreatedAt:      m.at,
		}))
	}

	rows, err := repo.FetchMessages(ctx, 7, 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].MessageID)
	assert.Equal(t, int64(1), rows[1].MessageID)
	assert.Equal(t, int64(2), rows[2].MessageID)
}

func TestMemoryLimitIsTakeFirstN(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	base := time.Now()
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.CreateMessage(ctx, &models.Message{
			MessageID:      i,
			ConversationID: 7,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}))
	}

	rows, err := repo.FetchMessages(ctx, 7, 2, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Take-first-N of the descending scan, no skipping.
	assert.Equal(t, int64(5), rows[0].MessageID)
	assert.Equal(t, int64(4), rows[1].MessageID)
}
