package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daniswara/kumpul-api/internal/models"
)

func seedMessages(t *testing.T, repo MessageRepository, chatID uint) []models.Message {
	t.Helper()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	seed := []models.Message{
		{ChatID: chatID, SenderID: 1, Content: "first", SentAt: base},
		{ChatID: chatID, SenderID: 2, Content: "second", SentAt: base.Add(time.Minute)},
		{ChatID: chatID, SenderID: 1, Content: "third", SentAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, repo.Create(context.Background(), &seed[i]))
	}
	return seed
}

func TestMessageOrderingViews(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)
	seed := seedMessages(t, repo, 1)

	asc, err := repo.ListByChatAsc(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	require.Equal(t, "first", asc[0].Content)
	require.Equal(t, "third", asc[2].Content)

	desc, err := repo.ListByChatDesc(context.Background(), 1, time.Time{}, 0)
	require.NoError(t, err)
	require.Equal(t, "third", desc[0].Content)

	// The before cursor excludes equal and later timestamps.
	page, err := repo.ListByChatDesc(context.Background(), 1, seed[2].SentAt, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "second", page[0].Content)

	limited, err := repo.ListByChatDesc(context.Background(), 1, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestMessageMarkReadExcludesOwnMessages(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)
	seedMessages(t, repo, 1)

	// Noise in another chat must be untouched.
	require.NoError(t, repo.Create(context.Background(), &models.Message{
		ChatID: 2, SenderID: 1, Content: "elsewhere", SentAt: time.Now().UTC(),
	}))

	unread, err := repo.UnreadCount(context.Background(), 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	updated, err := repo.MarkRead(context.Background(), 1, 2, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 2, updated)

	// Reader 2's own message stays unread from user 1's side.
	unread, err = repo.UnreadCount(context.Background(), 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	// Idempotent on re-invocation.
	updated, err = repo.MarkRead(context.Background(), 1, 2, time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, updated)

	other, err := repo.UnreadCount(context.Background(), 2, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, other)
}

func TestMessageDelete(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)
	seed := seedMessages(t, repo, 1)

	require.NoError(t, repo.Delete(context.Background(), seed[0].ID))

	_, err := repo.FindByID(context.Background(), seed[0].ID)
	require.Error(t, err)

	remaining, err := repo.ListByChatAsc(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
}
