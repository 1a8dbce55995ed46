package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestFriendshipCreateIfAbsentBothOrderings(t *testing.T) {
	db := setupTestDB(t, &models.Friendship{})
	repo := NewFriendshipRepository(db)

	created, err := repo.CreateIfAbsent(context.Background(), &models.Friendship{
		User1ID: 1, User2ID: 2, Status: models.FriendshipPending,
	})
	require.NoError(t, err)
	require.True(t, created)

	// The reversed ordering hits the same normalized pair.
	created, err = repo.CreateIfAbsent(context.Background(), &models.Friendship{
		User1ID: 2, User2ID: 1, Status: models.FriendshipPending,
	})
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFriendshipPairIndexRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t, &models.Friendship{})

	require.NoError(t, db.Create(&models.Friendship{User1ID: 3, User2ID: 4, Status: models.FriendshipPending}).Error)

	// Bypassing the repository, the unique index is the backstop.
	err := db.Create(&models.Friendship{User1ID: 4, User2ID: 3, Status: models.FriendshipAccepted}).Error
	require.Error(t, err)
}

func TestFriendshipFindByPairIgnoresOrder(t *testing.T) {
	db := setupTestDB(t, &models.Friendship{})
	repo := NewFriendshipRepository(db)

	_, err := repo.CreateIfAbsent(context.Background(), &models.Friendship{
		User1ID: 5, User2ID: 9, Status: models.FriendshipPending,
	})
	require.NoError(t, err)

	found, err := repo.FindByPair(context.Background(), 9, 5)
	require.NoError(t, err)
	require.Equal(t, uint(5), found.User1ID)
	require.Equal(t, uint(9), found.User2ID)

	_, err = repo.FindByPair(context.Background(), 5, 6)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFriendshipUpsertBlocked(t *testing.T) {
	db := setupTestDB(t, &models.Friendship{})
	repo := NewFriendshipRepository(db)

	// No prior row: the blocker lands on side 1.
	blocked, err := repo.UpsertBlocked(context.Background(), 8, 2)
	require.NoError(t, err)
	require.Equal(t, uint(8), blocked.User1ID)
	require.Equal(t, models.FriendshipBlocked, blocked.Status)

	// An existing row keeps its identity but flips status.
	_, err = repo.CreateIfAbsent(context.Background(), &models.Friendship{
		User1ID: 1, User2ID: 3, Status: models.FriendshipAccepted,
	})
	require.NoError(t, err)

	blocked, err = repo.UpsertBlocked(context.Background(), 3, 1)
	require.NoError(t, err)
	require.Equal(t, models.FriendshipBlocked, blocked.Status)

	var count int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestFriendshipListsAndRelatedIDs(t *testing.T) {
	db := setupTestDB(t, &models.Friendship{})
	repo := NewFriendshipRepository(db)

	seed := []models.Friendship{
		{User1ID: 1, User2ID: 2, Status: models.FriendshipAccepted},
		{User1ID: 3, User2ID: 1, Status: models.FriendshipAccepted},
		{User1ID: 4, User2ID: 1, Status: models.FriendshipPending},
		{User1ID: 1, User2ID: 5, Status: models.FriendshipPending},
		{User1ID: 2, User2ID: 3, Status: models.FriendshipAccepted},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	accepted, err := repo.ListByUserAndStatus(context.Background(), 1, models.FriendshipAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 2)

	// Incoming means user 1 is the addressee; the request they sent to 5
	// does not count.
	incoming, err := repo.ListPendingIncoming(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.Equal(t, uint(4), incoming[0].User1ID)

	related, err := repo.RelatedUserIDs(context.Background(), 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{2, 3, 4, 5}, related)
}

func TestFriendshipSaveAndDelete(t *testing.T) {
	db := setupTestDB(t, &models.Friendship{})
	repo := NewFriendshipRepository(db)

	_, err := repo.CreateIfAbsent(context.Background(), &models.Friendship{
		User1ID: 1, User2ID: 2, Status: models.FriendshipPending,
	})
	require.NoError(t, err)

	row, err := repo.FindByPair(context.Background(), 1, 2)
	require.NoError(t, err)

	row.Status = models.FriendshipAccepted
	require.NoError(t, repo.Save(context.Background(), &row))

	row, err = repo.FindByPair(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, models.FriendshipAccepted, row.Status)

	require.NoError(t, repo.Delete(context.Background(), row.ID))
	_, err = repo.FindByPair(context.Background(), 1, 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
