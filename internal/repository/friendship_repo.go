package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

// FriendshipRepository persists relationship rows. The unique index on the
// normalized pair columns is the authoritative duplicate guard; the
// existence checks inside the transactional methods are a fast path only.
type FriendshipRepository interface {
	CreateIfAbsent(ctx context.Context, friendship *models.Friendship) (bool, error)
	UpsertBlocked(ctx context.Context, actorID, targetID uint) (models.Friendship, error)
	FindByPair(ctx context.Context, a, b uint) (models.Friendship, error)
	Save(ctx context.Context, friendship *models.Friendship) error
	Delete(ctx context.Context, id uint) error
	ListByUserAndStatus(ctx context.Context, userID uint, status models.FriendshipStatus) ([]models.Friendship, error)
	ListPendingIncoming(ctx context.Context, userID uint) ([]models.Friendship, error)
	RelatedUserIDs(ctx context.Context, userID uint) ([]uint, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository constructs a repository backed by GORM.
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

// CreateIfAbsent inserts the row unless any row already exists for the
// unordered pair. Returns false without error when a row was already present.
func (r *friendshipRepository) CreateIfAbsent(ctx context.Context, friendship *models.Friendship) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		low, high := models.NormalizePair(friendship.User1ID, friendship.User2ID)

		var existing models.Friendship
		err := tx.Where("pair_low = ? AND pair_high = ?", low, high).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(friendship).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// UpsertBlocked transitions the pair to blocked, creating the row with the
// actor on side 1 when no relationship exists yet.
func (r *friendshipRepository) UpsertBlocked(ctx context.Context, actorID, targetID uint) (models.Friendship, error) {
	var result models.Friendship
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		low, high := models.NormalizePair(actorID, targetID)

		var existing models.Friendship
		err := tx.Where("pair_low = ? AND pair_high = ?", low, high).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = models.Friendship{
				User1ID: actorID,
				User2ID: targetID,
				Status:  models.FriendshipBlocked,
			}
			return tx.Create(&result).Error
		case err != nil:
			return err
		default:
			existing.Status = models.FriendshipBlocked
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = existing
			return nil
		}
	})
	return result, err
}

func (r *friendshipRepository) FindByPair(ctx context.Context, a, b uint) (models.Friendship, error) {
	low, high := models.NormalizePair(a, b)

	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		First(&friendship).Error; err != nil {
		return models.Friendship{}, err
	}
	return friendship, nil
}

func (r *friendshipRepository) Save(ctx context.Context, friendship *models.Friendship) error {
	return r.db.WithContext(ctx).Save(friendship).Error
}

func (r *friendshipRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Friendship{}, id).Error
}

func (r *friendshipRepository) ListByUserAndStatus(ctx context.Context, userID uint, status models.FriendshipStatus) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND status = ?", userID, userID, status).
		Order("updated_at DESC").
		Find(&friendships).Error; err != nil {
		return nil, err
	}
	return friendships, nil
}

func (r *friendshipRepository) ListPendingIncoming(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("user2_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC").
		Find(&friendships).Error; err != nil {
		return nil, err
	}
	return friendships, nil
}

// RelatedUserIDs returns every user sharing a relationship row with userID,
// regardless of status. Used to exclude candidates from friend suggestions.
func (r *friendshipRepository) RelatedUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	var friendships []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&friendships).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.OtherUser(userID))
	}
	return ids, nil
}
