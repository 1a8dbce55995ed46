package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

// PostRepository persists posts, reactions and comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uint) (models.Post, error)
	ListRecent(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Post, error)
	DeleteCascade(ctx context.Context, id uint) error

	AddReaction(ctx context.Context, postID, userID uint) (bool, error)
	RemoveReaction(ctx context.Context, postID, userID uint) error
	CountReactions(ctx context.Context, postID uint) (int64, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	FindCommentByID(ctx context.Context, id uint) (models.Comment, error)
	ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructs a repository backed by GORM.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (r *postRepository) ListRecent(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// DeleteCascade removes the post together with its dependents in one
// transaction, dependents first so no orphan rows survive a partial failure.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// AddReaction records the like unless the user already reacted. Returns false
// when the reaction was already present.
func (r *postRepository) AddReaction(ctx context.Context, postID, userID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		reaction := models.Reaction{PostID: postID, UserID: userID}
		if err := tx.Create(&reaction).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *postRepository) RemoveReaction(ctx context.Context, postID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Reaction{}).Error
}

func (r *postRepository) CountReactions(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *postRepository) FindCommentByID(ctx context.Context, id uint) (models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (r *postRepository) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
