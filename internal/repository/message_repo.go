package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

// MessageRepository persists chat messages and their read-state.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (models.Message, error)
	Delete(ctx context.Context, id uint) error
	ListByChatAsc(ctx context.Context, chatID uint, limit int) ([]models.Message, error)
	ListByChatDesc(ctx context.Context, chatID uint, before time.Time, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, chatID, readerID uint, at time.Time) (int64, error)
	UnreadCount(ctx context.Context, chatID, readerID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Message{}, id).Error
}

// ListByChatAsc returns the chronological history view.
func (r *messageRepository) ListByChatAsc(ctx context.Context, chatID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("sent_at ASC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByChatDesc returns the latest-first listing used by conversation
// overviews, optionally paginated with a before cursor.
func (r *messageRepository) ListByChatDesc(ctx context.Context, chatID uint, before time.Time, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if !before.IsZero() {
		query = query.Where("sent_at < ?", before)
	}

	var messages []models.Message
	if err := query.Order("sent_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead stamps every unread message in the chat authored by someone else.
// Re-invocation matches zero rows, so the operation is idempotent.
func (r *messageRepository) MarkRead(ctx context.Context, chatID, readerID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chatID, readerID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

func (r *messageRepository) UnreadCount(ctx context.Context, chatID, readerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chatID, readerID).
		Count(&count).Error
	return count, err
}
