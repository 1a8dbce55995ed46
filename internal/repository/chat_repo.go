package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

// ChatRepository persists conversations and their participant rosters.
type ChatRepository interface {
	CreateWithParticipants(ctx context.Context, chat *models.Chat, userIDs []uint) error
	FindByID(ctx context.Context, id uint) (models.Chat, error)
	FindPrivateByPair(ctx context.Context, a, b uint) (models.Chat, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Chat, error)
	AddParticipant(ctx context.Context, chatID, userID uint) error
	RemoveParticipant(ctx context.Context, chatID, userID uint) error
	IsParticipant(ctx context.Context, chatID, userID uint) (bool, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a repository backed by GORM.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateWithParticipants creates the chat and its full roster in one
// transaction so a failed participant insert never leaves a half-built room.
func (r *chatRepository) CreateWithParticipants(ctx context.Context, chat *models.Chat, userIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, userID := range userIDs {
			participant := models.ChatParticipant{
				ChatID:   chat.ID,
				UserID:   userID,
				JoinedAt: now,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
			chat.Participants = append(chat.Participants, participant)
		}
		return nil
	})
}

func (r *chatRepository) FindByID(ctx context.Context, id uint) (models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		First(&chat, id).Error; err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

func (r *chatRepository) FindPrivateByPair(ctx context.Context, a, b uint) (models.Chat, error) {
	key := models.PrivatePairKey(a, b)

	var chat models.Chat
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("type = ? AND pair_key = ?", models.ChatPrivate, key).
		First(&chat).Error; err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

func (r *chatRepository) ListByUser(ctx context.Context, userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN chat_participants ON chat_participants.chat_id = chats.id").
		Where("chat_participants.user_id = ?", userID).
		Order("chats.updated_at DESC").
		Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *chatRepository) AddParticipant(ctx context.Context, chatID, userID uint) error {
	participant := models.ChatParticipant{
		ChatID:   chatID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&participant).Error
}

func (r *chatRepository) RemoveParticipant(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.ChatParticipant{}).Error
}

func (r *chatRepository) IsParticipant(ctx context.Context, chatID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
