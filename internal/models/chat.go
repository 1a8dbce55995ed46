package models

import (
	"fmt"
	"time"
)

// ChatType distinguishes one-to-one conversations from group rooms.
type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
)

// Chat is a conversation owning a participant roster and an append-only
// message sequence. PairKey is populated only for private chats: the
// normalized "low:high" user pair, unique-indexed so at most one private chat
// exists per unordered pair. Group chats leave it NULL.
type Chat struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Type       ChatType `gorm:"size:16;not null" json:"type"`
	GroupName  string   `gorm:"size:255" json:"group_name,omitempty"`
	GroupImage string   `gorm:"size:512" json:"group_image,omitempty"`
	CreatedBy  uint     `gorm:"not null;index" json:"created_by"`
	PairKey    *string  `gorm:"size:64;uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participants []ChatParticipant `gorm:"foreignKey:ChatID" json:"participants,omitempty"`
}

// ChatParticipant is a roster entry keyed by (chat, user).
type ChatParticipant struct {
	ChatID   uint      `gorm:"primaryKey;autoIncrement:false" json:"chat_id"`
	UserID   uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Message is immutable once sent except for the unset-to-set ReadAt
// transition. Deleting a message is a hard delete by its sender.
type Message struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	ChatID   uint       `gorm:"not null;index" json:"chat_id"`
	SenderID uint       `gorm:"not null;index" json:"sender_id"`
	Content  string     `gorm:"type:text;not null" json:"content"`
	MediaURL string     `gorm:"size:512" json:"media_url,omitempty"`
	SentAt   time.Time  `gorm:"not null;index" json:"sent_at"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
}

// HasParticipant reports whether userID is on the preloaded roster.
func (c Chat) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// PrivatePairKey builds the normalized pair key for a private chat.
func PrivatePairKey(a, b uint) string {
	low, high := NormalizePair(a, b)
	return fmt.Sprintf("%d:%d", low, high)
}
