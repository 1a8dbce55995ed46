package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/models"
)

// PrivateChatCreateRequest opens (or returns) the one-to-one chat with a user.
type PrivateChatCreateRequest struct {
	OtherUserID uint `json:"other_user_id" validate:"required"`
}

// GroupChatCreateRequest creates a group room.
type GroupChatCreateRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=255"`
	ImageURL       string `json:"image_url" validate:"omitempty,url,max=512"`
	ParticipantIDs []uint `json:"participant_ids" validate:"required,min=1,dive,required"`
}

// ParticipantRequest adds or removes a roster member on a group chat.
type ParticipantRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// MessageSendRequest is the payload for appending a message to a chat. It is
// accepted both over REST and as the websocket wire frame.
type MessageSendRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=4000"`
	MediaURL string `json:"media_url" validate:"omitempty,url,max=512"`
}

// ChatResponse is the serialized conversation with its roster.
type ChatResponse struct {
	ID           uint      `json:"id"`
	Type         string    `json:"type"`
	GroupName    string    `json:"group_name,omitempty"`
	GroupImage   string    `json:"group_image,omitempty"`
	CreatedBy    uint      `json:"created_by"`
	Participants []uint    `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewChatResponse converts a model into a DTO.
func NewChatResponse(chat models.Chat) ChatResponse {
	participants := make([]uint, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		participants = append(participants, p.UserID)
	}

	return ChatResponse{
		ID:           chat.ID,
		Type:         string(chat.Type),
		GroupName:    chat.GroupName,
		GroupImage:   chat.GroupImage,
		CreatedBy:    chat.CreatedBy,
		Participants: participants,
		CreatedAt:    chat.CreatedAt,
	}
}

// NewChatResponseSlice converts a slice of models into DTOs.
func NewChatResponseSlice(chats []models.Chat) []ChatResponse {
	out := make([]ChatResponse, 0, len(chats))
	for _, chat := range chats {
		out = append(out, NewChatResponse(chat))
	}
	return out
}

// MessageResponse is the serialized representation of a chat message.
type MessageResponse struct {
	ID       uint       `json:"id"`
	ChatID   uint       `json:"chat_id"`
	SenderID uint       `json:"sender_id"`
	Content  string     `json:"content"`
	MediaURL string     `json:"media_url,omitempty"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
}

// NewMessageResponse converts a model into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:       message.ID,
		ChatID:   message.ChatID,
		SenderID: message.SenderID,
		Content:  message.Content,
		MediaURL: message.MediaURL,
		SentAt:   message.SentAt,
		ReadAt:   message.ReadAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// UnreadCountResponse reports the unread message count for one chat.
type UnreadCountResponse struct {
	ChatID uint  `json:"chat_id"`
	Unread int64 `json:"unread"`
}
