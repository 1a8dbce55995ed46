package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/models"
)

// NotificationEvent is the internal payload handed to the dispatcher. The
// recipient's preference flag for Type decides whether anything is persisted.
type NotificationEvent struct {
	RecipientID uint                    `json:"recipient_id" validate:"required"`
	ActorID     *uint                   `json:"actor_id,omitempty"`
	Type        models.NotificationType `json:"type" validate:"required"`
	Message     string                  `json:"message" validate:"required,min=1,max=2000"`

	PostID    *uint `json:"post_id,omitempty"`
	CommentID *uint `json:"comment_id,omitempty"`
	MessageID *uint `json:"message_id,omitempty"`
	ReportID  *uint `json:"report_id,omitempty"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ActorID   *uint     `json:"actor_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	PostID    *uint     `json:"post_id,omitempty"`
	CommentID *uint     `json:"comment_id,omitempty"`
	MessageID *uint     `json:"message_id,omitempty"`
	ReportID  *uint     `json:"report_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		ActorID:   model.ActorID,
		Type:      string(model.Type),
		Message:   model.Message,
		Read:      model.Read,
		PostID:    model.PostID,
		CommentID: model.CommentID,
		MessageID: model.MessageID,
		ReportID:  model.ReportID,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, NewNotificationResponse(notification))
	}
	return out
}
