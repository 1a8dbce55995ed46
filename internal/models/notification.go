package models

import "time"

// NotificationType enumerates the event kinds that can reach a user.
type NotificationType string

const (
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationNewMessage    NotificationType = "new_message"
	NotificationPostLike      NotificationType = "post_like"
	NotificationPostComment   NotificationType = "post_comment"
	NotificationPostShare     NotificationType = "post_share"
	NotificationReportUpdate  NotificationType = "report_update"
)

// Notification targets a single recipient. References to the triggering
// entities are plain ids, never owning struct pointers, so the entity graph
// stays acyclic. Read transitions false to true only.
type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	ActorID *uint            `json:"actor_id,omitempty"`
	Type    NotificationType `gorm:"size:32;not null" json:"type"`
	Message string           `gorm:"type:text" json:"message"`
	Read    bool             `gorm:"not null;default:false" json:"read"`

	PostID    *uint `json:"post_id,omitempty"`
	CommentID *uint `json:"comment_id,omitempty"`
	MessageID *uint `json:"message_id,omitempty"`
	ReportID  *uint `json:"report_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
