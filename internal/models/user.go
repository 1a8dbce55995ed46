package models

import "time"

// UserRole enumerates the roles a user account can hold.
type UserRole string

// UserStatus enumerates account lifecycle states.
type UserStatus string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents a registered account together with its notification and
// privacy preference flags. Accounts are never hard-deleted while referenced;
// suspension flips Status instead.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Bio          string     `gorm:"size:1000" json:"bio,omitempty"`
	AvatarURL    string     `gorm:"size:512" json:"avatar_url,omitempty"`
	Location     string     `gorm:"size:255" json:"location,omitempty"`
	Role         UserRole   `gorm:"size:16;not null;default:user" json:"role"`
	Status       UserStatus `gorm:"size:16;not null;default:active" json:"status"`

	PushNewFollowers bool `gorm:"not null;default:true" json:"push_new_followers"`
	PushMessages     bool `gorm:"not null;default:true" json:"push_messages"`
	PushPostLikes    bool `gorm:"not null;default:true" json:"push_post_likes"`
	PushPostComments bool `gorm:"not null;default:true" json:"push_post_comments"`
	PushPostShares   bool `gorm:"not null;default:true" json:"push_post_shares"`
	PushReports      bool `gorm:"not null;default:true" json:"push_reports"`
	PrivateProfile   bool `gorm:"not null;default:false" json:"private_profile"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllowsNotification reports whether the user opted in to push notifications
// of the given type.
func (u User) AllowsNotification(t NotificationType) bool {
	switch t {
	case NotificationFriendRequest:
		return u.PushNewFollowers
	case NotificationNewMessage:
		return u.PushMessages
	case NotificationPostLike:
		return u.PushPostLikes
	case NotificationPostComment:
		return u.PushPostComments
	case NotificationPostShare:
		return u.PushPostShares
	case NotificationReportUpdate:
		return u.PushReports
	default:
		return false
	}
}

// IsAdmin reports whether the account carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
