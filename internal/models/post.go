package models

import "time"

// Post is a feed entry. SharedPostID references the original post when this
// row was created through a share; it is a lookup-only back-reference.
type Post struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AuthorID     uint   `gorm:"not null;index" json:"author_id"`
	Content      string `gorm:"type:text;not null" json:"content"`
	MediaURL     string `gorm:"size:512" json:"media_url,omitempty"`
	SharedPostID *uint  `json:"shared_post_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reaction records one user's like on a post. The unique pair index makes
// repeated likes idempotent at the storage layer.
type Reaction struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PostID uint `gorm:"not null;uniqueIndex:idx_reaction_pair,priority:1" json:"post_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_reaction_pair,priority:2" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Content  string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
