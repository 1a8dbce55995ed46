package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReportStatus enumerates moderation ticket states. Transitions are one-way:
// pending to resolved or escalated, never back.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportEscalated ReportStatus = "escalated"
)

// Report is a moderation ticket filed by a user against a post, comment or
// another user. Target references are lookup-only ids.
type Report struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ReporterID   uint         `gorm:"not null;index" json:"reporter_id"`
	TargetUserID *uint        `json:"target_user_id,omitempty"`
	PostID       *uint        `json:"post_id,omitempty"`
	CommentID    *uint        `json:"comment_id,omitempty"`
	Reason       string       `gorm:"size:64;not null" json:"reason"`
	Details      string       `gorm:"type:text" json:"details,omitempty"`
	Status       ReportStatus `gorm:"size:16;not null;default:pending;index" json:"status"`

	Metadata datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminAction is an append-only audit record of a moderation decision.
type AdminAction struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AdminID      uint   `gorm:"not null;index" json:"admin_id"`
	Action       string `gorm:"size:64;not null" json:"action"`
	TargetUserID *uint  `json:"target_user_id,omitempty"`
	ReportID     *uint  `gorm:"index" json:"report_id,omitempty"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`

	Metadata datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
