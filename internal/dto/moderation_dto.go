package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/models"
)

// ReportCreateRequest files a moderation ticket. Exactly one target
// reference must be set; the service enforces that.
type ReportCreateRequest struct {
	TargetUserID *uint  `json:"target_user_id"`
	PostID       *uint  `json:"post_id"`
	CommentID    *uint  `json:"comment_id"`
	Reason       string `json:"reason" validate:"required,min=2,max=64"`
	Details      string `json:"details" validate:"omitempty,max=4000"`
}

// ReportDecisionRequest closes or escalates a pending report.
type ReportDecisionRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=4000"`
}

// ReportResponse is the serialized moderation ticket.
type ReportResponse struct {
	ID           uint      `json:"id"`
	ReporterID   uint      `json:"reporter_id"`
	TargetUserID *uint     `json:"target_user_id,omitempty"`
	PostID       *uint     `json:"post_id,omitempty"`
	CommentID    *uint     `json:"comment_id,omitempty"`
	Reason       string    `json:"reason"`
	Details      string    `json:"details,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReportResponse converts a model into a DTO.
func NewReportResponse(report models.Report) ReportResponse {
	return ReportResponse{
		ID:           report.ID,
		ReporterID:   report.ReporterID,
		TargetUserID: report.TargetUserID,
		PostID:       report.PostID,
		CommentID:    report.CommentID,
		Reason:       report.Reason,
		Details:      report.Details,
		Status:       string(report.Status),
		CreatedAt:    report.CreatedAt,
		UpdatedAt:    report.UpdatedAt,
	}
}

// NewReportResponseSlice converts a slice of models into DTOs.
func NewReportResponseSlice(reports []models.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, NewReportResponse(report))
	}
	return out
}

// AdminActionResponse is one audit-trail entry.
type AdminActionResponse struct {
	ID           uint      `json:"id"`
	AdminID      uint      `json:"admin_id"`
	Action       string    `json:"action"`
	TargetUserID *uint     `json:"target_user_id,omitempty"`
	ReportID     *uint     `json:"report_id,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAdminActionResponse converts a model into a DTO.
func NewAdminActionResponse(action models.AdminAction) AdminActionResponse {
	return AdminActionResponse{
		ID:           action.ID,
		AdminID:      action.AdminID,
		Action:       action.Action,
		TargetUserID: action.TargetUserID,
		ReportID:     action.ReportID,
		Notes:        action.Notes,
		CreatedAt:    action.CreatedAt,
	}
}

// NewAdminActionResponseSlice converts a slice of models into DTOs.
func NewAdminActionResponseSlice(actions []models.AdminAction) []AdminActionResponse {
	out := make([]AdminActionResponse, 0, len(actions))
	for _, action := range actions {
		out = append(out, NewAdminActionResponse(action))
	}
	return out
}
