package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
	"github.com/daniswara/kumpul-api/pkg/moderation"
)

// ModerationService handles report intake and the admin decision flow.
// Report status moves one way: pending to resolved or escalated.
type ModerationService interface {
	FileReport(ctx context.Context, reporterID uint, payload dto.ReportCreateRequest) (dto.ReportResponse, error)
	GetReport(ctx context.Context, id uint) (dto.ReportResponse, error)
	ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]dto.ReportResponse, error)
	Resolve(ctx context.Context, reportID, adminID uint, payload dto.ReportDecisionRequest) (dto.ReportResponse, error)
	Escalate(ctx context.Context, reportID, adminID uint, payload dto.ReportDecisionRequest) (dto.ReportResponse, error)
	ListAdminActions(ctx context.Context, limit, offset int) ([]dto.AdminActionResponse, error)
}

type moderationService struct {
	reports       repository.ReportRepository
	users         repository.UserRepository
	notifications NotificationDispatcher
	screener      moderation.Screener
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
}

// NewModerationService constructs the moderation service. The screener may be
// nil, in which case reports are filed without advisory screening.
func NewModerationService(
	reports repository.ReportRepository,
	users repository.UserRepository,
	notifications NotificationDispatcher,
	screener moderation.Screener,
	validate *validator.Validate,
	logger zerolog.Logger,
) ModerationService {
	return &moderationService{
		reports:       reports,
		users:         users,
		notifications: notifications,
		screener:      screener,
		validator:     validate,
		logger:        logger.With().Str("component", "moderation_service").Logger(),
		tracer:        otel.Tracer("kumpul.moderation"),
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

func (s *moderationService) FileReport(ctx context.Context, reporterID uint, payload dto.ReportCreateRequest) (dto.ReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ModerationService.FileReport")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.ReportResponse{}, err
	}
	if err := validateReportTarget(payload); err != nil {
		return dto.ReportResponse{}, err
	}
	if payload.TargetUserID != nil {
		if *payload.TargetUserID == reporterID {
			return dto.ReportResponse{}, ErrSelfReference
		}
		if _, err := s.users.FindByID(ctx, *payload.TargetUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ReportResponse{}, ErrNotFound
			}
			return dto.ReportResponse{}, err
		}
	}

	report := models.Report{
		ReporterID:   reporterID,
		TargetUserID: payload.TargetUserID,
		PostID:       payload.PostID,
		CommentID:    payload.CommentID,
		Reason:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason)),
		Details:      strings.TrimSpace(s.sanitizer.Sanitize(payload.Details)),
		Status:       models.ReportPending,
	}

	if s.screener != nil && report.Details != "" {
		verdict, err := s.screener.Screen(ctx, report.Details)
		if err != nil {
			// Screening is advisory. A provider outage never blocks intake.
			s.logger.Warn().Err(err).Msg("content screening unavailable")
		} else {
			report.Metadata = datatypes.JSONMap{
				"screen_flagged": verdict.Flagged,
				"screen_labels":  verdict.Labels,
				"screen_score":   verdict.Score,
			}
		}
	}

	if err := s.reports.Create(ctx, &report); err != nil {
		return dto.ReportResponse{}, err
	}

	s.logger.Info().
		Uint("report_id", report.ID).
		Uint("reporter_id", reporterID).
		Str("reason", report.Reason).
		Msg("report filed")

	return dto.NewReportResponse(report), nil
}

func (s *moderationService) GetReport(ctx context.Context, id uint) (dto.ReportResponse, error) {
	report, err := s.findReport(ctx, id)
	if err != nil {
		return dto.ReportResponse{}, err
	}
	return dto.NewReportResponse(report), nil
}

func (s *moderationService) ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]dto.ReportResponse, error) {
	reports, err := s.reports.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewReportResponseSlice(reports), nil
}

func (s *moderationService) Resolve(ctx context.Context, reportID, adminID uint, payload dto.ReportDecisionRequest) (dto.ReportResponse, error) {
	return s.decide(ctx, reportID, adminID, models.ReportResolved, payload)
}

func (s *moderationService) Escalate(ctx context.Context, reportID, adminID uint, payload dto.ReportDecisionRequest) (dto.ReportResponse, error) {
	return s.decide(ctx, reportID, adminID, models.ReportEscalated, payload)
}

func (s *moderationService) decide(ctx context.Context, reportID, adminID uint, status models.ReportStatus, payload dto.ReportDecisionRequest) (dto.ReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ModerationService.decide")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.ReportResponse{}, err
	}

	report, err := s.findReport(ctx, reportID)
	if err != nil {
		return dto.ReportResponse{}, err
	}
	if report.Status != models.ReportPending {
		return dto.ReportResponse{}, ErrInvalidState
	}

	report.Status = status
	if err := s.reports.Save(ctx, &report); err != nil {
		return dto.ReportResponse{}, err
	}

	notes := strings.TrimSpace(s.sanitizer.Sanitize(payload.Notes))
	action := models.AdminAction{
		AdminID:      adminID,
		Action:       fmt.Sprintf("report_%s", status),
		TargetUserID: report.TargetUserID,
		ReportID:     &report.ID,
		Notes:        notes,
	}
	if err := s.reports.CreateAdminAction(ctx, &action); err != nil {
		// The decision already landed. Losing the audit row is worth an
		// error-level log but not a rollback of the status change.
		s.logger.Error().Err(err).Uint("report_id", report.ID).Msg("failed to record admin action")
	}

	s.dispatchDecision(ctx, report, adminID)

	s.logger.Info().
		Uint("report_id", report.ID).
		Uint("admin_id", adminID).
		Str("status", string(status)).
		Msg("report decided")

	return dto.NewReportResponse(report), nil
}

func (s *moderationService) ListAdminActions(ctx context.Context, limit, offset int) ([]dto.AdminActionResponse, error) {
	actions, err := s.reports.ListAdminActions(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewAdminActionResponseSlice(actions), nil
}

func (s *moderationService) dispatchDecision(ctx context.Context, report models.Report, adminID uint) {
	if s.notifications == nil {
		return
	}
	event := dto.NotificationEvent{
		RecipientID: report.ReporterID,
		ActorID:     &adminID,
		Type:        models.NotificationReportUpdate,
		Message:     fmt.Sprintf("Your report #%d was %s", report.ID, report.Status),
		ReportID:    &report.ID,
	}
	if _, err := s.notifications.Dispatch(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("report_id", report.ID).Msg("failed to dispatch report notification")
	}
}

func (s *moderationService) findReport(ctx context.Context, id uint) (models.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Report{}, ErrNotFound
		}
		return models.Report{}, err
	}
	return report, nil
}

func validateReportTarget(payload dto.ReportCreateRequest) error {
	targets := 0
	if payload.TargetUserID != nil {
		targets++
	}
	if payload.PostID != nil {
		targets++
	}
	if payload.CommentID != nil {
		targets++
	}
	if targets != 1 {
		return ErrInvalidOperation
	}
	return nil
}
