package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/pkg/moderation"
)

type stubReportRepo struct {
	reports map[uint]*models.Report
	actions []models.AdminAction
	nextID  uint
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{reports: map[uint]*models.Report{}, nextID: 1}
}

func (s *stubReportRepo) Create(ctx context.Context, report *models.Report) error {
	report.ID = s.nextID
	s.nextID++
	copied := *report
	s.reports[report.ID] = &copied
	return nil
}

func (s *stubReportRepo) FindByID(ctx context.Context, id uint) (models.Report, error) {
	if report, ok := s.reports[id]; ok {
		return *report, nil
	}
	return models.Report{}, gorm.ErrRecordNotFound
}

func (s *stubReportRepo) Save(ctx context.Context, report *models.Report) error {
	if _, ok := s.reports[report.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *report
	s.reports[report.ID] = &copied
	return nil
}

func (s *stubReportRepo) ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	var out []models.Report
	for _, report := range s.reports {
		if status != "" && report.Status != status {
			continue
		}
		out = append(out, *report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubReportRepo) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	var count int64
	for _, report := range s.reports {
		if report.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *stubReportRepo) CreateAdminAction(ctx context.Context, action *models.AdminAction) error {
	action.ID = uint(len(s.actions) + 1)
	s.actions = append(s.actions, *action)
	return nil
}

func (s *stubReportRepo) ListAdminActions(ctx context.Context, limit, offset int) ([]models.AdminAction, error) {
	return append([]models.AdminAction(nil), s.actions...), nil
}

type stubScreener struct {
	verdict moderation.Verdict
	err     error
	calls   int
}

func (s *stubScreener) Screen(ctx context.Context, content string) (moderation.Verdict, error) {
	s.calls++
	return s.verdict, s.err
}

func newModerationFixture(screener moderation.Screener, userIDs ...uint) (ModerationService, *stubReportRepo, *stubDispatcher) {
	reports := newStubReportRepo()
	dispatcher := &stubDispatcher{}
	svc := NewModerationService(reports, newStubUserRepo(userIDs...), dispatcher, screener, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc, reports, dispatcher
}

func uintPtr(v uint) *uint { return &v }

func TestFileReportRequiresExactlyOneTarget(t *testing.T) {
	svc, _, _ := newModerationFixture(nil, 1, 2)

	_, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		Reason: "spam",
	})
	require.ErrorIs(t, err, ErrInvalidOperation)

	_, err = svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		TargetUserID: uintPtr(2),
		PostID:       uintPtr(7),
		Reason:       "spam",
	})
	require.ErrorIs(t, err, ErrInvalidOperation)

	report, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		TargetUserID: uintPtr(2),
		Reason:       "spam",
	})
	require.NoError(t, err)
	require.Equal(t, string(models.ReportPending), report.Status)
}

func TestFileReportGuards(t *testing.T) {
	svc, _, _ := newModerationFixture(nil, 1, 2)

	_, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		TargetUserID: uintPtr(1),
		Reason:       "harassment",
	})
	require.ErrorIs(t, err, ErrSelfReference)

	_, err = svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		TargetUserID: uintPtr(99),
		Reason:       "harassment",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileReportRecordsScreeningVerdict(t *testing.T) {
	screener := &stubScreener{verdict: moderation.Verdict{Flagged: true, Labels: []string{"harassment"}, Score: 0.91}}
	svc, reports, _ := newModerationFixture(screener, 1, 2)

	filed, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		TargetUserID: uintPtr(2),
		Reason:       "harassment",
		Details:      "repeated abusive replies",
	})
	require.NoError(t, err)
	require.Equal(t, 1, screener.calls)

	stored := reports.reports[filed.ID]
	require.Equal(t, true, stored.Metadata["screen_flagged"])

	// Without details there is nothing to screen.
	_, err = svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		PostID: uintPtr(7),
		Reason: "spam",
	})
	require.NoError(t, err)
	require.Equal(t, 1, screener.calls)
}

func TestFileReportSurvivesScreenerOutage(t *testing.T) {
	screener := &stubScreener{err: errors.New("provider down")}
	svc, reports, _ := newModerationFixture(screener, 1, 2)

	filed, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		TargetUserID: uintPtr(2),
		Reason:       "spam",
		Details:      "link farm",
	})
	require.NoError(t, err)
	require.Nil(t, reports.reports[filed.ID].Metadata)
}

func TestResolveIsOneWay(t *testing.T) {
	svc, reports, dispatcher := newModerationFixture(nil, 1, 2, 9)

	filed, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		TargetUserID: uintPtr(2),
		Reason:       "spam",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), filed.ID, 9, dto.ReportDecisionRequest{Notes: "removed the content"})
	require.NoError(t, err)
	require.Equal(t, string(models.ReportResolved), resolved.Status)

	// Decided reports cannot be decided again, in either direction.
	_, err = svc.Resolve(context.Background(), filed.ID, 9, dto.ReportDecisionRequest{})
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.Escalate(context.Background(), filed.ID, 9, dto.ReportDecisionRequest{})
	require.ErrorIs(t, err, ErrInvalidState)

	// The audit trail has the decision with the admin and the notes.
	require.Len(t, reports.actions, 1)
	require.Equal(t, "report_resolved", reports.actions[0].Action)
	require.Equal(t, uint(9), reports.actions[0].AdminID)
	require.Equal(t, "removed the content", reports.actions[0].Notes)

	// The reporter hears back.
	require.Len(t, dispatcher.events, 1)
	require.Equal(t, uint(1), dispatcher.events[0].RecipientID)
	require.Equal(t, models.NotificationReportUpdate, dispatcher.events[0].Type)
}

func TestEscalateRecordsAction(t *testing.T) {
	svc, reports, _ := newModerationFixture(nil, 1, 2, 9)

	filed, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{
		PostID: uintPtr(4),
		Reason: "illegal content",
	})
	require.NoError(t, err)

	escalated, err := svc.Escalate(context.Background(), filed.ID, 9, dto.ReportDecisionRequest{})
	require.NoError(t, err)
	require.Equal(t, string(models.ReportEscalated), escalated.Status)
	require.Equal(t, "report_escalated", reports.actions[0].Action)

	_, err = svc.Resolve(context.Background(), 99, 9, dto.ReportDecisionRequest{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListReportsByStatus(t *testing.T) {
	svc, _, _ := newModerationFixture(nil, 1, 2, 9)

	first, err := svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{PostID: uintPtr(1), Reason: "spam"})
	require.NoError(t, err)
	_, err = svc.FileReport(context.Background(), 1, dto.ReportCreateRequest{PostID: uintPtr(2), Reason: "spam"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), first.ID, 9, dto.ReportDecisionRequest{})
	require.NoError(t, err)

	pending, err := svc.ListReports(context.Background(), models.ReportPending, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	actions, err := svc.ListAdminActions(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, actions, 1)
}
