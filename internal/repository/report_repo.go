package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

// ReportRepository persists moderation tickets and the admin audit trail.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id uint) (models.Report, error)
	Save(ctx context.Context, report *models.Report) error
	ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error)
	CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error)

	CreateAdminAction(ctx context.Context, action *models.AdminAction) error
	ListAdminActions(ctx context.Context, limit, offset int) ([]models.AdminAction, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs a repository backed by GORM.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uint) (models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func (r *reportRepository) Save(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *reportRepository) ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CreateAdminAction(ctx context.Context, action *models.AdminAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *reportRepository) ListAdminActions(ctx context.Context, limit, offset int) ([]models.AdminAction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var actions []models.AdminAction
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
