package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/models"
)

// DashboardCounts aggregates the totals shown on the admin dashboard.
type DashboardCounts struct {
	Users            int64 `json:"users"`
	ActiveUsers      int64 `json:"active_users"`
	SuspendedUsers   int64 `json:"suspended_users"`
	Posts            int64 `json:"posts"`
	Messages         int64 `json:"messages"`
	Listings         int64 `json:"listings"`
	PendingReports   int64 `json:"pending_reports"`
	ResolvedReports  int64 `json:"resolved_reports"`
	EscalatedReports int64 `json:"escalated_reports"`
}

// DailyCount is one bucket of a per-day series.
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// AdminAnalyticsRepository runs the aggregation queries behind the dashboard.
type AdminAnalyticsRepository interface {
	Counts(ctx context.Context) (DashboardCounts, error)
	MessagesPerDay(ctx context.Context, days int) ([]DailyCount, error)
}

type adminAnalyticsRepository struct {
	db *gorm.DB
}

// NewAdminAnalyticsRepository constructs a repository backed by GORM.
func NewAdminAnalyticsRepository(db *gorm.DB) AdminAnalyticsRepository {
	return &adminAnalyticsRepository{db: db}
}

func (r *adminAnalyticsRepository) Counts(ctx context.Context) (DashboardCounts, error) {
	var counts DashboardCounts
	db := r.db.WithContext(ctx)

	type countQuery struct {
		target *int64
		run    func() *gorm.DB
	}

	queries := []countQuery{
		{&counts.Users, func() *gorm.DB { return db.Model(&models.User{}) }},
		{&counts.ActiveUsers, func() *gorm.DB {
			return db.Model(&models.User{}).Where("status = ?", models.UserStatusActive)
		}},
		{&counts.SuspendedUsers, func() *gorm.DB {
			return db.Model(&models.User{}).Where("status = ?", models.UserStatusSuspended)
		}},
		{&counts.Posts, func() *gorm.DB { return db.Model(&models.Post{}) }},
		{&counts.Messages, func() *gorm.DB { return db.Model(&models.Message{}) }},
		{&counts.Listings, func() *gorm.DB { return db.Model(&models.MarketplaceItem{}) }},
		{&counts.PendingReports, func() *gorm.DB {
			return db.Model(&models.Report{}).Where("status = ?", models.ReportPending)
		}},
		{&counts.ResolvedReports, func() *gorm.DB {
			return db.Model(&models.Report{}).Where("status = ?", models.ReportResolved)
		}},
		{&counts.EscalatedReports, func() *gorm.DB {
			return db.Model(&models.Report{}).Where("status = ?", models.ReportEscalated)
		}},
	}

	for _, q := range queries {
		if err := q.run().Count(q.target).Error; err != nil {
			return DashboardCounts{}, err
		}
	}

	return counts, nil
}

func (r *adminAnalyticsRepository) MessagesPerDay(ctx context.Context, days int) ([]DailyCount, error) {
	if days <= 0 || days > 90 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("sent_at >= ?", since).
		Order("sent_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	// Bucketing in Go keeps the query portable between postgres and the
	// sqlite test driver, which disagree on date truncation syntax.
	buckets := make(map[string]int64, days)
	order := make([]string, 0, days)
	for _, m := range messages {
		day := m.SentAt.UTC().Format("2006-01-02")
		if _, seen := buckets[day]; !seen {
			order = append(order, day)
		}
		buckets[day]++
	}

	series := make([]DailyCount, 0, len(order))
	for _, day := range order {
		series = append(series, DailyCount{Day: day, Count: buckets[day]})
	}
	return series, nil
}
