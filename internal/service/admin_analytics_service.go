package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/repository"
)

// AdminAnalyticsService serves the admin dashboard. Aggregates are cached in
// redis so repeated dashboard loads do not hammer the database.
type AdminAnalyticsService interface {
	Dashboard(ctx context.Context, days int) (dto.DashboardResponse, error)
	InvalidateDashboard(ctx context.Context, days int) error
}

type adminAnalyticsService struct {
	analytics repository.AdminAnalyticsRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAdminAnalyticsService constructs the dashboard service. A zero ttl
// disables caching.
func NewAdminAnalyticsService(analytics repository.AdminAnalyticsRepository, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) AdminAnalyticsService {
	return &adminAnalyticsService{
		analytics: analytics,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "admin_analytics_service").Logger(),
		tracer:    otel.Tracer("kumpul.admin"),
		now:       time.Now,
	}
}

func (s *adminAnalyticsService) Dashboard(ctx context.Context, days int) (dto.DashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AdminAnalyticsService.Dashboard")
	defer span.End()

	if days <= 0 || days > 90 {
		days = 7
	}
	key := dashboardCacheKey(days)

	if cached, ok := s.readCache(ctx, key); ok {
		cached.Cached = true
		return cached, nil
	}

	counts, err := s.analytics.Counts(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	series, err := s.analytics.MessagesPerDay(ctx, days)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		Counts:         counts,
		MessagesPerDay: series,
		GeneratedAt:    s.now().UTC(),
	}

	s.writeCache(ctx, key, response)
	return response, nil
}

func (s *adminAnalyticsService) InvalidateDashboard(ctx context.Context, days int) error {
	if s.redis == nil {
		return nil
	}
	if days <= 0 || days > 90 {
		days = 7
	}
	return s.redis.Del(ctx, dashboardCacheKey(days)).Err()
}

func (s *adminAnalyticsService) readCache(ctx context.Context, key string) (dto.DashboardResponse, bool) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return dto.DashboardResponse{}, false
	}

	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
		}
		return dto.DashboardResponse{}, false
	}

	var response dto.DashboardResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache payload corrupt")
		return dto.DashboardResponse{}, false
	}
	return response, true
}

func (s *adminAnalyticsService) writeCache(ctx context.Context, key string, response dto.DashboardResponse) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache marshal failed")
		return
	}
	if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
}

func dashboardCacheKey(days int) string {
	return fmt.Sprintf("dashboard:admin:%d", days)
}
