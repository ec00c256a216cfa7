package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/school-portal-api/internal/models"
	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

const statsCacheKey = "stats:overview"

type statsUserRepository interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type statsSubjectRepository interface {
	Count(ctx context.Context) (int, error)
}

type statsEnrollmentRepository interface {
	Count(ctx context.Context) (int, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool)
}

// StatsService aggregates headline counts with a short lived cache in front.
type StatsService struct {
	users       statsUserRepository
	subjects    statsSubjectRepository
	enrollments statsEnrollmentRepository
	cache       statsCache
	cacheTTL    time.Duration
	metrics     cacheMetricsRecorder
	logger      *zap.Logger
}

// NewStatsService creates an instance of StatsService. The cache and metrics
// recorder may be nil.
func NewStatsService(users statsUserRepository, subjects statsSubjectRepository, enrollments statsEnrollmentRepository, cache statsCache, cacheTTL time.Duration, metrics cacheMetricsRecorder, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &StatsService{users: users, subjects: subjects, enrollments: enrollments, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// Overview returns the dashboard counts, served from cache when warm.
func (s *StatsService) Overview(ctx context.Context) (*models.Stats, error) {
	if s.cache != nil {
		var cached models.Stats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			s.recordCache(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
		s.recordCache(false)
	}

	stats := &models.Stats{}
	var err error
	if stats.TotalStudents, err = s.users.CountByRole(ctx, models.RoleStudent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if stats.TotalTeachers, err = s.users.CountByRole(ctx, models.RoleTeacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	if stats.TotalSubjects, err = s.subjects.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subjects")
	}
	if stats.TotalEnrollments, err = s.enrollments.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *StatsService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}
