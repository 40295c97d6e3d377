package services

import (
	"fmt"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

const analyticsTTL = 5 * time.Minute

// CachedAnalyticsService memoizes analytics responses in redis. Keys carry
// the caller id so one user's scoped numbers never leak to another; error
// results (NoData included) are never cached. Task mutations call Invalidate.
type CachedAnalyticsService struct {
	analytics AnalyticsService
	cache     *cache.RedisCache
}

func NewCachedAnalyticsService(analytics AnalyticsService, cacheInstance *cache.RedisCache) *CachedAnalyticsService {
	return &CachedAnalyticsService{analytics: analytics, cache: cacheInstance}
}

func callerKey(caller models.Caller) string {
	return fmt.Sprintf("%s:%d", caller.Role, caller.ID)
}

func timeKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func (s *CachedAnalyticsService) StatusBreakdown(db *gorm.DB, caller models.Caller, dateFrom, dateTo *time.Time) (Breakdown, error) {
	key := fmt.Sprintf("analytics:statuses:%s:%s:%s", callerKey(caller), timeKey(dateFrom), timeKey(dateTo))

	var cached Breakdown
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	result, err := s.analytics.StatusBreakdown(db, caller, dateFrom, dateTo)
	if err != nil {
		return result, err
	}
	s.cache.Set(key, result, analyticsTTL)
	return result, nil
}

func (s *CachedAnalyticsService) TopicBreakdown(db *gorm.DB, caller models.Caller) (Breakdown, error) {
	key := fmt.Sprintf("analytics:topics:%s", callerKey(caller))

	var cached Breakdown
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	result, err := s.analytics.TopicBreakdown(db, caller)
	if err != nil {
		return result, err
	}
	s.cache.Set(key, result, analyticsTTL)
	return result, nil
}

func (s *CachedAnalyticsService) AssigneeBreakdown(db *gorm.DB, caller models.Caller, includeUnassigned bool) (Breakdown, error) {
	key := fmt.Sprintf("analytics:assignees:%s:%t", callerKey(caller), includeUnassigned)

	var cached Breakdown
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	result, err := s.analytics.AssigneeBreakdown(db, caller, includeUnassigned)
	if err != nil {
		return result, err
	}
	s.cache.Set(key, result, analyticsTTL)
	return result, nil
}

func (s *CachedAnalyticsService) Summary(db *gorm.DB, caller models.Caller) (SummaryReport, error) {
	key := fmt.Sprintf("analytics:summary:%s", callerKey(caller))

	var cached SummaryReport
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	result, err := s.analytics.Summary(db, caller)
	if err != nil {
		return result, err
	}
	s.cache.Set(key, result, analyticsTTL)
	return result, nil
}

func (s *CachedAnalyticsService) Burndown(db *gorm.DB, caller models.Caller, dateFrom, dateTo *time.Time) ([]BurndownPoint, error) {
	key := fmt.Sprintf("analytics:burndown:%s:%s:%s", callerKey(caller), timeKey(dateFrom), timeKey(dateTo))

	var cached []BurndownPoint
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	result, err := s.analytics.Burndown(db, caller, dateFrom, dateTo)
	if err != nil {
		return result, err
	}
	s.cache.Set(key, result, analyticsTTL)
	return result, nil
}

func (s *CachedAnalyticsService) LeadTime(db *gorm.DB, caller models.Caller) (LeadTimeReport, error) {
	key := fmt.Sprintf("analytics:lead_time:%s", callerKey(caller))

	var cached LeadTimeReport
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	result, err := s.analytics.LeadTime(db, caller)
	if err != nil {
		return result, err
	}
	s.cache.Set(key, result, analyticsTTL)
	return result, nil
}

// Invalidate drops every cached analytics entry. Called after any task
// mutation; per-caller invalidation is not worth the bookkeeping because
// admin entries aggregate everyone's tasks.
func (s *CachedAnalyticsService) Invalidate() {
	s.cache.DeletePattern("analytics:*")
}
