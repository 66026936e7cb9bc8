package cached

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"gorm.io/gorm"
)

// CourseRepository is a cache-aside decorator over a database CourseRepository.
// Reads inside a transaction always go to the database.
type CourseRepository struct {
	next   repositories.CourseRepository
	cache  cache.CacheService
	logger utils.Logger
}

func NewCourseRepository(next repositories.CourseRepository, cacheService cache.CacheService, logger utils.Logger) *CourseRepository {
	return &CourseRepository{
		next:   next,
		cache:  cacheService,
		logger: logger,
	}
}

func (r *CourseRepository) ListWithFilters(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error) {
	if tx != nil {
		return r.next.ListWithFilters(ctx, tx, filters)
	}
	key := cache.CourseListKey(cache.Fingerprint(filters))
	return cache.Remember(ctx, r.cache, r.logger, key, cache.CourseListTTL, func(ctx context.Context) (*repositories.Page[*models.Course], error) {
		return r.next.ListWithFilters(ctx, nil, filters)
	})
}

// GetWithRelations caches found courses only, so a course created after a
// miss is visible at once.
func (r *CourseRepository) GetWithRelations(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	if tx != nil {
		return r.next.GetWithRelations(ctx, tx, id)
	}

	key := cache.CourseDetailKey(id)
	var course models.Course
	if err := r.cache.Get(ctx, key, &course); err == nil {
		return &course, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
	}

	found, err := r.next.GetWithRelations(ctx, nil, id)
	if err != nil || found == nil {
		return found, err
	}
	if err := r.cache.Set(ctx, key, found, cache.CourseDetailTTL); err != nil {
		r.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
	return found, nil
}

func (r *CourseRepository) GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error) {
	if tx != nil {
		return r.next.GetByInstructor(ctx, tx, instructorID, filters)
	}
	key := cache.CourseInstructorKey(instructorID, cache.Fingerprint(filters))
	return cache.Remember(ctx, r.cache, r.logger, key, cache.CourseListTTL, func(ctx context.Context) (*repositories.Page[*models.Course], error) {
		return r.next.GetByInstructor(ctx, nil, instructorID, filters)
	})
}

func (r *CourseRepository) GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Course, error) {
	if tx != nil {
		return r.next.GetPopular(ctx, tx, limit)
	}
	if limit <= 0 {
		limit = repositories.PopularCoursesLimit
	}
	return cache.Remember(ctx, r.cache, r.logger, cache.CoursePopularKey(limit), cache.CourseListTTL, func(ctx context.Context) ([]*models.Course, error) {
		return r.next.GetPopular(ctx, nil, limit)
	})
}

func (r *CourseRepository) Search(ctx context.Context, tx *gorm.DB, term string, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error) {
	if tx != nil {
		return r.next.Search(ctx, tx, term, filters)
	}
	key := cache.CourseSearchKey(cache.Fingerprint(term, filters))
	return cache.Remember(ctx, r.cache, r.logger, key, cache.CourseListTTL, func(ctx context.Context) (*repositories.Page[*models.Course], error) {
		return r.next.Search(ctx, nil, term, filters)
	})
}

func (r *CourseRepository) GetStatistics(ctx context.Context, tx *gorm.DB) (*repositories.CourseStatistics, error) {
	if tx != nil {
		return r.next.GetStatistics(ctx, tx)
	}
	return cache.Remember(ctx, r.cache, r.logger, cache.CourseStatsKey(), cache.CourseStatsTTL, func(ctx context.Context) (*repositories.CourseStatistics, error) {
		return r.next.GetStatistics(ctx, nil)
	})
}

func (r *CourseRepository) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := r.next.Create(ctx, tx, course); err != nil {
		return err
	}
	r.invalidate(ctx, course.ID, course.InstructorID)
	return nil
}

// Update drops the views of both the previous and the new instructor.
func (r *CourseRepository) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) (bool, error) {
	before, err := r.next.GetByID(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if before == nil {
		return false, nil
	}

	found, err := r.next.Update(ctx, tx, id, fields)
	if err != nil || !found {
		return found, err
	}

	instructors := []uint{before.InstructorID}
	if next, ok := instructorFromFields(fields); ok && next != before.InstructorID {
		instructors = append(instructors, next)
	}
	r.invalidate(ctx, id, instructors...)
	return true, nil
}

func (r *CourseRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	before, err := r.next.GetByID(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if before == nil {
		return false, nil
	}

	found, err := r.next.Delete(ctx, tx, id)
	if err != nil || !found {
		return found, err
	}
	r.invalidate(ctx, id, before.InstructorID)
	return true, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	return r.next.GetByID(ctx, tx, id)
}

func (r *CourseRepository) ListOwnedWithCounts(ctx context.Context, tx *gorm.DB, instructorID uint) ([]*models.Course, error) {
	return r.next.ListOwnedWithCounts(ctx, tx, instructorID)
}

func (r *CourseRepository) IDsByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint) ([]uint, error) {
	return r.next.IDsByInstructor(ctx, tx, instructorID)
}

func (r *CourseRepository) CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	return r.next.CountCreatedSince(ctx, tx, since)
}

// InvalidateCourse drops every cached view that can include the course.
func (r *CourseRepository) InvalidateCourse(ctx context.Context, courseID uint) {
	course, err := r.next.GetByID(ctx, nil, courseID)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to load course for invalidation", "course_id", courseID, "error", err)
	}
	if course != nil {
		r.invalidate(ctx, courseID, course.InstructorID)
		return
	}
	r.invalidate(ctx, courseID)
}

// InvalidateLearner drops the per-user analytics after the user's enrollments change.
func (r *CourseRepository) InvalidateLearner(ctx context.Context, userID uint) {
	key := cache.AnalyticsUserKey(userID)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.WarnContext(ctx, "Cache invalidation failed", "key", key, "error", err)
	}
}

func (r *CourseRepository) invalidate(ctx context.Context, courseID uint, instructorIDs ...uint) {
	keys := []string{cache.CourseDetailKey(courseID), cache.AnalyticsCourseKey(courseID)}
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.WarnContext(ctx, "Cache invalidation failed", "key", key, "error", err)
		}
	}

	patterns := cache.CourseCollectionPatterns()
	for _, instructorID := range instructorIDs {
		patterns = append(patterns, cache.CourseInstructorPattern(instructorID))
	}
	for _, pattern := range patterns {
		if err := r.cache.DeletePattern(ctx, pattern); err != nil {
			r.logger.WarnContext(ctx, "Cache invalidation failed", "pattern", pattern, "error", err)
		}
	}
}

func instructorFromFields(fields map[string]interface{}) (uint, bool) {
	switch v := fields["instructor_id"].(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	}
	return 0, false
}

var (
	_ repositories.CourseRepository       = (*CourseRepository)(nil)
	_ repositories.CourseCacheInvalidator = (*CourseRepository)(nil)
)
