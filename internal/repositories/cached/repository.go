package cached

import (
	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

// Repository swaps the course repository of base for its cached decorator.
type Repository struct {
	repositories.Repository
	course *CourseRepository
}

func NewRepository(base repositories.Repository, cacheService cache.CacheService, logger utils.Logger) *Repository {
	return &Repository{
		Repository: base,
		course:     NewCourseRepository(base.Course(), cacheService, logger),
	}
}

func (r *Repository) Course() repositories.CourseRepository {
	return r.course
}

func (r *Repository) CourseCache() repositories.CourseCacheInvalidator {
	return r.course
}
