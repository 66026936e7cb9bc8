package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type ResourcePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResourcePostgreSQL(db *gorm.DB) repositories.ResourceRepository {
	return &ResourcePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ResourcePostgreSQL) Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	if err := r.helpers.Conn(ctx, tx).Create(resource).Error; err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (r *ResourcePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) {
	resource, err := First[models.Resource](r.helpers.Conn(ctx, tx).Preload("Course").Preload("Creator"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource %d: %w", id, err)
	}
	return resource, nil
}

func (r *ResourcePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := r.helpers.UpdateFields(ctx, tx, &models.Resource{}, id, fields); err != nil {
		return fmt.Errorf("failed to update resource %d: %w", id, err)
	}
	return nil
}

func (r *ResourcePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := r.helpers.Conn(ctx, tx).Delete(&models.Resource{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete resource %d: %w", id, err)
	}
	return nil
}

// List pages through resources newest first. Term matches title or description.
func (r *ResourcePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResourceFilters) (*repositories.Page[*models.Resource], error) {
	query := r.helpers.Conn(ctx, tx).Model(&models.Resource{})
	query = scopeIDs(query, "course_id", filters.CourseIDs)
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ActiveOnly {
		query = query.Where("status = ?", models.ResourceActive)
	}
	if filters.Term != "" {
		pattern := likePattern(filters.Term)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	query = query.Order("created_at DESC").Order("id DESC")

	page, err := Paginate[*models.Resource](query, filters.Page, filters.PerPage, repositories.DefaultPageSize, "Course", "Creator")
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return page, nil
}

func (r *ResourcePostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, activeOnly bool) ([]*models.Resource, error) {
	query := r.helpers.Conn(ctx, tx).Preload("Creator").Where("course_id = ?", courseID)
	if activeOnly {
		query = query.Where("status = ?", models.ResourceActive)
	}
	var resources []*models.Resource
	if err := query.Order("sort_order ASC").Order("created_at DESC").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list course resources: %w", err)
	}
	return resources, nil
}
