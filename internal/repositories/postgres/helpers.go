package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

// courseSortColumns whitelists the sortable course columns by their public name.
var courseSortColumns = map[string]string{
	"titulo":     "title",
	"title":      "title",
	"precio":     "price",
	"price":      "price",
	"duracion":   "duration",
	"duration":   "duration",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// SharedHelpers holds the query fragments reused across repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// Conn returns tx when the caller is inside a transaction, otherwise the pool.
func (h *SharedHelpers) Conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return h.db.WithContext(ctx)
}

// ApplyCourseFilters adds one predicate per supplied filter. The column prefix
// lets callers use the query on aliased tables.
func (h *SharedHelpers) ApplyCourseFilters(query *gorm.DB, prefix string, filters repositories.CourseFilters) *gorm.DB {
	col := func(name string) string { return prefix + name }

	if filters.Level != nil {
		query = query.Where(col("level")+" = ?", *filters.Level)
	}
	if filters.Status != nil {
		query = query.Where(col("status")+" = ?", *filters.Status)
	}
	if filters.InstructorID != nil {
		query = query.Where(col("instructor_id")+" = ?", *filters.InstructorID)
	}
	if filters.PriceMin != nil {
		query = query.Where(col("price")+" >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where(col("price")+" <= ?", *filters.PriceMax)
	}
	if filters.DurationMin != nil {
		query = query.Where(col("duration")+" >= ?", *filters.DurationMin)
	}
	if filters.DurationMax != nil {
		query = query.Where(col("duration")+" <= ?", *filters.DurationMax)
	}
	if filters.DateFrom != nil {
		query = query.Where(col("created_at")+" >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where(col("created_at")+" <= ?", *filters.DateTo)
	}
	return query
}

// ApplyCourseSort orders by a whitelisted column, newest first by default.
// The id tiebreak keeps pagination stable.
func (h *SharedHelpers) ApplyCourseSort(query *gorm.DB, prefix, sortBy, sortOrder string) *gorm.DB {
	column, ok := courseSortColumns[strings.ToLower(sortBy)]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return query.Order(fmt.Sprintf("%s%s %s", prefix, column, direction)).
		Order(fmt.Sprintf("%sid %s", prefix, direction))
}

// Paginate counts the query then fetches one page. Preloads are applied to
// the page fetch only.
func Paginate[T any](query *gorm.DB, page, perPage, defaultSize int, preloads ...string) (*repositories.Page[T], error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	page, perPage, offset := repositories.Normalize(page, perPage, defaultSize)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	var rows []T
	if err := query.Offset(offset).Limit(perPage).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	return repositories.NewPage(rows, total, page, perPage), nil
}

// First loads one row and maps "not found" to (nil, nil).
func First[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	err := query.First(&row, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (h *SharedHelpers) Exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields applies a partial update to the row with the given id and
// reports whether the row existed.
func (h *SharedHelpers) UpdateFields(ctx context.Context, tx *gorm.DB, model interface{}, id uint, fields map[string]interface{}) (bool, error) {
	conn := h.Conn(ctx, tx)
	var count int64
	if err := conn.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	if len(fields) == 0 {
		return true, nil
	}
	if err := conn.Model(model).Where("id = ?", id).Updates(fields).Error; err != nil {
		return false, err
	}
	return true, nil
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE.
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// scopeIDs restricts a query to ids when ids is non-nil. An empty non-nil
// slice matches nothing.
func scopeIDs(query *gorm.DB, column string, ids []uint) *gorm.DB {
	if ids == nil {
		return query
	}
	if len(ids) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where(column+" IN ?", ids)
}

// activeCourses is the catalog scope for public listings.
func activeCourses(query *gorm.DB, prefix string) *gorm.DB {
	return query.Where(prefix+"status = ?", models.CourseActive)
}
