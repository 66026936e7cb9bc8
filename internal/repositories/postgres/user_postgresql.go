package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := u.helpers.Conn(ctx, tx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	user, err := First[models.User](u.helpers.Conn(ctx, tx), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	user, err := First[models.User](
		u.helpers.Conn(ctx, tx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	if _, err := u.helpers.UpdateFields(ctx, tx, &models.User{}, id, fields); err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := u.helpers.Conn(ctx, tx).Delete(&models.User{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete user %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) (*repositories.Page[*models.User], error) {
	query := u.helpers.Conn(ctx, tx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if strings.TrimSpace(filters.Search) != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	query = query.Order("created_at DESC").Order("id DESC")

	page, err := Paginate[*models.User](query, filters.Page, filters.PerPage, repositories.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return page, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID *uint) (bool, error) {
	query := u.helpers.Conn(ctx, tx).
		Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	return u.helpers.Exists(query)
}

func (u *UserPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := u.helpers.Conn(ctx, tx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (u *UserPostgreSQL) CountByRole(ctx context.Context, tx *gorm.DB) (*repositories.RoleCounts, error) {
	var rows []struct {
		Role  models.UserRole
		Total int64
	}
	err := u.helpers.Conn(ctx, tx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}

	counts := &repositories.RoleCounts{}
	for _, row := range rows {
		switch row.Role {
		case models.RoleStudent:
			counts.Students = row.Total
		case models.RoleTeacher:
			counts.Teachers = row.Total
		case models.RoleAdmin:
			counts.Admins = row.Total
		}
	}
	return counts, nil
}

func (u *UserPostgreSQL) CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := u.helpers.Conn(ctx, tx).Model(&models.User{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// CountActiveSince counts users whose enrollments changed since the given time.
func (u *UserPostgreSQL) CountActiveSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := u.helpers.Conn(ctx, tx).
		Model(&models.Enrollment{}).
		Where("updated_at >= ?", since).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (u *UserPostgreSQL) Recent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.User, error) {
	var users []*models.User
	err := u.helpers.Conn(ctx, tx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	return users, nil
}
