package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"gorm.io/gorm"
)

// UserService covers admin user management and the student profile.
type UserService interface {
	// Admin
	List(ctx context.Context, filters repositories.UserFilters) (*repositories.Page[*models.User], error)
	GetByID(ctx context.Context, id uint) (*UserResponse, error)
	Create(ctx context.Context, req *CreateUserRequest, adminID uint) (*UserResponse, error)
	Update(ctx context.Context, id uint, req *UpdateUserRequest, adminID uint) (*UserResponse, error)
	Delete(ctx context.Context, id uint, adminID uint) error

	// Profile
	Profile(ctx context.Context, userID uint) (*UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error
}

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	audit     *ServiceLogger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		audit:     NewServiceLogger(logger, "user"),
	}
}

// ===== ADMIN OPERATIONS =====

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*repositories.Page[*models.User], error) {
	filters.Search = strings.TrimSpace(filters.Search)
	if filters.Role != nil && !isValidRole(*filters.Role) {
		return nil, NewValidationError("role", "debe ser un rol válido (student, teacher, admin)", *filters.Role)
	}
	page, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return page, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, adminID uint) (*UserResponse, error) {
	start := time.Now()
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, req.Email, nil); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Password:  hash,
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("email", "ya está registrado", req.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.LogOperation(ctx, "create_user", adminID, user.ID, "user", time.Since(start), nil)
	s.audit.LogAuditEvent(ctx, AuditEventCreate, adminID, user.ID, "user", "create", map[string]interface{}{
		"role": user.Role,
	})
	return NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest, adminID uint) (*UserResponse, error) {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *req.Email, &id); err != nil {
			return nil, err
		}
		fields["email"] = *req.Email
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = req.AvatarURL
	}
	if req.Role != nil && *req.Role != user.Role {
		if user.IsAdmin() {
			if err := s.ensureNotLastAdmin(ctx, "demote"); err != nil {
				return nil, err
			}
		}
		fields["role"] = *req.Role
		s.audit.LogSecurityEvent(ctx, SecurityEventPrivilegeEscalated, adminID, "role changed", map[string]interface{}{
			"target_user_id": id,
			"from":           user.Role,
			"to":             *req.Role,
		})
	}

	if err := s.repo.User().Update(ctx, nil, id, fields); err != nil {
		return nil, translateWriteError(err, NewValidationError("email", "ya está registrado", req.Email))
	}

	s.audit.LogAuditEvent(ctx, AuditEventUpdate, adminID, id, "user", "update", nil)
	return s.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id uint, adminID uint) error {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if err := s.ensureNotLastAdmin(ctx, "delete"); err != nil {
			var rule *BusinessRuleError
			if errors.As(err, &rule) {
				s.audit.LogBusinessRuleViolation(ctx, "delete_user", adminID, rule)
			}
			return err
		}
	}

	deleted, err := s.repo.User().Delete(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.audit.LogAuditEvent(ctx, AuditEventDelete, adminID, id, "user", "delete", nil)
	return nil
}

// ===== PROFILE OPERATIONS =====

func (s *userService) Profile(ctx context.Context, userID uint) (*UserResponse, error) {
	return s.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, req.Email, &userID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":  strings.TrimSpace(req.Name),
		"email": req.Email,
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = req.AvatarURL
	}
	if err := s.repo.User().Update(ctx, nil, userID, fields); err != nil {
		return nil, translateWriteError(err, NewValidationError("email", "ya está registrado", req.Email))
	}
	return s.GetByID(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.Password, req.CurrentPassword) {
		return ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.User().Update(ctx, nil, userID, map[string]interface{}{"password": hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.LogSecurityEvent(ctx, SecurityEventPasswordChanged, userID, "password changed", nil)
	return nil
}

// ===== HELPER METHODS =====

func (s *userService) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, excludeID *uint) error {
	taken, err := s.repo.User().ExistsByEmail(ctx, nil, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return NewValidationError("email", "ya está registrado", email)
	}
	return nil
}

func (s *userService) ensureNotLastAdmin(ctx context.Context, action string) error {
	counts, err := s.repo.User().CountByRole(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if counts.Admins <= 1 {
		return NewBusinessRuleError("last_admin", "No se puede eliminar o degradar al último administrador", map[string]interface{}{
			"action": action,
		})
	}
	return nil
}

func isValidRole(role models.UserRole) bool {
	for _, r := range models.ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
