package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

// AuthService registers users and exchanges credentials for bearer tokens.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, identity *auth.Identity) error
	CurrentUser(ctx context.Context, userID uint) (*UserResponse, error)

	// ResolveExternalUser matches an SSO account to a local user by email.
	ResolveExternalUser(ctx context.Context, account auth.CasdoorUser) (*models.User, error)
}

type authService struct {
	repo      repositories.Repository
	tokens    *auth.JWTManager
	logger    *slog.Logger
	validator *validator.Validator
	audit     *ServiceLogger
}

func NewAuthService(repo repositories.Repository, tokens *auth.JWTManager, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		logger:    logger,
		validator: validator,
		audit:     NewServiceLogger(logger, "auth"),
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	taken, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, NewValidationError("email", "ya está registrado", req.Email)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Self-registration always yields a student.
	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleStudent,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("email", "ya está registrado", req.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID)
	s.audit.LogAuditEvent(ctx, AuditEventCreate, user.ID, user.ID, "user", "register", nil)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !checkPassword(user.Password, req.Password) {
		var userID uint
		if user != nil {
			userID = user.ID
		}
		s.audit.LogSecurityEvent(ctx, SecurityEventInvalidLogin, userID, "invalid credentials", map[string]interface{}{
			"email": req.Email,
		})
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, identity *auth.Identity) error {
	if identity == nil {
		return ErrUnauthorized
	}
	if err := s.tokens.Revoke(ctx, identity); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("User logged out", "user_id", identity.UserID)
	return nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return NewUserResponse(user), nil
}

func (s *authService) ResolveExternalUser(ctx context.Context, account auth.CasdoorUser) (*models.User, error) {
	email := normalizeEmail(account.Email)
	if email == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	role := models.RoleStudent
	if account.IsAdmin {
		role = models.RoleAdmin
	}
	name := strings.TrimSpace(account.Name)
	if name == "" {
		name = email
	}
	// SSO users never log in with a local password.
	hash, err := hashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	user = &models.User{Name: name, Email: email, Password: hash, Role: role}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.User().GetByEmail(ctx, nil, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("External user provisioned", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{User: NewUserResponse(user), Token: token}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
