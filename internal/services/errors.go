package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/lms-service/internal/errors"
	"gorm.io/gorm"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Lookup errors
	ErrUserNotFound         = errors.New("user not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrGradeNotFound        = errors.New("grade not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrResourceNotFound     = errors.New("additional resource not found")
	ErrMultimediaNotFound   = errors.New("multimedia not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotEnrolled          = errors.New("student is not enrolled in the course")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password does not match")

	// Uniqueness errors
	ErrEnrollmentExists = errors.New("user already enrolled in course")
	ErrSubmissionExists = errors.New("assignment already submitted")
	ErrAttendanceExists = errors.New("attendance already recorded for that date")
	ErrAlreadyHasAccess = errors.New("student already has access to the course")
	ErrAlreadyPaid      = errors.New("course already paid")

	ErrPaymentReferenceUsed = errors.New("payment reference already used")

	// Course access errors
	ErrInvalidInvitationCode = errors.New("invalid invitation code")
	ErrNotAStudent           = errors.New("target user is not a student")

	// Payment errors
	ErrPaymentFailed = errors.New("payment could not be processed")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError builds a single-field ValidationErrors.
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID uint, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// translateWriteError maps a unique violation to conflict and passes everything else through.
func translateWriteError(err error, conflict error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return err
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrGradeNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrAttendanceNotFound) ||
		errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrMultimediaNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrNotEnrolled) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUnauthenticated reports missing or wrong credentials.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidCredentials)
}

// IsForbidden checks if error represents an authorization failure
func IsForbidden(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe) || errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEnrollmentExists) ||
		errors.Is(err, ErrSubmissionExists) ||
		errors.Is(err, ErrAttendanceExists) ||
		errors.Is(err, ErrAlreadyHasAccess) ||
		errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrPaymentReferenceUsed) ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsBadRequest covers client mistakes that are not field validation.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrInvalidInvitationCode) ||
		errors.Is(err, ErrNotAStudent) ||
		errors.Is(err, ErrWrongPassword)
}

func IsPaymentFailed(err error) bool {
	return errors.Is(err, ErrPaymentFailed)
}
