package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/utils"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{logger: logger.With("service", service)}
}

// ===== OPERATION LOGGING =====

// LogOperation logs the outcome of one operation. Client-side failures log
// at warn or info so that only server faults show up as errors.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, userID uint, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err) || IsBusinessRule(err) || IsBadRequest(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsForbidden(err) || IsUnauthenticated(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		case IsNotFound(err):
			level = slog.LevelInfo
			status = "not_found"
		case IsPaymentFailed(err):
			level = slog.LevelWarn
			status = "payment_failed"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) LogBusinessRuleViolation(ctx context.Context, operation string, userID uint, rule *BusinessRuleError) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("rule", rule.Rule),
		slog.String("message", rule.Message),
	}
	for key, value := range rule.Context {
		attrs = append(attrs, slog.Any("context_"+key, value))
	}
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Business rule violation", attrs...)
}

func (l *ServiceLogger) LogPermissionDenied(ctx context.Context, operation string, permError *PermissionError) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Permission denied",
		slog.String("operation", operation),
		slog.Uint64("user_id", uint64(permError.UserID)),
		slog.Uint64("resource_id", uint64(permError.ResourceID)),
		slog.String("resource_type", permError.Resource),
		slog.String("action", permError.Action),
		slog.String("reason", permError.Reason),
	)
}

// ===== AUDIT AND SECURITY LOGGING =====

type AuditEventType string

const (
	AuditEventCreate AuditEventType = "create"
	AuditEventUpdate AuditEventType = "update"
	AuditEventDelete AuditEventType = "delete"
	AuditEventAccess AuditEventType = "access"
)

type SecurityEventType string

const (
	SecurityEventInvalidLogin       SecurityEventType = "invalid_login"
	SecurityEventPasswordChanged    SecurityEventType = "password_changed"
	SecurityEventPrivilegeEscalated SecurityEventType = "privilege_escalation"
)

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, eventType AuditEventType, userID, resourceID uint, resourceType, action string, metadata map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("event_type", string(eventType)),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("action", action),
		slog.Time("timestamp", time.Now()),
	}
	for key, value := range metadata {
		attrs = append(attrs, slog.Any("meta_"+key, value))
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Audit: %s %s", action, resourceType), attrs...)
}

func (l *ServiceLogger) LogSecurityEvent(ctx context.Context, eventType SecurityEventType, userID uint, description string, metadata map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("security_event", string(eventType)),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("description", description),
	}
	for key, value := range metadata {
		attrs = append(attrs, slog.Any("meta_"+key, value))
	}
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Security: "+description, attrs...)
}

// ===== CONTEXTUAL LOGGER =====

// ContextualLogger wraps one operation and logs its result with timing.
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    uint
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, userID uint) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID uint, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, time.Since(cl.startTime), err)

	if err == nil {
		return
	}
	var businessErr *BusinessRuleError
	var permErr *PermissionError
	switch {
	case errors.As(err, &businessErr):
		cl.logger.LogBusinessRuleViolation(cl.ctx, cl.operation, cl.userID, businessErr)
	case errors.As(err, &permErr):
		cl.logger.LogPermissionDenied(cl.ctx, cl.operation, permErr)
	}
}

func (cl *ContextualLogger) LogAudit(eventType AuditEventType, resourceID uint, resourceType string, metadata map[string]interface{}) {
	cl.logger.LogAuditEvent(cl.ctx, eventType, cl.userID, resourceID, resourceType, cl.operation, metadata)
}
