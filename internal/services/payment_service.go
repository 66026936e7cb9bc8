package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/payment"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentService sells access to paid courses.
type PaymentService interface {
	Pay(ctx context.Context, userID, courseID uint, req *PayCourseRequest) (*models.Transaction, error)
	TeacherPayments(ctx context.Context, teacherID uint) ([]*models.Transaction, error)
}

type paymentService struct {
	repo        repositories.Repository
	gateway     payment.Gateway
	courseCache repositories.CourseCacheInvalidator
	notifier    NotificationEventService
	currency    string
	logger      *slog.Logger
	validator   *validator.Validator
	audit       *ServiceLogger
	now         func() time.Time
}

func NewPaymentService(
	repo repositories.Repository,
	gateway payment.Gateway,
	courseCache repositories.CourseCacheInvalidator,
	notifier NotificationEventService,
	currency string,
	logger *slog.Logger,
	validator *validator.Validator,
) PaymentService {
	if currency == "" {
		currency = "MXN"
	}
	return &paymentService{
		repo:        repo,
		gateway:     gateway,
		courseCache: courseCache,
		notifier:    notifier,
		currency:    currency,
		logger:      logger,
		validator:   validator,
		audit:       NewServiceLogger(logger, "payment"),
		now:         time.Now,
	}
}

// Pay charges the course price once and grants access. A pending transaction
// is claimed before the gateway is called, so concurrent attempts for the same
// course fail with ErrAlreadyPaid instead of charging twice. Charges are never
// retried.
func (s *paymentService) Pay(ctx context.Context, userID, courseID uint, req *PayCourseRequest) (*models.Transaction, error) {
	start := time.Now()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	course, err := loadCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	if course.AccessType != models.AccessPaid || course.Price <= 0 {
		return nil, NewBusinessRuleError("course_not_for_sale", "Este curso no requiere pago", map[string]interface{}{
			"curso_id": courseID,
		})
	}

	transaction, err := s.claim(ctx, userID, course, req)
	if err != nil {
		s.audit.LogOperation(ctx, "pay_course", userID, courseID, "course", time.Since(start), err)
		return nil, err
	}

	reference, details, err := s.charge(ctx, userID, course, req)
	if err != nil {
		if markErr := s.repo.Payment().Update(ctx, nil, transaction.ID, map[string]interface{}{
			"status": models.TransactionFailed,
		}); markErr != nil {
			s.logger.ErrorContext(ctx, "Failed to mark transaction as failed",
				"transaction_id", transaction.ID, "error", markErr)
		}
		s.audit.LogOperation(ctx, "pay_course", userID, courseID, "course", time.Since(start), err)
		return nil, err
	}

	paidAt := s.now()
	transaction.Status = models.TransactionCompleted
	transaction.Reference = &reference
	transaction.PaidAt = &paidAt
	transaction.PaymentDetails = details
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		err := s.repo.Payment().Update(ctx, tx, transaction.ID, map[string]interface{}{
			"status":          transaction.Status,
			"reference":       reference,
			"paid_at":         paidAt,
			"payment_details": details,
		})
		if err != nil {
			return translateWriteError(err, ErrPaymentReferenceUsed)
		}
		if err := s.repo.CourseStudent().Upsert(ctx, tx, courseID, userID, models.AccessByPayment); err != nil {
			return fmt.Errorf("failed to grant course access: %w", err)
		}
		_, err = grantEnrollment(ctx, s.repo, tx, courseID, userID, paidAt)
		if errors.Is(err, ErrEnrollmentExists) {
			return nil
		}
		return err
	})
	s.audit.LogOperation(ctx, "pay_course", userID, courseID, "course", time.Since(start), err)
	if err != nil {
		// The charge went through and the claim stays pending until reconciled by hand.
		s.logger.ErrorContext(ctx, "Payment charged but not recorded",
			"user_id", userID,
			"course_id", courseID,
			"transaction_id", transaction.ID,
			"reference", reference,
			"error", err)
		return nil, err
	}

	s.courseCache.InvalidateCourse(ctx, courseID)
	s.courseCache.InvalidateLearner(ctx, userID)
	s.notifier.NotifyPaymentCompleted(ctx, transaction, course)
	return transaction, nil
}

// claim records a pending transaction for the purchase. The partial unique
// index on (user_id, course_id) settles races the existence check misses.
func (s *paymentService) claim(ctx context.Context, userID uint, course *models.Course, req *PayCourseRequest) (*models.Transaction, error) {
	transaction := &models.Transaction{
		UserID:   userID,
		CourseID: course.ID,
		Number:   uuid.NewString(),
		Amount:   course.Price,
		Currency: s.currency,
		Method:   req.Method,
		Status:   models.TransactionPending,
	}
	if req.Method == models.PaymentPayPal {
		orderID := req.PayPalOrderID
		transaction.Reference = &orderID
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if transaction.Reference != nil {
			used, err := s.repo.Payment().ReferenceUsed(ctx, tx, transaction.Method, *transaction.Reference)
			if err != nil {
				return fmt.Errorf("failed to check payment reference: %w", err)
			}
			if used {
				return ErrPaymentReferenceUsed
			}
		}
		active, err := s.repo.Payment().HasActive(ctx, tx, userID, course.ID)
		if err != nil {
			return fmt.Errorf("failed to check payments: %w", err)
		}
		if active {
			return ErrAlreadyPaid
		}
		if err := s.repo.Payment().Create(ctx, tx, transaction); err != nil {
			return translateWriteError(err, ErrAlreadyPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *paymentService) charge(ctx context.Context, userID uint, course *models.Course, req *PayCourseRequest) (string, datatypes.JSON, error) {
	switch req.Method {
	case models.PaymentCard:
		charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
			Amount:      course.Price,
			Source:      req.Token,
			Description: "Pago de curso: " + course.Title,
			UserID:      userID,
			CourseID:    course.ID,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Card charge failed", "user_id", userID, "course_id", course.ID, "error", err)
			return "", nil, ErrPaymentFailed
		}
		details, err := json.Marshal(charge)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode charge: %w", err)
		}
		return charge.ID, datatypes.JSON(details), nil
	case models.PaymentPayPal:
		details, err := json.Marshal(map[string]string{"paypal_order_id": req.PayPalOrderID})
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode paypal order: %w", err)
		}
		return req.PayPalOrderID, datatypes.JSON(details), nil
	default:
		return "", nil, NewValidationError("metodo_pago", "no es válido", req.Method)
	}
}

// TeacherPayments lists completed purchases of the teacher's courses.
func (s *paymentService) TeacherPayments(ctx context.Context, teacherID uint) ([]*models.Transaction, error) {
	ids, err := s.repo.Course().IDsByInstructor(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}
	if len(ids) == 0 {
		return []*models.Transaction{}, nil
	}
	transactions, err := s.repo.Payment().ListCompletedForCourses(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return transactions, nil
}
