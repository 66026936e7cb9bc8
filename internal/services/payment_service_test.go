package services

import (
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func paidCourse(price float64) func(*models.Course) {
	return func(c *models.Course) {
		c.AccessType = models.AccessPaid
		c.Price = price
	}
}

func cardPayment() *PayCourseRequest {
	return &PayCourseRequest{Method: models.PaymentCard, Token: "tok_visa"}
}

func TestPaymentService_PayGrantsAccess(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID, paidCourse(250))

	transaction, err := env.services.Payment().Pay(env.ctx, student.ID, course.ID, cardPayment())
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCompleted, transaction.Status)
	assert.Equal(t, 250.0, transaction.Amount)
	assert.Equal(t, "MXN", transaction.Currency)
	assert.Equal(t, "ch_test_1", transaction.ReferenceValue())
	assert.NotEmpty(t, transaction.Number)

	require.Len(t, env.gateway.requests, 1)
	assert.Equal(t, 250.0, env.gateway.requests[0].Amount)
	assert.Equal(t, "tok_visa", env.gateway.requests[0].Source)

	enrolled, err := env.repo.Enrollment().Exists(env.ctx, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	access, err := env.repo.CourseStudent().Exists(env.ctx, nil, course.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, access)

	assert.Len(t, env.publisher.EventsOfType(events.EventPaymentCompleted), 1)

	payments, err := env.services.Payment().TeacherPayments(env.ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, transaction.Number, payments[0].Number)
}

func TestPaymentService_SecondPaymentConflicts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID, paidCourse(99))

	_, err := env.services.Payment().Pay(env.ctx, student.ID, course.ID, cardPayment())
	require.NoError(t, err)

	_, err = env.services.Payment().Pay(env.ctx, student.ID, course.ID, cardPayment())
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.True(t, IsConflict(err))
	assert.Len(t, env.gateway.requests, 1, "the card must not be charged twice")
}

func TestPaymentService_DeclinedCharge(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.decline = true
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID, paidCourse(120))

	_, err := env.services.Payment().Pay(env.ctx, student.ID, course.ID, cardPayment())
	require.Error(t, err)
	assert.True(t, IsPaymentFailed(err))

	var rows []models.Transaction
	require.NoError(t, env.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TransactionFailed, rows[0].Status)

	enrolled, err := env.repo.Enrollment().Exists(env.ctx, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)
	assert.Empty(t, env.publisher.EventsOfType(events.EventPaymentCompleted))

	env.gateway.decline = false
	transaction, err := env.services.Payment().Pay(env.ctx, student.ID, course.ID, cardPayment())
	require.NoError(t, err, "a failed attempt does not block a new one")
	assert.Equal(t, models.TransactionCompleted, transaction.Status)
}

func TestPaymentService_FreeCourseNotForSale(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)

	_, err := env.services.Payment().Pay(env.ctx, student.ID, course.ID, cardPayment())
	require.Error(t, err)
	assert.True(t, IsBusinessRule(err))
	assert.Empty(t, env.gateway.requests)
}

func TestPaymentService_PayPalSkipsGateway(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID, paidCourse(75))

	transaction, err := env.services.Payment().Pay(env.ctx, student.ID, course.ID, &PayCourseRequest{
		Method:        models.PaymentPayPal,
		PayPalOrderID: "PAYPAL-ORDER-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL-ORDER-1", transaction.ReferenceValue())
	assert.Empty(t, env.gateway.requests)
}

func TestPaymentService_CardRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID, paidCourse(75))

	_, err := env.services.Payment().Pay(env.ctx, student.ID, course.ID, &PayCourseRequest{Method: models.PaymentCard})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPaymentService_ConcurrentPayChargesOnce(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.delay = 50 * time.Millisecond
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID, paidCourse(180))

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.services.Payment().Pay(env.ctx, student.ID, course.ID, cardPayment())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, env.gateway.charges())

	var completed int64
	require.NoError(t, env.db.Model(&models.Transaction{}).
		Where("status = ?", models.TransactionCompleted).
		Count(&completed).Error)
	assert.Equal(t, int64(1), completed)
}

func TestPaymentService_PendingClaimIsUnique(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID, paidCourse(60))

	pending := func() *models.Transaction {
		return &models.Transaction{
			UserID:   student.ID,
			CourseID: course.ID,
			Number:   uuid.NewString(),
			Amount:   60,
			Currency: "MXN",
			Method:   models.PaymentCard,
			Status:   models.TransactionPending,
		}
	}
	require.NoError(t, env.repo.Payment().Create(env.ctx, nil, pending()))
	err := env.repo.Payment().Create(env.ctx, nil, pending())
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPaymentService_PayPalOrderPaysOnce(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	first := env.fx.Course(teacher.ID, paidCourse(75))
	second := env.fx.Course(teacher.ID, paidCourse(90))
	order := &PayCourseRequest{Method: models.PaymentPayPal, PayPalOrderID: "PAYPAL-ORDER-7"}

	_, err := env.services.Payment().Pay(env.ctx, student.ID, first.ID, order)
	require.NoError(t, err)

	_, err = env.services.Payment().Pay(env.ctx, student.ID, second.ID, order)
	assert.ErrorIs(t, err, ErrPaymentReferenceUsed)
	assert.True(t, IsConflict(err))

	enrolled, err := env.repo.Enrollment().Exists(env.ctx, nil, student.ID, second.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)
}
