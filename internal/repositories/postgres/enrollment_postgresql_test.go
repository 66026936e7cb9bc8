package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnrollmentCreate_ConcurrentDuplicateIsRejected(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewRepository(db)

	course := fx.Course(fx.User(models.RoleTeacher).ID)
	student := fx.User(models.RoleStudent)

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.WithTransaction(ctx, func(tx *gorm.DB) error {
				return repo.Enrollment().Create(ctx, tx, &models.Enrollment{UserID: student.ID, CourseID: course.ID})
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnrollmentAggregates(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewEnrollmentPostgreSQL(db)

	course := fx.Course(fx.User(models.RoleTeacher).ID)
	for _, progress := range []int{0, 25, 26, 50, 75, 76, 100} {
		fx.Enrollment(fx.User(models.RoleStudent).ID, course.ID, progress)
	}
	scope := repositories.EnrollmentScope{CourseID: &course.ID}

	buckets, err := repo.ProgressBuckets(ctx, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, &repositories.ProgressBuckets{Initial: 2, Basic: 2, Intermediate: 1, Advanced: 2}, buckets)

	counts, err := repo.Counts(ctx, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(7), counts.Total)
	assert.Equal(t, int64(6), counts.Active)
	assert.Equal(t, int64(1), counts.Completed)

	avg, err := repo.AverageProgress(ctx, nil, scope)
	require.NoError(t, err)
	assert.InDelta(t, 50.29, avg, 0.01)

	full, err := repo.CountFullProgress(ctx, nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), full)

	recent, err := repo.CountSince(ctx, nil, scope, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(7), recent)

	empty, err := repo.AverageProgress(ctx, nil, repositories.EnrollmentScope{CourseIDs: []uint{}})
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestEnrollmentLookups(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewEnrollmentPostgreSQL(db)

	teacher := fx.User(models.RoleTeacher)
	student := fx.User(models.RoleStudent)
	first := fx.Course(teacher.ID)
	second := fx.Course(teacher.ID)
	fx.Enrollment(student.ID, first.ID, 10)
	fx.Enrollment(student.ID, second.ID, 100)

	exists, err := repo.Exists(ctx, nil, student.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	missing, err := repo.GetByUserAndCourse(ctx, nil, teacher.ID, first.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ids, err := repo.CourseIDsByUser(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{first.ID, second.ID}, ids)

	list, err := repo.ListByUser(ctx, nil, student.ID, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Course)

	last, err := repo.LastActivity(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.NotNil(t, last)

	none, err := repo.LastActivity(ctx, nil, teacher.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}
