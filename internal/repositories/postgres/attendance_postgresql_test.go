package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestAttendanceUniquenessAndStatistics(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewAttendancePostgreSQL(db)

	teacher := fx.User(models.RoleTeacher)
	course := fx.Course(teacher.ID)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	statuses := []models.AttendanceStatus{
		models.AttendancePresent,
		models.AttendanceLate,
		models.AttendanceAbsent,
		models.AttendanceExcused,
	}
	var students []*models.User
	for _, status := range statuses {
		student := fx.User(models.RoleStudent)
		students = append(students, student)
		require.NoError(t, repo.Create(ctx, nil, &models.Attendance{
			StudentID:  student.ID,
			CourseID:   course.ID,
			Date:       datatypes.Date(day),
			Status:     status,
			RecorderID: teacher.ID,
		}))
	}

	exists, err := repo.Exists(ctx, nil, students[0].ID, course.ID, day, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, nil, &models.Attendance{
		StudentID:  students[0].ID,
		CourseID:   course.ID,
		Date:       datatypes.Date(day),
		Status:     models.AttendanceAbsent,
		RecorderID: teacher.ID,
	})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	stats, err := repo.Statistics(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.Present)
	assert.Equal(t, int64(1), stats.Late)
	assert.Equal(t, int64(1), stats.Absent)
	assert.Equal(t, int64(1), stats.Excused)
	assert.Equal(t, 50.0, stats.Percentage)
}
