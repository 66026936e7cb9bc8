package postgres

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseListWithFilters_ReturnsMatchingActiveSubset(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewCoursePostgreSQL(db)

	alice := fx.User(models.RoleTeacher)
	bob := fx.User(models.RoleTeacher)

	fx.Course(alice.ID, func(c *models.Course) { c.Price = 50; c.Level = models.LevelBeginner })
	fx.Course(alice.ID, func(c *models.Course) { c.Price = 150; c.Level = models.LevelAdvanced })
	fx.Course(alice.ID, func(c *models.Course) { c.Price = 80; c.Status = models.CourseDraft })
	fx.Course(bob.ID, func(c *models.Course) { c.Price = 120; c.Level = models.LevelBeginner })
	fx.Course(bob.ID, func(c *models.Course) { c.Price = 20; c.Duration = 300 })

	level := models.LevelBeginner
	minPrice, maxPrice := 30.0, 130.0
	draft := models.CourseDraft

	tests := []struct {
		name    string
		filters repositories.CourseFilters
		match   func(*models.Course) bool
	}{
		{
			name:    "no filters",
			filters: repositories.CourseFilters{},
			match:   func(*models.Course) bool { return true },
		},
		{
			name:    "level",
			filters: repositories.CourseFilters{Level: &level},
			match:   func(c *models.Course) bool { return c.Level == level },
		},
		{
			name:    "instructor and price range",
			filters: repositories.CourseFilters{InstructorID: &bob.ID, PriceMin: &minPrice, PriceMax: &maxPrice},
			match: func(c *models.Course) bool {
				return c.InstructorID == bob.ID && c.Price >= minPrice && c.Price <= maxPrice
			},
		},
		{
			name:    "status filter cannot widen the catalog",
			filters: repositories.CourseFilters{Status: &draft},
			match:   func(*models.Course) bool { return true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.ListWithFilters(ctx, nil, tt.filters)
			require.NoError(t, err)

			var all []*models.Course
			require.NoError(t, db.Find(&all).Error)
			expected := 0
			for _, c := range all {
				if c.Status == models.CourseActive && tt.match(c) {
					expected++
				}
			}

			assert.Equal(t, int64(expected), page.Total)
			for _, c := range page.Data {
				assert.Equal(t, models.CourseActive, c.Status)
				assert.True(t, tt.match(c), "course %d does not match", c.ID)
			}
		})
	}
}

func TestCourseListWithFilters_SortsAndPaginates(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewCoursePostgreSQL(db)

	teacher := fx.User(models.RoleTeacher)
	for i := 1; i <= 14; i++ {
		price := float64(i * 10)
		fx.Course(teacher.ID, func(c *models.Course) { c.Price = price })
	}

	page, err := repo.ListWithFilters(ctx, nil, repositories.CourseFilters{SortBy: "precio", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Data, repositories.DefaultCoursePageSize)
	assert.Equal(t, int64(14), page.Total)
	assert.Equal(t, 2, page.LastPage)
	for i := 1; i < len(page.Data); i++ {
		assert.LessOrEqual(t, page.Data[i-1].Price, page.Data[i].Price)
	}

	second, err := repo.ListWithFilters(ctx, nil, repositories.CourseFilters{SortBy: "precio", SortOrder: "asc", Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Data, 2)
	assert.Equal(t, 140.0, second.Data[1].Price)
}

func TestCourseGetWithRelations(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewCoursePostgreSQL(db)

	teacher := fx.User(models.RoleTeacher)
	student := fx.User(models.RoleStudent)
	course := fx.Course(teacher.ID)
	fx.Lesson(course.ID, 2, models.LessonActive)
	fx.Lesson(course.ID, 1, models.LessonActive)
	fx.Enrollment(student.ID, course.ID, 40)

	got, err := repo.GetWithRelations(ctx, nil, course.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Instructor)
	assert.Equal(t, teacher.ID, got.Instructor.ID)
	require.Len(t, got.Lessons, 2)
	assert.Equal(t, 1, got.Lessons[0].Order)
	require.Len(t, got.Enrollments, 1)
	require.NotNil(t, got.Enrollments[0].User)
	assert.Equal(t, student.ID, got.Enrollments[0].User.ID)
	assert.Equal(t, int64(1), got.EnrollmentCount)

	missing, err := repo.GetWithRelations(ctx, nil, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCourseGetPopularAndSearch(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewCoursePostgreSQL(db)

	teacher := fx.User(models.RoleTeacher)
	quiet := fx.Course(teacher.ID, func(c *models.Course) { c.Title = "Intro to Rust" })
	busy := fx.Course(teacher.ID, func(c *models.Course) { c.Title = "Advanced GO patterns" })
	hidden := fx.Course(teacher.ID, func(c *models.Course) { c.Title = "Go drafts"; c.Status = models.CourseDraft })
	for i := 0; i < 3; i++ {
		fx.Enrollment(fx.User(models.RoleStudent).ID, busy.ID, 0)
	}
	fx.Enrollment(fx.User(models.RoleStudent).ID, quiet.ID, 0)
	fx.Enrollment(fx.User(models.RoleStudent).ID, hidden.ID, 0)

	popular, err := repo.GetPopular(ctx, nil, 5)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, busy.ID, popular[0].ID)
	assert.Equal(t, int64(3), popular[0].EnrollmentCount)

	found, err := repo.Search(ctx, nil, "go", repositories.CourseFilters{})
	require.NoError(t, err)
	require.Len(t, found.Data, 1)
	assert.Equal(t, busy.ID, found.Data[0].ID)
}

func TestCourseStatistics(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewCoursePostgreSQL(db)

	teacher := fx.User(models.RoleTeacher)
	a := fx.Course(teacher.ID)
	fx.Course(teacher.ID, func(c *models.Course) { c.Status = models.CourseInactive })
	fx.Course(teacher.ID, func(c *models.Course) { c.Status = models.CourseDraft })
	fx.Enrollment(fx.User(models.RoleStudent).ID, a.ID, 0)
	fx.Enrollment(fx.User(models.RoleStudent).ID, a.ID, 0)

	stats, err := repo.GetStatistics(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalCourses)
	assert.Equal(t, int64(1), stats.ActiveCourses)
	assert.Equal(t, int64(1), stats.InactiveCourses)
	assert.Equal(t, int64(1), stats.DraftCourses)
	assert.Equal(t, 0.67, stats.AverageStudents)
	assert.Equal(t, int64(2), stats.CoursesWithoutStudent)
}

func TestCourseUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewCoursePostgreSQL(db)

	teacher := fx.User(models.RoleTeacher)
	student := fx.User(models.RoleStudent)
	course := fx.Course(teacher.ID)
	fx.Lesson(course.ID, 1, models.LessonActive)
	assignment := fx.Assignment(course.ID, course.CreatedAt.AddDate(0, 0, 7))
	fx.Submission(assignment.ID, student.ID, nil)
	fx.Enrollment(student.ID, course.ID, 10)

	found, err := repo.Update(ctx, nil, course.ID, map[string]interface{}{"title": "Renamed"})
	require.NoError(t, err)
	assert.True(t, found)

	got, err := repo.GetByID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	found, err = repo.Update(ctx, nil, 9999, map[string]interface{}{"title": "x"})
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := repo.Delete(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var remaining int64
	db.Model(&models.Submission{}).Count(&remaining)
	assert.Zero(t, remaining)
	db.Model(&models.Enrollment{}).Count(&remaining)
	assert.Zero(t, remaining)

	deleted, err = repo.Delete(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
