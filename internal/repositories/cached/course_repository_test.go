package cached

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/testutil"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo  *CourseRepository
	cache *cache.MemoryCache
	fx    *testutil.Fixtures
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	f := &fixture{
		fx:  testutil.NewFixtures(t, db),
		now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.cache = cache.NewMemoryCache().WithClock(func() time.Time { return f.now })
	f.repo = NewCourseRepository(postgres.NewCoursePostgreSQL(db), f.cache, utils.NewDiscardLogger())
	return f
}

func TestCachedCourse_StaleWithinTTLFreshAfter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	teacher := f.fx.User(models.RoleTeacher)
	f.fx.Course(teacher.ID)

	first, err := f.repo.ListWithFilters(ctx, nil, repositories.CourseFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Total)

	// Inserted behind the decorator's back, so no invalidation happens.
	f.fx.Course(teacher.ID)

	f.now = f.now.Add(cache.CourseListTTL - time.Second)
	stale, err := f.repo.ListWithFilters(ctx, nil, repositories.CourseFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stale.Total)

	f.now = f.now.Add(2 * time.Second)
	fresh, err := f.repo.ListWithFilters(ctx, nil, repositories.CourseFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Total)
}

func TestCachedCourse_WriteThenReadIsFresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	teacher := f.fx.User(models.RoleTeacher)
	course := f.fx.Course(teacher.ID)

	detail, err := f.repo.GetWithRelations(ctx, nil, course.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	_, err = f.repo.ListWithFilters(ctx, nil, repositories.CourseFilters{})
	require.NoError(t, err)
	_, err = f.repo.GetStatistics(ctx, nil)
	require.NoError(t, err)

	found, err := f.repo.Update(ctx, nil, course.ID, map[string]interface{}{"title": "Updated title"})
	require.NoError(t, err)
	require.True(t, found)

	detail, err = f.repo.GetWithRelations(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", detail.Title)

	list, err := f.repo.ListWithFilters(ctx, nil, repositories.CourseFilters{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Updated title", list.Data[0].Title)

	created := &models.Course{
		Title:        "Second",
		Duration:     30,
		Level:        models.LevelAdvanced,
		Status:       models.CourseActive,
		AccessType:   models.AccessFree,
		InstructorID: teacher.ID,
	}
	require.NoError(t, f.repo.Create(ctx, nil, created))

	stats, err := f.repo.GetStatistics(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCourses)

	deleted, err := f.repo.Delete(ctx, nil, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	gone, err := f.repo.GetWithRelations(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCachedCourse_InvalidationLeavesOtherNamespaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	teacher := f.fx.User(models.RoleTeacher)
	other := f.fx.User(models.RoleTeacher)
	course := f.fx.Course(teacher.ID)

	require.NoError(t, f.cache.Set(ctx, cache.AnalyticsDashboardKey(), 1, time.Hour))
	require.NoError(t, f.cache.Set(ctx, cache.AnalyticsUserKey(7), 1, time.Hour))
	require.NoError(t, f.cache.Set(ctx, cache.AnalyticsCourseKey(course.ID), 1, time.Hour))
	require.NoError(t, f.cache.Set(ctx, cache.CourseInstructorKey(other.ID, "abc"), 1, time.Hour))
	require.NoError(t, f.cache.Set(ctx, cache.CourseInstructorKey(teacher.ID, "abc"), 1, time.Hour))

	f.repo.InvalidateCourse(ctx, course.ID)

	var v int
	assert.NoError(t, f.cache.Get(ctx, cache.AnalyticsDashboardKey(), &v))
	assert.NoError(t, f.cache.Get(ctx, cache.AnalyticsUserKey(7), &v))
	assert.NoError(t, f.cache.Get(ctx, cache.CourseInstructorKey(other.ID, "abc"), &v))
	assert.ErrorIs(t, f.cache.Get(ctx, cache.AnalyticsCourseKey(course.ID), &v), cache.ErrCacheMiss)
	assert.ErrorIs(t, f.cache.Get(ctx, cache.CourseInstructorKey(teacher.ID, "abc"), &v), cache.ErrCacheMiss)
}
