package cache

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "courses:detail:1", payload{Title: "Go", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "courses:detail:1", &got))
	assert.Equal(t, payload{Title: "Go", Count: 3}, got)

	err := c.Get(ctx, "courses:detail:2", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache().WithClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "analytics:dashboard", payload{Count: 1}, DashboardTTL))

	now = now.Add(DashboardTTL - time.Second)
	var got payload
	require.NoError(t, c.Get(ctx, "analytics:dashboard", &got))

	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, c.Get(ctx, "analytics:dashboard", &got), ErrCacheMiss)
}

func TestMemoryCache_DeletePatternIsNamespaced(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	keys := []string{
		CourseListKey("a"),
		CourseListKey("b"),
		CourseSearchKey("c"),
		CoursePopularKey(5),
		CourseStatsKey(),
		CourseDetailKey(7),
		CourseInstructorKey(3, "x"),
		CourseInstructorKey(4, "y"),
		AnalyticsDashboardKey(),
		AnalyticsUserKey(9),
	}
	for _, k := range keys {
		require.NoError(t, c.Set(ctx, k, 1, time.Minute))
	}

	for _, p := range CourseCollectionPatterns() {
		require.NoError(t, c.DeletePattern(ctx, p))
	}
	require.NoError(t, c.DeletePattern(ctx, CourseInstructorPattern(3)))

	remaining := c.Keys()
	sort.Strings(remaining)
	assert.Equal(t, []string{
		"analytics:dashboard",
		"analytics:user:9",
		"courses:detail:7",
		"courses:instructor:4:y",
	}, remaining)
}

func TestFingerprint_StableAndDistinct(t *testing.T) {
	a := Fingerprint(map[string]interface{}{"nivel": "intermedio"}, "precio", "asc")
	b := Fingerprint(map[string]interface{}{"nivel": "intermedio"}, "precio", "asc")
	c := Fingerprint(map[string]interface{}{"nivel": "avanzado"}, "precio", "asc")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 40)
}

type failingCache struct{ MemoryCache }

func (f *failingCache) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func (f *failingCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	logger := utils.NewDevelopmentLogger()

	t.Run("loads once then serves from cache", func(t *testing.T) {
		c := NewMemoryCache()
		calls := 0
		load := func(context.Context) (payload, error) {
			calls++
			return payload{Title: "stats", Count: calls}, nil
		}

		first, err := Remember(ctx, c, logger, CourseStatsKey(), CourseStatsTTL, load)
		require.NoError(t, err)
		second, err := Remember(ctx, c, logger, CourseStatsKey(), CourseStatsTTL, load)
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Equal(t, first, second)
	})

	t.Run("load errors are not cached", func(t *testing.T) {
		c := NewMemoryCache()
		_, err := Remember(ctx, c, logger, "k", time.Minute, func(context.Context) (int, error) {
			return 0, errors.New("db down")
		})
		require.Error(t, err)
		assert.Empty(t, c.Keys())
	})

	t.Run("cache failure degrades to direct load", func(t *testing.T) {
		c := &failingCache{}
		got, err := Remember(ctx, c, logger, "k", time.Minute, func(context.Context) (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})
}
