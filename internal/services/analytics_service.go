package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	analyticsMonth = 30 * 24 * time.Hour
	analyticsWeek  = 7 * 24 * time.Hour
)

// AnalyticsService aggregates platform, course and user metrics behind the cache.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*AnalyticsDashboard, error)
	RefreshDashboard(ctx context.Context) (*AnalyticsDashboard, error)
	CourseAnalytics(ctx context.Context, courseID uint) (*CourseAnalytics, error)
	UserAnalytics(ctx context.Context, userID uint) (*UserAnalytics, error)
}

type analyticsService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	collector *metrics.Collector
	logger    *slog.Logger
	cacheLog  utils.Logger
	now       func() time.Time
}

func NewAnalyticsService(repo repositories.Repository, cacheService cache.CacheService, collector *metrics.Collector, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		cache:     cacheService,
		collector: collector,
		logger:    logger,
		cacheLog:  utils.NewSlogLogger(logger),
		now:       time.Now,
	}
}

// ===== DATA STRUCTURES =====

type AnalyticsDashboard struct {
	Users       UserMetrics       `json:"usuarios"`
	Courses     CourseMetrics     `json:"cursos"`
	Enrollments EnrollmentMetrics `json:"inscripciones"`
	Assignments AssignmentMetrics `json:"tareas"`
	Performance metrics.Snapshot  `json:"rendimiento"`
	GeneratedAt time.Time         `json:"generado_en"`
}

type UserMetrics struct {
	Total        int64                   `json:"total"`
	NewThisMonth int64                   `json:"nuevos_este_mes"`
	ActiveMonth  int64                   `json:"activos_este_mes"`
	ByRole       repositories.RoleCounts `json:"distribucion_por_rol"`
}

type CourseMetrics struct {
	Total             int64   `json:"total"`
	Active            int64   `json:"activos"`
	NewThisMonth      int64   `json:"nuevos_este_mes"`
	StudentsPerCourse float64 `json:"promedio_estudiantes_por_curso"`
}

type EnrollmentMetrics struct {
	Total          int64   `json:"total"`
	NewThisMonth   int64   `json:"nuevas_este_mes"`
	Completed      int64   `json:"completadas"`
	CompletionRate float64 `json:"tasa_completacion_porcentual"`
}

type AssignmentMetrics struct {
	Total        int64   `json:"total"`
	Submitted    int64   `json:"entregadas"`
	AverageGrade float64 `json:"promedio_calificacion"`
}

type CourseAnalytics struct {
	Course      CourseInfo            `json:"informacion_curso"`
	Students    CourseStudentMetrics  `json:"metricas_estudiantes"`
	Progress    CourseProgress        `json:"progreso_estudiantes"`
	Assignments CourseAssignmentStats `json:"metricas_tareas"`
	Recent      CourseRecentActivity  `json:"actividad_reciente"`
}

type CourseInfo struct {
	ID             uint    `json:"id"`
	Title          string  `json:"titulo"`
	Enrolled       int64   `json:"estudiantes_inscritos"`
	Active         int64   `json:"estudiantes_activos"`
	Completed      int64   `json:"estudiantes_completados"`
	CompletionRate float64 `json:"tasa_completacion_porcentual"`
}

type CourseStudentMetrics struct {
	Enrolled   int64 `json:"total_inscritos"`
	Active     int64 `json:"activos"`
	Completed  int64 `json:"completados"`
	InProgress int64 `json:"en_progreso"`
}

type CourseProgress struct {
	AverageProgress float64                      `json:"promedio_progreso_porcentual"`
	Distribution    repositories.ProgressBuckets `json:"distribucion_progreso"`
}

type CourseAssignmentStats struct {
	Total        int64   `json:"total_tareas"`
	Submitted    int64   `json:"tareas_entregadas"`
	AverageGrade float64 `json:"promedio_calificacion"`
}

type CourseRecentActivity struct {
	EnrollmentsLastWeek int64 `json:"inscripciones_ultima_semana"`
	SubmissionsLastWeek int64 `json:"entregas_ultima_semana"`
}

type UserAnalytics struct {
	User     UserInfo         `json:"informacion_usuario"`
	Activity AcademicActivity `json:"actividad_academica"`
	Progress AcademicProgress `json:"progreso_academico"`
}

type UserInfo struct {
	ID           uint      `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	Roles        []string  `json:"roles"`
	RegisteredAt time.Time `json:"fecha_registro"`
}

type AcademicActivity struct {
	EnrolledCourses  int64      `json:"cursos_inscritos"`
	CompletedCourses int64      `json:"cursos_completados"`
	Submissions      int64      `json:"tareas_entregadas"`
	AverageGrade     float64    `json:"promedio_calificacion"`
	LastActivity     *time.Time `json:"ultima_actividad"`
}

type AcademicProgress struct {
	AverageProgress  float64 `json:"promedio_progreso_porcentual"`
	InProgress       int64   `json:"cursos_en_progreso"`
	Active           int64   `json:"cursos_activos"`
	CompletedCourses int64   `json:"cursos_completados"`
}

// ===== DASHBOARD =====

func (s *analyticsService) Dashboard(ctx context.Context) (*AnalyticsDashboard, error) {
	return cache.Remember(ctx, s.cache, s.cacheLog, cache.AnalyticsDashboardKey(), cache.DashboardTTL, s.buildDashboard)
}

// RefreshDashboard recomputes the dashboard and overwrites the cached copy.
func (s *analyticsService) RefreshDashboard(ctx context.Context) (*AnalyticsDashboard, error) {
	dashboard, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.AnalyticsDashboardKey(), dashboard, cache.DashboardTTL); err != nil {
		s.logger.WarnContext(ctx, "Failed to store dashboard", "error", err)
	}
	return dashboard, nil
}

func (s *analyticsService) buildDashboard(ctx context.Context) (*AnalyticsDashboard, error) {
	start := time.Now()
	monthAgo := s.now().Add(-analyticsMonth)
	dashboard := &AnalyticsDashboard{GeneratedAt: s.now()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.userMetrics(ctx, monthAgo)
		if err != nil {
			return err
		}
		dashboard.Users = *users
		return nil
	})
	g.Go(func() error {
		courses, err := s.courseMetrics(ctx, monthAgo)
		if err != nil {
			return err
		}
		dashboard.Courses = *courses
		return nil
	})
	g.Go(func() error {
		enrollments, err := s.enrollmentMetrics(ctx, monthAgo)
		if err != nil {
			return err
		}
		dashboard.Enrollments = *enrollments
		return nil
	})
	g.Go(func() error {
		assignments, err := s.assignmentMetrics(ctx)
		if err != nil {
			return err
		}
		dashboard.Assignments = *assignments
		return nil
	})
	g.Go(func() error {
		dashboard.Performance = s.collector.Snapshot()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	s.logger.Debug("Dashboard computed", "duration", time.Since(start))
	return dashboard, nil
}

func (s *analyticsService) userMetrics(ctx context.Context, since time.Time) (*UserMetrics, error) {
	total, err := s.repo.User().Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	created, err := s.repo.User().CountCreatedSince(ctx, nil, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count new users: %w", err)
	}
	active, err := s.repo.User().CountActiveSince(ctx, nil, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	roles, err := s.repo.User().CountByRole(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	return &UserMetrics{Total: total, NewThisMonth: created, ActiveMonth: active, ByRole: *roles}, nil
}

func (s *analyticsService) courseMetrics(ctx context.Context, since time.Time) (*CourseMetrics, error) {
	stats, err := s.repo.Course().GetStatistics(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get course statistics: %w", err)
	}
	created, err := s.repo.Course().CountCreatedSince(ctx, nil, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count new courses: %w", err)
	}
	enrollments, err := s.repo.Enrollment().Counts(ctx, nil, repositories.EnrollmentScope{})
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return &CourseMetrics{
		Total:             stats.TotalCourses,
		Active:            stats.ActiveCourses,
		NewThisMonth:      created,
		StudentsPerCourse: utils.Round2(utils.SafeDiv(float64(enrollments.Active), stats.TotalCourses)),
	}, nil
}

func (s *analyticsService) enrollmentMetrics(ctx context.Context, since time.Time) (*EnrollmentMetrics, error) {
	counts, err := s.repo.Enrollment().Counts(ctx, nil, repositories.EnrollmentScope{})
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	created, err := s.repo.Enrollment().CountSince(ctx, nil, repositories.EnrollmentScope{}, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count new enrollments: %w", err)
	}
	return &EnrollmentMetrics{
		Total:          counts.Total,
		NewThisMonth:   created,
		Completed:      counts.Completed,
		CompletionRate: utils.Percent(counts.Completed, counts.Total),
	}, nil
}

func (s *analyticsService) assignmentMetrics(ctx context.Context) (*AssignmentMetrics, error) {
	total, err := s.repo.Assignment().Count(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	submitted, err := s.repo.Submission().Count(ctx, nil, repositories.SubmissionScope{})
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	avg, err := s.repo.Submission().AverageGrade(ctx, nil, repositories.SubmissionScope{})
	if err != nil {
		return nil, fmt.Errorf("failed to average grades: %w", err)
	}
	return &AssignmentMetrics{Total: total, Submitted: submitted, AverageGrade: avg}, nil
}

// ===== COURSE ANALYTICS =====

func (s *analyticsService) CourseAnalytics(ctx context.Context, courseID uint) (*CourseAnalytics, error) {
	course, err := loadCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	return cache.Remember(ctx, s.cache, s.cacheLog, cache.AnalyticsCourseKey(courseID), cache.CourseAnalyticsTTL,
		func(ctx context.Context) (*CourseAnalytics, error) {
			return s.buildCourseAnalytics(ctx, course)
		})
}

func (s *analyticsService) buildCourseAnalytics(ctx context.Context, course *models.Course) (*CourseAnalytics, error) {
	courseID := course.ID
	scope := repositories.EnrollmentScope{CourseID: &courseID}
	submissions := repositories.SubmissionScope{CourseID: &courseID}
	weekAgo := s.now().Add(-analyticsWeek)

	counts, err := s.repo.Enrollment().Counts(ctx, nil, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	avgProgress, err := s.repo.Enrollment().AverageProgress(ctx, nil, scope)
	if err != nil {
		return nil, err
	}
	buckets, err := s.repo.Enrollment().ProgressBuckets(ctx, nil, scope)
	if err != nil {
		return nil, err
	}
	totalAssignments, err := s.repo.Assignment().Count(ctx, nil, &courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	submitted, err := s.repo.Submission().Count(ctx, nil, submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	avgGrade, err := s.repo.Submission().AverageGrade(ctx, nil, submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to average grades: %w", err)
	}
	recentEnrollments, err := s.repo.Enrollment().CountSince(ctx, nil, scope, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent enrollments: %w", err)
	}
	recentSubmissions, err := s.repo.Submission().CountSince(ctx, nil, submissions, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent submissions: %w", err)
	}

	return &CourseAnalytics{
		Course: CourseInfo{
			ID:             course.ID,
			Title:          course.Title,
			Enrolled:       counts.Total,
			Active:         counts.Active,
			Completed:      counts.Completed,
			CompletionRate: utils.Percent(counts.Completed, counts.Total),
		},
		Students: CourseStudentMetrics{
			Enrolled:   counts.Total,
			Active:     counts.Active,
			Completed:  counts.Completed,
			InProgress: counts.InProgress,
		},
		Progress: CourseProgress{
			AverageProgress: utils.Round2(avgProgress),
			Distribution:    *buckets,
		},
		Assignments: CourseAssignmentStats{
			Total:        totalAssignments,
			Submitted:    submitted,
			AverageGrade: avgGrade,
		},
		Recent: CourseRecentActivity{
			EnrollmentsLastWeek: recentEnrollments,
			SubmissionsLastWeek: recentSubmissions,
		},
	}, nil
}

// ===== USER ANALYTICS =====

func (s *analyticsService) UserAnalytics(ctx context.Context, userID uint) (*UserAnalytics, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return cache.Remember(ctx, s.cache, s.cacheLog, cache.AnalyticsUserKey(userID), cache.UserAnalyticsTTL,
		func(ctx context.Context) (*UserAnalytics, error) {
			return s.buildUserAnalytics(ctx, user)
		})
}

func (s *analyticsService) buildUserAnalytics(ctx context.Context, user *models.User) (*UserAnalytics, error) {
	userID := user.ID
	scope := repositories.EnrollmentScope{UserID: &userID}
	submissions := repositories.SubmissionScope{StudentID: &userID}

	counts, err := s.repo.Enrollment().Counts(ctx, nil, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	submitted, err := s.repo.Submission().Count(ctx, nil, submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	avgGrade, err := s.repo.Submission().AverageGrade(ctx, nil, submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to average grades: %w", err)
	}
	lastActivity, err := s.repo.Enrollment().LastActivity(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	avgProgress, err := s.repo.Enrollment().AverageProgress(ctx, nil, scope)
	if err != nil {
		return nil, err
	}

	return &UserAnalytics{
		User: UserInfo{
			ID:           user.ID,
			Name:         user.Name,
			Email:        user.Email,
			Roles:        user.Roles(),
			RegisteredAt: user.CreatedAt,
		},
		Activity: AcademicActivity{
			EnrolledCourses:  counts.Total,
			CompletedCourses: counts.Completed,
			Submissions:      submitted,
			AverageGrade:     avgGrade,
			LastActivity:     lastActivity,
		},
		Progress: AcademicProgress{
			AverageProgress:  utils.Round2(avgProgress),
			InProgress:       counts.InProgress,
			Active:           counts.Active,
			CompletedCourses: counts.Completed,
		},
	}, nil
}
