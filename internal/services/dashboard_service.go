package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"golang.org/x/sync/errgroup"
)

const dashboardListSize = 5

// DashboardService builds the role specific home screens.
type DashboardService interface {
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
	AdminStats(ctx context.Context) (*AdminStats, error)

	TeacherDashboard(ctx context.Context, teacherID uint) (*TeacherDashboard, error)
	TeacherCourses(ctx context.Context, teacherID uint) ([]*models.Course, error)
	TeacherCourseStudents(ctx context.Context, actor Actor, courseID uint) ([]*CourseStudentRow, error)
	TeacherCourseStatistics(ctx context.Context, actor Actor, courseID uint) (*TeacherCourseStatistics, error)

	StudentDashboard(ctx context.Context, studentID uint) (*StudentDashboard, error)
	StudentCourses(ctx context.Context, studentID uint) ([]*StudentCourse, error)
	StudentGrades(ctx context.Context, studentID uint) ([]*StudentCourseGrades, error)
}

type dashboardService struct {
	repo        repositories.Repository
	assignments AssignmentService
	logger      *slog.Logger
	now         func() time.Time
}

func NewDashboardService(repo repositories.Repository, assignments AssignmentService, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:        repo,
		assignments: assignments,
		logger:      logger,
		now:         time.Now,
	}
}

// ===== DATA STRUCTURES =====

type AdminTotals struct {
	Users       int64 `json:"total_usuarios"`
	Teachers    int64 `json:"total_profesores"`
	Students    int64 `json:"total_estudiantes"`
	Courses     int64 `json:"total_cursos"`
	Enrollments int64 `json:"total_inscripciones"`
	Lessons     int64 `json:"total_lecciones"`
	Assignments int64 `json:"total_tareas"`
	Submissions int64 `json:"total_entregas"`
}

type AdminDashboard struct {
	Stats          AdminTotals      `json:"stats"`
	RecentUsers    []*models.User   `json:"recent_users"`
	PopularCourses []*models.Course `json:"popular_courses"`
}

type AdminStats struct {
	Users struct {
		Total        int64                   `json:"total"`
		ByRole       repositories.RoleCounts `json:"por_rol"`
		NewThisMonth int64                   `json:"nuevos_este_mes"`
	} `json:"usuarios"`
	Courses struct {
		Total        int64 `json:"total"`
		Active       int64 `json:"activos"`
		WithStudents int64 `json:"con_estudiantes"`
	} `json:"cursos"`
	Enrollments struct {
		Total     int64 `json:"total"`
		ThisMonth int64 `json:"este_mes"`
	} `json:"inscripciones"`
	Activity struct {
		LessonsCreated      int64 `json:"lecciones_creadas"`
		AssignmentsCreated  int64 `json:"tareas_creadas"`
		SubmissionsReceived int64 `json:"entregas_recibidas"`
	} `json:"actividad"`
}

type TeacherDashboard struct {
	Courses []*models.Course `json:"cursos"`
	Stats   struct {
		Students int64 `json:"total_estudiantes"`
		Courses  int64 `json:"total_cursos"`
		Lessons  int64 `json:"total_lecciones"`
	} `json:"estadisticas"`
}

type CourseStudentRow struct {
	ID         uint                    `json:"id"`
	Name       string                  `json:"name"`
	Email      string                  `json:"email"`
	Progress   int                     `json:"progreso"`
	Status     models.EnrollmentStatus `json:"estado"`
	EnrolledAt time.Time               `json:"fecha_inscripcion"`
}

type TeacherCourseStatistics struct {
	TotalStudents   int64   `json:"total_estudiantes"`
	ActiveStudents  int64   `json:"estudiantes_activos"`
	AverageProgress float64 `json:"promedio_progreso"`
	TotalLessons    int64   `json:"total_lecciones"`
	ActiveLessons   int64   `json:"lecciones_activas"`
}

type StudentDashboard struct {
	Stats struct {
		TotalCourses       int64   `json:"total_cursos"`
		CompletedCourses   int64   `json:"cursos_completados"`
		PendingAssignments int     `json:"tareas_pendientes"`
		OverallAverage     float64 `json:"promedio_general"`
	} `json:"estadisticas"`
	RecentCourses []*models.Enrollment `json:"cursos_recientes"`
}

type StudentCourse struct {
	ID                 uint                    `json:"id"`
	Name               string                  `json:"nombre"`
	Description        string                  `json:"descripcion"`
	ImageURL           *string                 `json:"imagen"`
	Teacher            string                  `json:"profesor"`
	Progress           int                     `json:"progreso"`
	Grade              float64                 `json:"calificacion"`
	PendingAssignments int                     `json:"tareas_pendientes"`
	Status             models.EnrollmentStatus `json:"estado"`
}

type StudentCourseGrades struct {
	CourseID    uint            `json:"curso_id"`
	CourseName  string          `json:"curso_nombre"`
	Average     float64         `json:"promedio"`
	Assignments int64           `json:"total_tareas"`
	Grades      []*GradedHandIn `json:"calificaciones"`
}

type GradedHandIn struct {
	Assignment      string    `json:"tarea"`
	Grade           float64   `json:"calificacion"`
	SubmittedAt     time.Time `json:"fecha"`
	TeacherComments *string   `json:"comentarios_profesor"`
}

// ===== ADMIN =====

func (s *dashboardService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	dashboard := &AdminDashboard{}
	totals := &dashboard.Stats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals.Users, err = s.repo.User().Count(ctx, nil)
		return err
	})
	g.Go(func() error {
		roles, err := s.repo.User().CountByRole(ctx, nil)
		if err != nil {
			return err
		}
		totals.Teachers, totals.Students = roles.Teachers, roles.Students
		return nil
	})
	g.Go(func() error {
		stats, err := s.repo.Course().GetStatistics(ctx, nil)
		if err != nil {
			return err
		}
		totals.Courses = stats.TotalCourses
		return nil
	})
	g.Go(func() error {
		counts, err := s.repo.Enrollment().Counts(ctx, nil, repositories.EnrollmentScope{})
		if err != nil {
			return err
		}
		totals.Enrollments = counts.Total
		return nil
	})
	g.Go(func() error {
		var err error
		totals.Lessons, err = s.repo.Lesson().Count(ctx, nil, nil, nil)
		return err
	})
	g.Go(func() error {
		var err error
		totals.Assignments, err = s.repo.Assignment().Count(ctx, nil, nil)
		return err
	})
	g.Go(func() error {
		var err error
		totals.Submissions, err = s.repo.Submission().Count(ctx, nil, repositories.SubmissionScope{})
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.RecentUsers, err = s.repo.User().Recent(ctx, nil, dashboardListSize)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.PopularCourses, err = s.repo.Course().GetPopular(ctx, nil, dashboardListSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build admin dashboard: %w", err)
	}
	return dashboard, nil
}

// AdminStats reports platform counters; "this month" is the last 30 days.
func (s *dashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	since := s.now().Add(-analyticsMonth)
	stats := &AdminStats{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.repo.User().Count(ctx, nil)
		if err != nil {
			return err
		}
		roles, err := s.repo.User().CountByRole(ctx, nil)
		if err != nil {
			return err
		}
		created, err := s.repo.User().CountCreatedSince(ctx, nil, since)
		if err != nil {
			return err
		}
		stats.Users.Total, stats.Users.ByRole, stats.Users.NewThisMonth = total, *roles, created
		return nil
	})
	g.Go(func() error {
		courses, err := s.repo.Course().GetStatistics(ctx, nil)
		if err != nil {
			return err
		}
		stats.Courses.Total = courses.TotalCourses
		stats.Courses.Active = courses.ActiveCourses
		stats.Courses.WithStudents = courses.TotalCourses - courses.CoursesWithoutStudent
		return nil
	})
	g.Go(func() error {
		counts, err := s.repo.Enrollment().Counts(ctx, nil, repositories.EnrollmentScope{})
		if err != nil {
			return err
		}
		recent, err := s.repo.Enrollment().CountSince(ctx, nil, repositories.EnrollmentScope{}, since)
		if err != nil {
			return err
		}
		stats.Enrollments.Total, stats.Enrollments.ThisMonth = counts.Total, recent
		return nil
	})
	g.Go(func() error {
		lessons, err := s.repo.Lesson().CountCreatedSince(ctx, nil, since)
		if err != nil {
			return err
		}
		assignments, err := s.repo.Assignment().CountCreatedSince(ctx, nil, since)
		if err != nil {
			return err
		}
		submissions, err := s.repo.Submission().CountSince(ctx, nil, repositories.SubmissionScope{}, since)
		if err != nil {
			return err
		}
		stats.Activity.LessonsCreated = lessons
		stats.Activity.AssignmentsCreated = assignments
		stats.Activity.SubmissionsReceived = submissions
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build admin stats: %w", err)
	}
	return stats, nil
}

// ===== TEACHER =====

func (s *dashboardService) TeacherDashboard(ctx context.Context, teacherID uint) (*TeacherDashboard, error) {
	courses, err := s.TeacherCourses(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	dashboard := &TeacherDashboard{Courses: courses}
	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
		dashboard.Stats.Lessons += c.LessonCount
	}
	dashboard.Stats.Courses = int64(len(courses))

	students, err := s.repo.Enrollment().CountDistinctStudents(ctx, nil, repositories.EnrollmentScope{CourseIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	dashboard.Stats.Students = students
	return dashboard, nil
}

func (s *dashboardService) TeacherCourses(ctx context.Context, teacherID uint) ([]*models.Course, error) {
	courses, err := s.repo.Course().ListOwnedWithCounts(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher courses: %w", err)
	}
	return courses, nil
}

func (s *dashboardService) TeacherCourseStudents(ctx context.Context, actor Actor, courseID uint) ([]*CourseStudentRow, error) {
	if _, err := authorizeCourse(ctx, s.repo, actor, courseID, "list_students"); err != nil {
		return nil, err
	}
	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	rows := make([]*CourseStudentRow, 0, len(enrollments))
	for _, e := range enrollments {
		if e.User == nil {
			continue
		}
		rows = append(rows, &CourseStudentRow{
			ID:         e.User.ID,
			Name:       e.User.Name,
			Email:      e.User.Email,
			Progress:   e.Progress,
			Status:     e.Status,
			EnrolledAt: e.EnrolledAt,
		})
	}
	return rows, nil
}

func (s *dashboardService) TeacherCourseStatistics(ctx context.Context, actor Actor, courseID uint) (*TeacherCourseStatistics, error) {
	if _, err := authorizeCourse(ctx, s.repo, actor, courseID, "course_statistics"); err != nil {
		return nil, err
	}
	scope := repositories.EnrollmentScope{CourseID: &courseID}
	counts, err := s.repo.Enrollment().Counts(ctx, nil, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	avg, err := s.repo.Enrollment().AverageProgress(ctx, nil, scope)
	if err != nil {
		return nil, err
	}
	ids := []uint{courseID}
	lessons, err := s.repo.Lesson().Count(ctx, nil, ids, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}
	active := models.LessonActive
	activeLessons, err := s.repo.Lesson().Count(ctx, nil, ids, &active)
	if err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}

	return &TeacherCourseStatistics{
		TotalStudents:   counts.Total,
		ActiveStudents:  counts.Active,
		AverageProgress: utils.Round2(avg),
		TotalLessons:    lessons,
		ActiveLessons:   activeLessons,
	}, nil
}

// ===== STUDENT =====

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID uint) (*StudentDashboard, error) {
	scope := repositories.EnrollmentScope{UserID: &studentID}
	dashboard := &StudentDashboard{}

	counts, err := s.repo.Enrollment().Counts(ctx, nil, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	dashboard.Stats.TotalCourses = counts.Total
	if dashboard.Stats.CompletedCourses, err = s.repo.Enrollment().CountFullProgress(ctx, nil, scope); err != nil {
		return nil, fmt.Errorf("failed to count completed courses: %w", err)
	}
	pending, err := s.assignments.PendingForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	dashboard.Stats.PendingAssignments = len(pending)
	if dashboard.Stats.OverallAverage, err = s.repo.Submission().AverageGrade(ctx, nil, repositories.SubmissionScope{StudentID: &studentID}); err != nil {
		return nil, err
	}
	if dashboard.RecentCourses, err = s.repo.Enrollment().ListByUser(ctx, nil, studentID, dashboardListSize); err != nil {
		return nil, fmt.Errorf("failed to list recent enrollments: %w", err)
	}
	return dashboard, nil
}

// StudentCourses lists enrolled courses with stored progress, the graded
// submission average and the count of open assignments.
func (s *dashboardService) StudentCourses(ctx context.Context, studentID uint) ([]*StudentCourse, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, nil, studentID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	averages, err := s.repo.Submission().GradedAverageByCourse(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}
	pending, err := s.assignments.PendingForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	gradeByCourse := make(map[uint]float64, len(averages))
	for _, a := range averages {
		gradeByCourse[a.CourseID] = a.Average
	}
	now := s.now()
	pendingByCourse := make(map[uint]int)
	for _, p := range pending {
		if p.DueAt.After(now) {
			pendingByCourse[p.CourseID]++
		}
	}

	courses := make([]*StudentCourse, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course == nil {
			continue
		}
		row := &StudentCourse{
			ID:                 e.Course.ID,
			Name:               e.Course.Title,
			Description:        e.Course.Description,
			ImageURL:           e.Course.ImageURL,
			Teacher:            "Sin asignar",
			Progress:           e.Progress,
			Grade:              gradeByCourse[e.Course.ID],
			PendingAssignments: pendingByCourse[e.Course.ID],
			Status:             e.Status,
		}
		if e.Course.Instructor != nil {
			row.Teacher = e.Course.Instructor.Name
		}
		courses = append(courses, row)
	}
	return courses, nil
}

// StudentGrades groups graded submissions by course.
func (s *dashboardService) StudentGrades(ctx context.Context, studentID uint) ([]*StudentCourseGrades, error) {
	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionScope{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var result []*StudentCourseGrades
	byCourse := make(map[uint]*StudentCourseGrades)
	sums := make(map[uint]float64)
	for _, sub := range submissions {
		if sub.Grade == nil || sub.Assignment == nil {
			continue
		}
		courseID := sub.Assignment.CourseID
		group, ok := byCourse[courseID]
		if !ok {
			group = &StudentCourseGrades{CourseID: courseID}
			if sub.Assignment.Course != nil {
				group.CourseName = sub.Assignment.Course.Title
			}
			byCourse[courseID] = group
			result = append(result, group)
		}
		group.Assignments++
		sums[courseID] += *sub.Grade
		group.Grades = append(group.Grades, &GradedHandIn{
			Assignment:      sub.Assignment.Title,
			Grade:           *sub.Grade,
			SubmittedAt:     sub.SubmittedAt,
			TeacherComments: sub.TeacherComments,
		})
	}
	for _, group := range result {
		group.Average = utils.Round2(utils.SafeDiv(sums[group.CourseID], group.Assignments))
	}
	if result == nil {
		result = []*StudentCourseGrades{}
	}
	return result, nil
}
