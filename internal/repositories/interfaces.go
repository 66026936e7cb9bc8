package repositories

import (
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

const (
	DefaultCoursePageSize = 12
	DefaultPageSize       = 15
	PopularCoursesLimit   = 5
)

// ===== SHARED FILTER STRUCTS =====

// CourseFilters narrows a course listing. Nil pointers mean "no constraint".
type CourseFilters struct {
	Level        *models.CourseLevel  `json:"nivel,omitempty"`
	Status       *models.CourseStatus `json:"estado,omitempty"`
	InstructorID *uint                `json:"instructor_id,omitempty"`
	PriceMin     *float64             `json:"precio_minimo,omitempty"`
	PriceMax     *float64             `json:"precio_maximo,omitempty"`
	DurationMin  *int                 `json:"duracion_minima,omitempty"`
	DurationMax  *int                 `json:"duracion_maxima,omitempty"`
	DateFrom     *time.Time           `json:"fecha_desde,omitempty"`
	DateTo       *time.Time           `json:"fecha_hasta,omitempty"`
	SortBy       string               `json:"orden"`     // titulo, precio, duracion, created_at, updated_at
	SortOrder    string               `json:"direccion"` // asc, desc
	Page         int                  `json:"page"`
	PerPage      int                  `json:"per_page"`
}

type GradeFilters struct {
	StudentID      *uint                  `json:"estudiante_id"`
	CourseID       *uint                  `json:"curso_id"`
	EvaluationType *models.EvaluationType `json:"tipo_evaluacion"`
	Status         *models.GradeStatus    `json:"estado"`
	CourseIDs      []uint                 `json:"-"`
	Page           int                    `json:"page"`
	PerPage        int                    `json:"per_page"`
}

type AttendanceFilters struct {
	StudentID *uint                    `json:"estudiante_id"`
	CourseID  *uint                    `json:"curso_id"`
	Status    *models.AttendanceStatus `json:"estado"`
	DateFrom  *time.Time               `json:"fecha_desde"`
	DateTo    *time.Time               `json:"fecha_hasta"`
	CourseIDs []uint                   `json:"-"`
	Page      int                      `json:"page"`
	PerPage   int                      `json:"per_page"`
}

type UserFilters struct {
	Role    *models.UserRole `json:"role"`
	Search  string           `json:"search"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// ===== PAGINATION =====

// Page is a paginated result set.
type Page[T any] struct {
	Data        []T   `json:"data"`
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	LastPage    int   `json:"last_page"`
}

func NewPage[T any](data []T, total int64, page, perPage int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Page[T]{
		Data:        data,
		Total:       total,
		CurrentPage: page,
		PerPage:     perPage,
		LastPage:    lastPage,
	}
}

// Normalize clamps page and size to sane values and returns the offset.
func Normalize(page, perPage, defaultSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = defaultSize
	}
	return page, perPage, (page - 1) * perPage
}

// ===== SHARED STATISTICS STRUCTS =====

type CourseStatistics struct {
	TotalCourses          int64   `json:"total_cursos"`
	ActiveCourses         int64   `json:"cursos_activos"`
	InactiveCourses       int64   `json:"cursos_inactivos"`
	DraftCourses          int64   `json:"cursos_borrador"`
	AverageStudents       float64 `json:"promedio_estudiantes"`
	CoursesWithoutStudent int64   `json:"cursos_sin_estudiantes"`
}

type StudentAverage struct {
	Average     float64 `json:"promedio"`
	TotalGrades int64   `json:"total_calificaciones"`
}

type AttendanceStatistics struct {
	Total      int64   `json:"total_asistencias"`
	Present    int64   `json:"presentes"`
	Absent     int64   `json:"ausentes"`
	Late       int64   `json:"tardanzas"`
	Excused    int64   `json:"justificados"`
	Percentage float64 `json:"porcentaje_asistencia"`
}

// ProgressBuckets counts enrollments by progress band.
type ProgressBuckets struct {
	Initial      int64 `json:"inicial_0_25"`
	Basic        int64 `json:"basico_26_50"`
	Intermediate int64 `json:"intermedio_51_75"`
	Advanced     int64 `json:"avanzado_76_100"`
}

type EnrollmentCounts struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"activos"`
	Completed  int64 `json:"completados"`
	InProgress int64 `json:"en_progreso"`
}

type SubmissionAverage struct {
	CourseID uint    `json:"curso_id"`
	Average  float64 `json:"promedio"`
	Count    int64   `json:"total_tareas"`
}

type RoleCounts struct {
	Students int64 `json:"estudiantes"`
	Teachers int64 `json:"profesores"`
	Admins   int64 `json:"administradores"`
}
