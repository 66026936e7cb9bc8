package models

import (
	"time"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "principiante"
	LevelIntermediate CourseLevel = "intermedio"
	LevelAdvanced     CourseLevel = "avanzado"
)

type CourseStatus string

const (
	CourseActive   CourseStatus = "activo"
	CourseInactive CourseStatus = "inactivo"
	CourseDraft    CourseStatus = "borrador"
)

// CourseAccessType decides how a student gains access to a course.
type CourseAccessType string

const (
	AccessFree CourseAccessType = "gratis"
	AccessPaid CourseAccessType = "pago"
	AccessCode CourseAccessType = "codigo"
)

type Course struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	Title             string           `json:"titulo" gorm:"not null;size:255;index"`
	Description       string           `json:"descripcion" gorm:"type:text"`
	Duration          int              `json:"duracion" gorm:"not null"` // minutes
	Level             CourseLevel      `json:"nivel" gorm:"type:varchar(20);not null;index"`
	Price             float64          `json:"precio" gorm:"type:decimal(10,2);default:0"`
	Status            CourseStatus     `json:"estado" gorm:"type:varchar(20);not null;default:borrador;index"`
	AccessType        CourseAccessType `json:"tipo" gorm:"type:varchar(20);not null;default:gratis"`
	InvitationCode    *string          `json:"-" gorm:"size:32;index"`
	InstructorID      uint             `json:"instructor_id" gorm:"not null;index"`
	ImageURL          *string          `json:"imagen_url" gorm:"size:500"`
	IntroVideoURL     *string          `json:"video_introduccion" gorm:"size:500"`
	Prerequisites     *string          `json:"requisitos_previos" gorm:"type:text"`
	LearningGoals     *string          `json:"objetivos_aprendizaje" gorm:"type:text"`
	IncludedMaterials *string          `json:"materiales_incluidos" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Instructor  *User        `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Lessons     []Lesson     `json:"lecciones,omitempty" gorm:"foreignKey:CourseID"`
	Assignments []Assignment `json:"tareas,omitempty" gorm:"foreignKey:CourseID"`
	Enrollments []Enrollment `json:"inscripciones,omitempty" gorm:"foreignKey:CourseID"`

	// Filled by aggregate queries only
	EnrollmentCount int64 `json:"inscripciones_count" gorm:"column:enrollment_count;->;-:migration"`
	LessonCount     int64 `json:"lecciones_count,omitempty" gorm:"column:lesson_count;->;-:migration"`
}

func (Course) TableName() string {
	return "cursos"
}

func (c Course) IsOwnedBy(userID uint) bool {
	return c.InstructorID == userID
}

// PublicView is the course as the open catalog shows it: the instructor is
// reduced to a public profile and enrollments carry no student records.
func (c Course) PublicView() *Course {
	view := c
	if c.Instructor != nil {
		view.Instructor = c.Instructor.PublicProfile()
	}
	if c.Enrollments != nil {
		view.Enrollments = make([]Enrollment, len(c.Enrollments))
		for i, e := range c.Enrollments {
			e.User = nil
			e.Course = nil
			view.Enrollments[i] = e
		}
	}
	return &view
}

type AccessKind string

const (
	AccessByInvitation AccessKind = "invitacion"
	AccessByPayment    AccessKind = "pago"
	AccessByManual     AccessKind = "manual"
	AccessByCode       AccessKind = "codigo"
)

// CourseStudent is the curso_usuario pivot recording how a student got access.
type CourseStudent struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	CourseID   uint       `json:"curso_id" gorm:"not null;uniqueIndex:idx_course_student"`
	UserID     uint       `json:"usuario_id" gorm:"not null;uniqueIndex:idx_course_student"`
	AccessKind AccessKind `json:"tipo_acceso" gorm:"type:varchar(20);not null"`
	AccessedAt time.Time  `json:"fecha_acceso"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (CourseStudent) TableName() string {
	return "curso_usuario"
}
