package models

import (
	"time"
)

type AssignmentType string

const (
	AssignmentIndividual AssignmentType = "individual"
	AssignmentGroup      AssignmentType = "grupal"
	AssignmentOptional   AssignmentType = "opcional"
)

type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "activa"
	AssignmentInactive AssignmentStatus = "inactiva"
	AssignmentDraft    AssignmentStatus = "borrador"
)

type Assignment struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	CourseID    uint             `json:"curso_id" gorm:"not null;index"`
	LessonID    *uint            `json:"leccion_id" gorm:"index"`
	Title       string           `json:"titulo" gorm:"not null;size:255"`
	Description string           `json:"descripcion" gorm:"type:text"`
	AssignedAt  time.Time        `json:"fecha_asignacion" gorm:"not null"`
	DueAt       time.Time        `json:"fecha_entrega" gorm:"not null;index"`
	Type        AssignmentType   `json:"tipo" gorm:"type:varchar(20);not null;default:individual"`
	MaxPoints   int              `json:"puntos_maximos" gorm:"not null;default:100"`
	Status      AssignmentStatus `json:"estado" gorm:"type:varchar(20);not null;default:activa"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Course      *Course      `json:"curso,omitempty" gorm:"foreignKey:CourseID"`
	Lesson      *Lesson      `json:"leccion,omitempty" gorm:"foreignKey:LessonID"`
	Submissions []Submission `json:"entregas,omitempty" gorm:"foreignKey:AssignmentID"`
}

func (Assignment) TableName() string {
	return "tareas"
}

type SubmissionStatus string

const (
	SubmissionDelivered SubmissionStatus = "entregada"
	SubmissionGraded    SubmissionStatus = "calificada"
	SubmissionRejected  SubmissionStatus = "rechazada"
)

type Submission struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	AssignmentID    uint             `json:"tarea_id" gorm:"not null;uniqueIndex:idx_submission_assignment_student"`
	StudentID       uint             `json:"estudiante_id" gorm:"not null;uniqueIndex:idx_submission_assignment_student;index"`
	FileURL         *string          `json:"archivo_url" gorm:"size:1000"`
	FileKey         *string          `json:"-" gorm:"size:500"`
	Comments        *string          `json:"comentarios" gorm:"type:text"`
	Grade           *float64         `json:"calificacion" gorm:"type:decimal(5,2)"`
	TeacherComments *string          `json:"comentarios_profesor" gorm:"type:text"`
	SubmittedAt     time.Time        `json:"fecha_entrega" gorm:"index"`
	Status          SubmissionStatus `json:"estado" gorm:"type:varchar(20);not null;default:entregada"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assignment *Assignment `json:"tarea,omitempty" gorm:"foreignKey:AssignmentID"`
	Student    *User       `json:"estudiante,omitempty" gorm:"foreignKey:StudentID"`
}

func (Submission) TableName() string {
	return "entregas_tareas"
}
