package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive     EnrollmentStatus = "activo"
	EnrollmentCompleted  EnrollmentStatus = "completado"
	EnrollmentCancelled  EnrollmentStatus = "cancelado"
	EnrollmentInProgress EnrollmentStatus = "en_progreso"
)

type Enrollment struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	UserID     uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID   uint             `json:"curso_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course;index"`
	Status     EnrollmentStatus `json:"estado" gorm:"type:varchar(20);not null;default:activo;index"`
	Progress   int              `json:"progreso" gorm:"not null;default:0"`
	EnrolledAt time.Time        `json:"fecha_inscripcion"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User   *User   `json:"usuario,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"curso,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "inscripciones"
}

func (e Enrollment) IsCompleted() bool {
	return e.Progress >= 100 || e.Status == EnrollmentCompleted
}
