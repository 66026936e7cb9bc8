package models

import (
	"math"
	"time"
)

type EvaluationType string

const (
	EvaluationAssignment    EvaluationType = "tarea"
	EvaluationExam          EvaluationType = "examen"
	EvaluationProject       EvaluationType = "proyecto"
	EvaluationParticipation EvaluationType = "participacion"
	EvaluationQuiz          EvaluationType = "quiz"
	EvaluationFinalWork     EvaluationType = "trabajo_final"
)

type GradeStatus string

const (
	GradeDraft     GradeStatus = "borrador"
	GradePublished GradeStatus = "publicada"
	GradeReviewed  GradeStatus = "revisada"
)

type Grade struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	StudentID      uint           `json:"estudiante_id" gorm:"not null;index:idx_grade_student_course"`
	CourseID       uint           `json:"curso_id" gorm:"not null;index:idx_grade_student_course"`
	LessonID       *uint          `json:"leccion_id" gorm:"index"`
	EvaluationType EvaluationType `json:"tipo_evaluacion" gorm:"type:varchar(20);not null"`
	Score          float64        `json:"calificacion" gorm:"type:decimal(5,2);not null"`
	Weight         float64        `json:"peso" gorm:"type:decimal(3,2);not null;default:1"`
	Comments       *string        `json:"comentarios" gorm:"type:text"`
	EvaluatedAt    time.Time      `json:"fecha_evaluacion" gorm:"index"`
	EvaluatorID    uint           `json:"evaluador_id" gorm:"not null"`
	Status         GradeStatus    `json:"estado" gorm:"type:varchar(20);not null;default:borrador;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed fields (not stored)
	FinalScore float64 `json:"calificacion_final" gorm:"-"`

	Student   *User   `json:"estudiante,omitempty" gorm:"foreignKey:StudentID"`
	Course    *Course `json:"curso,omitempty" gorm:"foreignKey:CourseID"`
	Lesson    *Lesson `json:"leccion,omitempty" gorm:"foreignKey:LessonID"`
	Evaluator *User   `json:"evaluador,omitempty" gorm:"foreignKey:EvaluatorID"`
}

func (Grade) TableName() string {
	return "calificaciones"
}

// ComputeFinalScore fills FinalScore as score weighted by peso.
func (g *Grade) ComputeFinalScore() {
	g.FinalScore = math.Round(g.Score*g.Weight*100) / 100
}
