package models

import (
	"time"
)

type LessonStatus string

const (
	LessonActive   LessonStatus = "activo"
	LessonInactive LessonStatus = "inactivo"
	LessonDraft    LessonStatus = "borrador"
)

type Lesson struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	CourseID    uint         `json:"curso_id" gorm:"not null;index"`
	Title       string       `json:"titulo" gorm:"not null;size:255"`
	Description string       `json:"descripcion" gorm:"type:text"`
	Content     string       `json:"contenido" gorm:"type:text"`
	Duration    int          `json:"duracion" gorm:"not null"`
	Order       int          `json:"orden" gorm:"column:sort_order;not null;index"`
	Status      LessonStatus `json:"estado" gorm:"type:varchar(20);not null;default:borrador"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Course *Course `json:"curso,omitempty" gorm:"foreignKey:CourseID"`
}

func (Lesson) TableName() string {
	return "lecciones"
}
