package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "presente"
	AttendanceAbsent  AttendanceStatus = "ausente"
	AttendanceLate    AttendanceStatus = "tardanza"
	AttendanceExcused AttendanceStatus = "justificado"
)

type Attendance struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	StudentID  uint             `json:"estudiante_id" gorm:"not null;uniqueIndex:idx_attendance_student_course_date"`
	CourseID   uint             `json:"curso_id" gorm:"not null;uniqueIndex:idx_attendance_student_course_date;index"`
	Date       datatypes.Date   `json:"fecha" gorm:"column:attendance_date;not null;uniqueIndex:idx_attendance_student_course_date"`
	Status     AttendanceStatus `json:"estado" gorm:"type:varchar(20);not null"`
	Notes      *string          `json:"observaciones" gorm:"size:500"`
	RecorderID uint             `json:"registrador_id" gorm:"not null"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Student    *User            `json:"estudiante,omitempty" gorm:"foreignKey:StudentID"`
	Course     *Course          `json:"curso,omitempty" gorm:"foreignKey:CourseID"`
	RecordedBy *User            `json:"registrador,omitempty" gorm:"foreignKey:RecorderID"`
}

func (Attendance) TableName() string {
	return "asistencias"
}
