package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationNewEnrollment   NotificationType = "nueva_inscripcion"
	NotificationSubmissionGrade NotificationType = "entrega_calificada"
	NotificationAssignmentDue   NotificationType = "tarea_por_vencer"
	NotificationPaymentDone     NotificationType = "pago_completado"
)

// Notification is one entry of a user's in-app inbox.
type Notification struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	UserID  uint             `json:"user_id" gorm:"not null;index:idx_notification_user_read,priority:1"`
	Type    NotificationType `json:"tipo" gorm:"type:varchar(40);not null;index"`
	Title   string           `json:"titulo" gorm:"not null;size:255"`
	Message string           `json:"mensaje" gorm:"type:text"`
	Data    datatypes.JSON   `json:"datos,omitempty"`
	ReadAt  *time.Time       `json:"fecha_lectura" gorm:"index:idx_notification_user_read,priority:2"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string {
	return "notificaciones"
}

func (n Notification) IsRead() bool { return n.ReadAt != nil }
