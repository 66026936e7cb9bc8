package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "tarjeta"
	PaymentPayPal PaymentMethod = "paypal"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pendiente"
	TransactionCompleted TransactionStatus = "completada"
	TransactionFailed    TransactionStatus = "fallida"
)

// Transaction is a course purchase. A user holds at most one pending or
// completed transaction per course, and a gateway reference pays for one
// purchase only.
type Transaction struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	UserID         uint              `json:"user_id" gorm:"not null;index;uniqueIndex:idx_tx_active_purchase,where:status = 'pendiente' OR status = 'completada'"`
	CourseID       uint              `json:"curso_id" gorm:"not null;index;uniqueIndex:idx_tx_active_purchase"`
	Number         string            `json:"numero_transaccion" gorm:"uniqueIndex;not null;size:64"`
	Amount         float64           `json:"monto" gorm:"type:decimal(10,2);not null"`
	Currency       string            `json:"moneda" gorm:"size:3;not null;default:MXN"`
	Method         PaymentMethod     `json:"metodo_pago" gorm:"type:varchar(20);not null;uniqueIndex:idx_tx_method_reference"`
	Status         TransactionStatus `json:"estado" gorm:"type:varchar(20);not null;default:pendiente;index"`
	Reference      *string           `json:"referencia_pago" gorm:"size:255;uniqueIndex:idx_tx_method_reference"`
	PaidAt         *time.Time        `json:"fecha_pago" gorm:"index"`
	PaymentDetails datatypes.JSON    `json:"detalles_pago,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User   *User   `json:"usuario,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"curso,omitempty" gorm:"foreignKey:CourseID"`
}

func (Transaction) TableName() string {
	return "transacciones"
}

func (t Transaction) ReferenceValue() string {
	if t.Reference == nil {
		return ""
	}
	return *t.Reference
}
