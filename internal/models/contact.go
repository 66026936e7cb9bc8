package models

import "time"

type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"nombre" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:100;not null"`
	Phone     *string   `json:"telefono" gorm:"size:20"`
	Subject   *string   `json:"asunto" gorm:"size:255"`
	Message   string    `json:"mensaje" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contactos"
}
