package models

import (
	"time"
)

type MessageType string

const (
	MessageQuestion     MessageType = "consulta"
	MessageReply        MessageType = "respuesta"
	MessageNotification MessageType = "notificacion"
	MessageGeneral      MessageType = "general"
)

type MessageStatus string

const (
	MessageSent     MessageStatus = "enviado"
	MessageRead     MessageStatus = "leido"
	MessageArchived MessageStatus = "archivado"
)

type Message struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	SenderID    uint          `json:"remitente_id" gorm:"not null;index"`
	RecipientID uint          `json:"destinatario_id" gorm:"not null;index"`
	Subject     string        `json:"asunto" gorm:"not null;size:255"`
	Body        string        `json:"contenido" gorm:"type:text;not null"`
	Type        MessageType   `json:"tipo" gorm:"type:varchar(20);not null;default:general"`
	Status      MessageStatus `json:"estado" gorm:"type:varchar(20);not null;default:enviado"`
	SentAt      time.Time     `json:"fecha_envio" gorm:"index"`
	ReadAt      *time.Time    `json:"fecha_lectura"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sender    *User `json:"remitente,omitempty" gorm:"foreignKey:SenderID"`
	Recipient *User `json:"destinatario,omitempty" gorm:"foreignKey:RecipientID"`
}

func (Message) TableName() string {
	return "mensajes"
}

func (m Message) IsParticipant(userID uint) bool {
	return m.SenderID == userID || m.RecipientID == userID
}
