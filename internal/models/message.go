package models

import (
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Attachment - вложение сообщения (хранится в JSONB-массиве)
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Message - одно сообщение диалога client <-> admin.
// Диалог не хранится отдельной сущностью: он выводится запросом
// по паре (sender_email, recipient_email) в обоих направлениях.
type Message struct {
	ID             string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SenderEmail    string         `gorm:"index;not null" json:"senderEmail"`
	RecipientEmail string         `gorm:"index;not null" json:"recipientEmail"`
	Content        string         `gorm:"type:text" json:"content"`
	Attachments    datatypes.JSON `gorm:"type:jsonb" json:"attachments,omitempty"`
	Role           Role           `gorm:"not null" json:"role"`
	IsRead         bool           `gorm:"column:read;default:false" json:"read"`
	Timestamp      time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`

	// Seq фиксирует порядок вставки: сообщения с одинаковым timestamp
	// не должны менять взаимный порядок при выборке.
	Seq int64 `gorm:"autoIncrement;uniqueIndex" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
