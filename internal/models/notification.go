package models

import "time"

// Закрытый набор видов уведомлений
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
)

// Notification - одноразовое системное уведомление, адресованное identity.
// Не является частью переписки; read-state живет отдельно от сообщений.
type Notification struct {
	ID        string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserEmail string           `gorm:"index;not null" json:"userEmail"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Kind      NotificationKind `gorm:"column:type;default:'info'" json:"type"`
	IsRead    bool             `gorm:"column:read;default:false" json:"read"`
	Timestamp time.Time        `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (Notification) TableName() string {
	return "notifications"
}
