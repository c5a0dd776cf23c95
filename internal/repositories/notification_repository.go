package repositories

import (
	"errors"

	"supportdesk_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationData = errors.New("invalid notification data")
)

type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByID(id string) (*models.Notification, error)

	// FindForRecipient возвращает последние limit уведомлений, новые первыми
	FindForRecipient(recipient string, limit int) ([]models.Notification, error)

	// MarkAsRead помечает уведомление прочитанным. Повторная пометка
	// уже прочитанного - no-op успех; ошибка только для отсутствующего id.
	MarkAsRead(id string) error

	// MarkAllRead - атомарный bulk, возвращает число измененных строк
	MarkAllRead(recipient string) (int64, error)

	Delete(id string) error
	DeleteForRecipient(recipient string) (int64, error)

	UnreadCount(recipient string) (int64, error)
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(notification *models.Notification) error {
	if notification.UserEmail == "" || notification.Title == "" {
		return ErrInvalidNotificationData
	}
	if notification.Kind == "" {
		notification.Kind = models.NotificationInfo
	}
	switch notification.Kind {
	case models.NotificationInfo, models.NotificationSuccess,
		models.NotificationWarning, models.NotificationError:
	default:
		return ErrInvalidNotificationData
	}

	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindForRecipient(recipient string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := r.db.Where("user_email = ?", recipient).Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepositoryImpl) MarkAsRead(id string) error {
	// Без фильтра read=false: пометка уже прочитанного идемпотентна
	result := r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(recipient string) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_email = ? AND read = ?", recipient, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) DeleteForRecipient(recipient string) (int64, error) {
	result := r.db.Where("user_email = ?", recipient).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) UnreadCount(recipient string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_email = ? AND read = ?", recipient, false).
		Count(&count).Error
	return count, err
}
