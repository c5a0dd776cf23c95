package repositories

import (
	"errors"

	"supportdesk_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message must carry content or attachments")
	ErrMissingIdentity = errors.New("sender and recipient identities are required")
)

// UnreadCount - агрегат "отправитель -> число непрочитанных"
type UnreadCount struct {
	SenderEmail string `json:"senderEmail"`
	Count       int64  `json:"count"`
}

type MessageRepository interface {
	Create(message *models.Message) error
	FindByID(id string) (*models.Message, error)

	// FindConversation возвращает все сообщения пары identity в обоих
	// направлениях, по возрастанию timestamp (seq - добивка при равенстве).
	FindConversation(identityA, identityB string) ([]models.Message, error)

	// FindInvolving возвращает все сообщения, где identity - одна из сторон
	FindInvolving(identity string) ([]models.Message, error)

	// MarkConversationRead помечает прочитанными все непрочитанные сообщения
	// от sender к recipient одним UPDATE. Возвращает число измененных строк.
	MarkConversationRead(recipient, sender string) (int64, error)

	// MarkAllRead помечает прочитанными все непрочитанные сообщения,
	// адресованные recipient. Возвращает число измененных строк.
	MarkAllRead(recipient string) (int64, error)

	// UnreadCountsBySender группирует непрочитанные сообщения recipient
	// по отправителю
	UnreadCountsBySender(recipient string) (map[string]int64, error)
}

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) Create(message *models.Message) error {
	if message.SenderEmail == "" || message.RecipientEmail == "" {
		return ErrMissingIdentity
	}
	if message.Content == "" && len(message.Attachments) == 0 {
		return ErrEmptyMessage
	}

	return r.db.Create(message).Error
}

func (r *MessageRepositoryImpl) FindByID(id string) (*models.Message, error) {
	var msg models.Message
	err := r.db.First(&msg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepositoryImpl) FindConversation(identityA, identityB string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("(sender_email = ? AND recipient_email = ?) OR (sender_email = ? AND recipient_email = ?)",
			identityA, identityB, identityB, identityA).
		Order("timestamp ASC, seq ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) FindInvolving(identity string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("sender_email = ? OR recipient_email = ?", identity, identity).
		Order("timestamp ASC, seq ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) MarkConversationRead(recipient, sender string) (int64, error) {
	// Один bulk UPDATE: фильтр вычисляется на момент выполнения,
	// гонка с параллельным append не теряет обновления.
	result := r.db.Model(&models.Message{}).
		Where("recipient_email = ? AND sender_email = ? AND read = ?", recipient, sender, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *MessageRepositoryImpl) MarkAllRead(recipient string) (int64, error) {
	result := r.db.Model(&models.Message{}).
		Where("recipient_email = ? AND read = ?", recipient, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *MessageRepositoryImpl) UnreadCountsBySender(recipient string) (map[string]int64, error) {
	var rows []UnreadCount
	err := r.db.Model(&models.Message{}).
		Select("sender_email, COUNT(*) as count").
		Where("recipient_email = ? AND read = ?", recipient, false).
		Group("sender_email").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderEmail] = row.Count
	}
	return counts, nil
}
