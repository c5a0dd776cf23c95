package services

import (
	"encoding/json"

	"supportdesk_backend/internal/logger"
	"supportdesk_backend/internal/models"
	"supportdesk_backend/internal/repositories"
	"supportdesk_backend/internal/services/dto"
	"supportdesk_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// Broadcaster - live-канал доставки. Push всегда best-effort:
// REST-история остается источником истины.
type Broadcaster interface {
	BroadcastMessage(message *models.Message)
	BroadcastNotification(notification *models.Notification)
	BroadcastRead(counterparty, reader string, modified int64)
}

type ChatService interface {
	// SendMessage валидирует, сохраняет и (после подтверждения записи)
	// асинхронно рассылает сообщение в комнаты получателя и админа.
	SendMessage(principal Principal, req *dto.SendMessageRequest) (*models.Message, error)

	// GetConversation возвращает историю пары по возрастанию timestamp
	GetConversation(principal Principal, counterparty string) ([]models.Message, error)

	// GetAdminInbox возвращает все сообщения с участием админской стороны
	GetAdminInbox(principal Principal) ([]models.Message, error)

	// MarkConversationRead помечает прочитанными все сообщения
	// counterparty -> reader. Идемпотентно; ноль строк - тоже успех.
	MarkConversationRead(principal Principal, counterparty string) (int64, error)

	// MarkAllRead помечает прочитанными все входящие reader-а
	MarkAllRead(principal Principal) (int64, error)

	// UnreadCounts - агрегат "отправитель -> непрочитанные" для админа
	UnreadCounts(principal Principal) (map[string]int64, error)
}

type chatService struct {
	messageRepo repositories.MessageRepository
	resolver    *ConversationResolver
	broadcaster Broadcaster
}

func NewChatService(
	messageRepo repositories.MessageRepository,
	resolver *ConversationResolver,
	broadcaster Broadcaster,
) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		resolver:    resolver,
		broadcaster: broadcaster,
	}
}

func (s *chatService) SendMessage(principal Principal, req *dto.SendMessageRequest) (*models.Message, error) {
	if req.Content == "" && len(req.Attachments) == 0 {
		return nil, apperrors.NewBadRequestError("Message must carry content or attachments")
	}

	var attachments datatypes.JSON
	if len(req.Attachments) > 0 {
		raw, err := json.Marshal(req.Attachments)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		attachments = datatypes.JSON(raw)
	}

	message := &models.Message{
		SenderEmail:    s.resolver.SenderIdentity(principal),
		RecipientEmail: req.RecipientEmail,
		Content:        req.Content,
		Attachments:    attachments,
		Role:           principal.Role,
		IsRead:         false,
	}

	if err := s.messageRepo.Create(message); err != nil {
		switch err {
		case repositories.ErrEmptyMessage, repositories.ErrMissingIdentity:
			return nil, apperrors.NewBadRequestError(err.Error())
		default:
			return nil, apperrors.StoreError(err)
		}
	}

	// Запись подтверждена - теперь push. Ошибки доставки не влияют
	// на ответ отправителю.
	go s.broadcaster.BroadcastMessage(message)

	return message, nil
}

func (s *chatService) GetConversation(principal Principal, counterparty string) ([]models.Message, error) {
	self, other, err := s.resolver.Resolve(principal, counterparty)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.FindConversation(self, other)
	if err != nil {
		return nil, apperrors.StoreError(err)
	}
	return messages, nil
}

func (s *chatService) GetAdminInbox(principal Principal) ([]models.Message, error) {
	if principal.Role != models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Admin access required")
	}

	messages, err := s.messageRepo.FindInvolving(s.resolver.AdminEmail)
	if err != nil {
		return nil, apperrors.StoreError(err)
	}
	return messages, nil
}

func (s *chatService) MarkConversationRead(principal Principal, counterparty string) (int64, error) {
	reader := s.resolver.SenderIdentity(principal)
	if counterparty == "" {
		return 0, apperrors.NewBadRequestError("Counterparty identity is required")
	}

	modified, err := s.messageRepo.MarkConversationRead(reader, counterparty)
	if err != nil {
		return 0, apperrors.StoreError(err)
	}

	if modified > 0 {
		go s.broadcaster.BroadcastRead(counterparty, reader, modified)
	}

	logger.Debug("conversation marked read", "reader", reader, "counterparty", counterparty, "modified", modified)
	return modified, nil
}

func (s *chatService) MarkAllRead(principal Principal) (int64, error) {
	reader := s.resolver.SenderIdentity(principal)

	modified, err := s.messageRepo.MarkAllRead(reader)
	if err != nil {
		return 0, apperrors.StoreError(err)
	}
	return modified, nil
}

func (s *chatService) UnreadCounts(principal Principal) (map[string]int64, error) {
	if principal.Role != models.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Admin access required")
	}

	counts, err := s.messageRepo.UnreadCountsBySender(s.resolver.AdminEmail)
	if err != nil {
		return nil, apperrors.StoreError(err)
	}
	return counts, nil
}
