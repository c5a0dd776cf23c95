package services

import (
	"supportdesk_backend/internal/models"
	"supportdesk_backend/pkg/apperrors"
)

// Principal - аутентифицированная сторона запроса.
// Любые другие представления (UUID, токен) разрешаются во внешнем
// Auth-сервисе до того, как запрос доходит до этого ядра.
type Principal struct {
	Email string
	Role  models.Role
}

// ConversationResolver разрешает пару (self, other) для principal.
// Диалог - неупорядоченная пара {clientEmail, adminEmail}; отдельной
// сущности в хранилище нет.
type ConversationResolver struct {
	AdminEmail string
}

func NewConversationResolver(adminEmail string) *ConversationResolver {
	return &ConversationResolver{AdminEmail: adminEmail}
}

// SenderIdentity возвращает identity, от имени которой principal пишет:
// админская сторона всегда фиксированная admin-идентичность.
func (r *ConversationResolver) SenderIdentity(principal Principal) string {
	if principal.Role == models.RoleAdmin {
		return r.AdminEmail
	}
	return principal.Email
}

// Resolve возвращает (self, other) для просмотра диалога principal
// с counterparty. Клиент может смотреть только диалоги со своим участием.
func (r *ConversationResolver) Resolve(principal Principal, counterparty string) (self, other string, err error) {
	self = r.SenderIdentity(principal)

	if principal.Role == models.RoleAdmin {
		if counterparty == "" {
			return "", "", apperrors.NewBadRequestError("Counterparty identity is required")
		}
		return self, counterparty, nil
	}

	// Клиентская сторона: counterparty либо не указана (значит админ),
	// либо обязана совпадать с одной из сторон его собственного диалога.
	if counterparty == "" || counterparty == r.AdminEmail || counterparty == principal.Email {
		return self, r.AdminEmail, nil
	}

	return "", "", apperrors.NewForbiddenError("Not allowed to view this conversation")
}

// NormalizePair приводит пару identity к каноническому порядку
// (лексикографически), чтобы один тред не раздваивался.
func NormalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
