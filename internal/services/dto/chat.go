package dto

import "supportdesk_backend/internal/models"

// SendMessageRequest - тело POST /messages.
// Content может быть пустым только при непустых Attachments
// (проверяется в сервисе, а не тегами).
type SendMessageRequest struct {
	RecipientEmail string              `json:"recipientEmail" validate:"required,email"`
	Content        string              `json:"content"`
	Attachments    []models.Attachment `json:"attachments" validate:"omitempty,dive"`
}

// ReadAllRequest - тело POST /messages/read-all.
// Пустой CounterpartyEmail означает "все мои непрочитанные".
type ReadAllRequest struct {
	CounterpartyEmail string `json:"counterpartyEmail" validate:"omitempty,email"`
}

type ReadAllResponse struct {
	Modified int64 `json:"modified"`
}
