package ws

import (
	"supportdesk_backend/internal/models"
)

// Имена событий live-канала
const (
	EventNewMessage      = "newMessage"
	EventNewNotification = "new_notification"
	EventMessageRead     = "messageRead"
)

// Broadcaster рассылает уже сохраненные сообщения и уведомления
// по комнатам. Вызывается строго после подтверждения записи в store:
// переподключившийся клиент, перечитав историю, не увидит дыр
// относительно того, что ему уже пушили.
type Broadcaster struct {
	hub        *Hub
	adminEmail string
}

func NewBroadcaster(hub *Hub, adminEmail string) *Broadcaster {
	return &Broadcaster{
		hub:        hub,
		adminEmail: adminEmail,
	}
}

// BroadcastMessage пушит сообщение в комнату получателя и в админскую
// комнату, чтобы его видели все открытые админские вкладки.
func (b *Broadcaster) BroadcastMessage(message *models.Message) {
	event := Event{Event: EventNewMessage, Data: message}

	b.hub.Push(message.RecipientEmail, event)
	if message.RecipientEmail != b.adminEmail {
		b.hub.Push(b.adminEmail, event)
	}
}

// BroadcastNotification пушит уведомление только в комнату адресата
func (b *Broadcaster) BroadcastNotification(notification *models.Notification) {
	b.hub.Push(notification.UserEmail, Event{
		Event: EventNewNotification,
		Data:  notification,
	})
}

// BroadcastRead сообщает counterparty, что reader дочитал его сообщения
func (b *Broadcaster) BroadcastRead(counterparty, reader string, modified int64) {
	b.hub.Push(counterparty, Event{
		Event: EventMessageRead,
		Data: map[string]any{
			"reader":   reader,
			"modified": modified,
		},
	})
}
