package handlers

// AppHandlers - все HTTP-хэндлеры приложения
type AppHandlers struct {
	ChatHandler         *ChatHandler
	NotificationHandler *NotificationHandler
}
