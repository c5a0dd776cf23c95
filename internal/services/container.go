package services

// ServiceContainer собирает все сервисы ядра для передачи в хэндлеры
type ServiceContainer struct {
	ChatService         ChatService
	NotificationService NotificationService
}
