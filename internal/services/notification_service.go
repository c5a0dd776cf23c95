package services

import (
	"fmt"

	"supportdesk_backend/internal/models"
	"supportdesk_backend/internal/repositories"
	"supportdesk_backend/internal/services/dto"
	"supportdesk_backend/pkg/apperrors"
)

type NotificationService interface {
	Create(req *dto.CreateNotificationRequest) (*models.Notification, error)
	List(recipient string) ([]models.Notification, error)
	MarkAsRead(owner, notificationID string) error
	MarkAllRead(owner string) (int64, error)
	Delete(owner, notificationID string) error
	Clear(owner string) (int64, error)
	UnreadCount(owner string) (int64, error)

	// Factory methods для событий платформы. Вызываются из модулей
	// тикетов/проектов/инвойсов на их границе.
	NotifyTicketSubmitted(recipient, subject string) error
	NotifyTicketReplied(recipient, subject string) error
	NotifyProjectUpdated(recipient, projectName string, progress int) error
	NotifyInvoiceIssued(recipient, invoiceNumber string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	broadcaster      Broadcaster
	listLimit        int
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	broadcaster Broadcaster,
	listLimit int,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		broadcaster:      broadcaster,
		listLimit:        listLimit,
	}
}

func (s *notificationService) Create(req *dto.CreateNotificationRequest) (*models.Notification, error) {
	kind := models.NotificationKind(req.Kind)
	if kind == "" {
		kind = models.NotificationInfo
	}

	notification := &models.Notification{
		UserEmail: req.UserEmail,
		Title:     req.Title,
		Message:   req.Message,
		Kind:      kind,
		IsRead:    false,
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		if err == repositories.ErrInvalidNotificationData {
			return nil, apperrors.NewBadRequestError(err.Error())
		}
		return nil, apperrors.StoreError(err)
	}

	go s.broadcaster.BroadcastNotification(notification)

	return notification, nil
}

func (s *notificationService) List(recipient string) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.FindForRecipient(recipient, s.listLimit)
	if err != nil {
		return nil, apperrors.StoreError(err)
	}
	return notifications, nil
}

func (s *notificationService) MarkAsRead(owner, notificationID string) error {
	if err := s.ownedBy(owner, notificationID); err != nil {
		return err
	}

	if err := s.notificationRepo.MarkAsRead(notificationID); err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.NewNotFoundError("Notification not found")
		}
		return apperrors.StoreError(err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(owner string) (int64, error) {
	modified, err := s.notificationRepo.MarkAllRead(owner)
	if err != nil {
		return 0, apperrors.StoreError(err)
	}
	return modified, nil
}

func (s *notificationService) Delete(owner, notificationID string) error {
	if err := s.ownedBy(owner, notificationID); err != nil {
		return err
	}

	if err := s.notificationRepo.Delete(notificationID); err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.NewNotFoundError("Notification not found")
		}
		return apperrors.StoreError(err)
	}
	return nil
}

func (s *notificationService) Clear(owner string) (int64, error) {
	deleted, err := s.notificationRepo.DeleteForRecipient(owner)
	if err != nil {
		return 0, apperrors.StoreError(err)
	}
	return deleted, nil
}

func (s *notificationService) UnreadCount(owner string) (int64, error) {
	count, err := s.notificationRepo.UnreadCount(owner)
	if err != nil {
		return 0, apperrors.StoreError(err)
	}
	return count, nil
}

// ownedBy прячет чужие уведомления за 404
func (s *notificationService) ownedBy(owner, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.NewNotFoundError("Notification not found")
		}
		return apperrors.StoreError(err)
	}
	if notification.UserEmail != owner {
		return apperrors.NewNotFoundError("Notification not found")
	}
	return nil
}

// ---------------- Factory methods ----------------

func (s *notificationService) notify(recipient, title, message string, kind models.NotificationKind) error {
	_, err := s.Create(&dto.CreateNotificationRequest{
		UserEmail: recipient,
		Title:     title,
		Message:   message,
		Kind:      string(kind),
	})
	return err
}

func (s *notificationService) NotifyTicketSubmitted(recipient, subject string) error {
	return s.notify(recipient, "Ticket Submitted",
		fmt.Sprintf("Your support ticket %q has been submitted. We will get back to you shortly.", subject),
		models.NotificationSuccess)
}

func (s *notificationService) NotifyTicketReplied(recipient, subject string) error {
	return s.notify(recipient, "Ticket Reply",
		fmt.Sprintf("Support has replied to your ticket %q.", subject),
		models.NotificationInfo)
}

func (s *notificationService) NotifyProjectUpdated(recipient, projectName string, progress int) error {
	return s.notify(recipient, "Project Updated",
		fmt.Sprintf("Project %q has been updated. Current progress: %d%%.", projectName, progress),
		models.NotificationInfo)
}

func (s *notificationService) NotifyInvoiceIssued(recipient, invoiceNumber string) error {
	return s.notify(recipient, "Invoice Issued",
		fmt.Sprintf("Invoice %s has been issued to your account.", invoiceNumber),
		models.NotificationWarning)
}
