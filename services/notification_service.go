package services

import (
	"context"

	"github.com/google/uuid"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/notification"
	"cliptAPI/internal/store"
)

type NotificationService struct {
	store      store.Store
	dispatcher *NotificationDispatcher
}

func NewNotificationService(s store.Store) *NotificationService {
	service := &NotificationService{store: s}
	service.dispatcher = NewNotificationDispatcher(s)
	return service
}

// SetPushProvider injects the real FCM provider from main.go. Without one,
// notifications are stored but never pushed.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

// Notify persists the notification and queues it for push delivery. The
// write is the source of truth; a failed push never rolls it back.
func (s *NotificationService) Notify(ctx context.Context, n *notification.Notification) error {
	if !n.Kind.Valid() {
		return &apperr.ValidationError{Field: "type", Reason: "unknown notification kind"}
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		return err
	}
	s.dispatcher.Dispatch(n)
	return nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) (*notification.ListResponse, error) {
	return s.store.ListNotifications(ctx, userID, page, pageSize, unreadOnly)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	resp, err := s.store.ListNotifications(ctx, userID, 1, 1, true)
	if err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.store.MarkNotificationRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return &apperr.ValidationError{Field: "token", Reason: "device token is required"}
	}
	return s.store.RegisterDeviceToken(ctx, userID, req.Token, req.Platform)
}

// Stop drains the dispatcher; used by the shutdown path and tests.
func (s *NotificationService) Stop() {
	s.dispatcher.Stop()
}
