package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-studypartner-be/internal/model"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/internal/repository"
	"ai-studypartner-be/pkg/events"
	pktNats "ai-studypartner-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type INotificationService interface {
	Start()
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) INotificationService {
	return &notificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *notificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *notificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), nil)

	switch event.EventType() {
	case events.TypeDocumentIndexed:
		return s.notifyUser(ctx, event,
			"Document indexed",
			fmt.Sprintf("Your document %q is indexed (%v chunks) and ready for questions.",
				event.Payload()["source_tag"], event.Payload()["chunk_count"]))

	case events.TypeSessionCleared:
		return s.notifyUser(ctx, event,
			"Session context cleared",
			"Your uploaded document and quiz state were removed from this session.")

	case events.TypeCorpusBuilt:
		// Reference corpus updates matter to everyone; push only, no inbox rows.
		notif := s.buildNotification(uuid.Nil, event,
			"Reference library updated",
			fmt.Sprintf("Source %q added to the advisor reference library.", event.Payload()["source_tag"]))
		if s.delivery != nil {
			s.delivery.Broadcast(notif)
		}
		return nil
	}

	return nil
}

// notifyUser persists an inbox row for the event's user and pushes it over
// the live channel. Events without a parseable user_id are dropped.
func (s *notificationService) notifyUser(ctx context.Context, event events.Event, title, message string) error {
	uidStr, _ := event.Payload()["user_id"].(string)
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("No user_id in payload for event %s", event.EventType()), nil)
		return nil
	}

	notif := s.buildNotification(userID, event, title, message)
	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for user %s", userID), map[string]interface{}{"error": err})
		return err // NATS will retry
	}
	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}
	return nil
}

func (s *notificationService) buildNotification(userID uuid.UUID, event events.Event, title, message string) model.Notification {
	payload := event.Payload()

	entityType := ""
	var entityID *uuid.UUID
	if sidStr, ok := payload["session_id"].(string); ok {
		if sid, err := uuid.Parse(sidStr); err == nil {
			entityType = "chat_session"
			entityID = &sid
		}
	}

	metaJSON, _ := json.Marshal(payload)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   event.EventType(),
		EntityType: entityType,
		EntityID:   entityID,
		Title:      title,
		Message:    message,
		Metadata:   datatypes.JSON(metaJSON),
		CreatedAt:  event.Timestamp(),
		IsRead:     false,
	}
}

// GetNotifications fetches notifications for a user.
func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

// GetUnreadCount fetches unread count.
func (s *notificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks a notification as read.
func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user.
func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
