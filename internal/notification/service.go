package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Event исходящее событие после успешного изменения состояния
type Event struct {
	UserID    string
	Type      models.NotificationType
	Title     string
	Message   string
	ProjectID string
	Priority  models.NotificationPriority
}

// Sink принимает уведомления. Ошибки доставки не возвращаются вызывающему
type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// Enqueuer ставит уведомление в очередь доставки по внешним каналам
type Enqueuer interface {
	Enqueue(ctx context.Context, notificationID string) error
}

// Service сохраняет уведомления и отдает их пользователю
type Service struct {
	db    ydb.Database
	queue Enqueuer
}

// NewService создает сервис уведомлений. queue может быть nil, тогда внешняя доставка отключена
func NewService(db ydb.Database, queue Enqueuer) *Service {
	return &Service{db: db, queue: queue}
}

// Notify сохраняет уведомление и ставит его в очередь доставки
func (s *Service) Notify(ctx context.Context, ev Event) {
	log := logger.FromContext(ctx)
	if ev.UserID == "" {
		return
	}
	if ev.Priority == "" {
		ev.Priority = models.PriorityMedium
	}

	n := &ydb.Notification{
		NotificationID: uuid.New().String(),
		UserID:         ev.UserID,
		Type:           ev.Type,
		Title:          ev.Title,
		Message:        ev.Message,
		Priority:       ev.Priority,
		CreatedAt:      time.Now(),
	}
	if ev.ProjectID != "" {
		projectID := ev.ProjectID
		n.RelatedProjectID = &projectID
	}

	if err := s.db.CreateNotification(ctx, n); err != nil {
		log.Warn("Failed to persist notification",
			"user_id", ev.UserID, "type", ev.Type, "project_id", ev.ProjectID, "error", err)
		return
	}

	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, n.NotificationID); err != nil {
		log.Warn("Failed to enqueue notification delivery",
			"notification_id", n.NotificationID, "user_id", ev.UserID, "error", err)
	}
}

// List уведомления пользователя
func (s *Service) List(ctx context.Context, filter models.NotificationFilter) (*models.ListResponse[*ydb.Notification], error) {
	if filter.UserID == "" {
		return nil, app_errors.Validation("user id is required")
	}
	items, total, err := s.db.ListNotifications(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if items == nil {
		items = []*ydb.Notification{}
	}
	return &models.ListResponse[*ydb.Notification]{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// UnreadCount количество непрочитанных уведомлений
func (s *Service) UnreadCount(ctx context.Context, userID string) (*models.UnreadCountResponse, error) {
	count, err := s.db.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &models.UnreadCountResponse{Count: count}, nil
}

// MarkRead отмечает уведомление прочитанным
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	if notificationID == "" {
		return app_errors.Validation("notification id is required")
	}
	return s.db.MarkNotificationRead(ctx, userID, notificationID)
}

// MarkAllRead отмечает все уведомления пользователя прочитанными
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.db.MarkAllNotificationsRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
