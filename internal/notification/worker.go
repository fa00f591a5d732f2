package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/lumiforge/cutroom-backend/internal/config"
	"github.com/lumiforge/cutroom-backend/internal/email"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Mailer отправка уведомлений на почту
type Mailer interface {
	IsConfigured() bool
	SendNotificationEmail(ctx context.Context, toEmail, fullName, title, message, projectID string) (*email.EmailMessage, error)
}

// UrgentAlerter дублирование срочных уведомлений администраторам
type UrgentAlerter interface {
	Enabled() bool
	SendUrgent(title, message string) error
}

// Worker доставляет сохраненные уведомления по внешним каналам
type Worker struct {
	db     ydb.Database
	mailer Mailer
	urgent UrgentAlerter
	log    *slog.Logger
}

// NewWorker создает обработчик доставки
func NewWorker(db ydb.Database, mailer Mailer, urgent UrgentAlerter, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{db: db, mailer: mailer, urgent: urgent, log: log}
}

// Enqueue доставляет уведомление сразу, без очереди. Используется, когда Redis не настроен
func (w *Worker) Enqueue(ctx context.Context, notificationID string) error {
	return w.Deliver(ctx, notificationID)
}

// Deliver отправляет уведомление на почту получателю, срочные дублирует в Telegram
func (w *Worker) Deliver(ctx context.Context, notificationID string) error {
	n, err := w.db.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.DeliveredAt != nil {
		return nil
	}

	projectID := ""
	if n.RelatedProjectID != nil {
		projectID = *n.RelatedProjectID
	}

	if w.mailer != nil && w.mailer.IsConfigured() {
		user, err := w.db.GetUserByID(ctx, n.UserID)
		if err != nil {
			return fmt.Errorf("failed to load recipient: %w", err)
		}
		if _, err := w.mailer.SendNotificationEmail(ctx, user.Email, user.FullName, n.Title, n.Message, projectID); err != nil {
			return fmt.Errorf("failed to send notification email: %w", err)
		}
	}

	if n.Priority == models.PriorityUrgent && w.urgent != nil && w.urgent.Enabled() {
		if err := w.urgent.SendUrgent(n.Title, n.Message); err != nil {
			w.log.Warn("Failed to mirror urgent notification", "notification_id", n.NotificationID, "error", err)
		}
	}

	if err := w.db.MarkNotificationDelivered(ctx, n.NotificationID); err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return nil
}

// HandleDeliverTask обработчик задачи asynq
func (w *Worker) HandleDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload DeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	err := w.Deliver(ctx, payload.NotificationID)
	if app_errors.Is(err, app_errors.KindNotFound) {
		return fmt.Errorf("notification %s: %v: %w", payload.NotificationID, err, asynq.SkipRetry)
	}
	if err != nil {
		w.log.Warn("Notification delivery failed", "notification_id", payload.NotificationID, "error", err)
	}
	return err
}

// NewServer создает сервер asynq для воркера
func NewServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})
}

// Mux регистрирует обработчики задач
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDeliver, w.HandleDeliverTask)
	return mux
}
