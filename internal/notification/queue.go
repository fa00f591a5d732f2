package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/lumiforge/cutroom-backend/internal/config"
)

const (
	// TypeDeliver задача доставки уведомления по email и в Telegram
	TypeDeliver = "notification:deliver"
)

// DeliverPayload полезная нагрузка задачи доставки
type DeliverPayload struct {
	NotificationID string `json:"notification_id"`
}

// RedisOpt параметры подключения к Redis для клиента и сервера очереди
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
}

// Queue ставит задачи доставки в asynq
type Queue struct {
	client *asynq.Client
}

// NewQueue создает клиента очереди
func NewQueue(cfg *config.Config) *Queue {
	return &Queue{client: asynq.NewClient(RedisOpt(cfg))}
}

// NewDeliverTask собирает задачу доставки
func NewDeliverTask(notificationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DeliverPayload{NotificationID: notificationID})
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}
	return asynq.NewTask(TypeDeliver, payload,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.Retention(24*time.Hour),
	), nil
}

// Enqueue ставит уведомление в очередь доставки
func (q *Queue) Enqueue(ctx context.Context, notificationID string) error {
	task, err := NewDeliverTask(notificationID)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (q *Queue) Close() error {
	return q.client.Close()
}
