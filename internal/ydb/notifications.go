package ydb

import (
	"context"
	"fmt"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
)

const notificationColumns = `notification_id, user_id, type, title, message, related_project_id, priority, is_read, read_at, delivered_at, created_at`

func scanNotification(res result.Result) (*Notification, error) {
	var (
		n               Notification
		nType, priority string
	)
	err := res.ScanNamed(
		named.Required("notification_id", &n.NotificationID),
		named.Required("user_id", &n.UserID),
		named.OptionalWithDefault("type", &nType),
		named.OptionalWithDefault("title", &n.Title),
		named.OptionalWithDefault("message", &n.Message),
		named.Optional("related_project_id", &n.RelatedProjectID),
		named.OptionalWithDefault("priority", &priority),
		named.OptionalWithDefault("is_read", &n.IsRead),
		named.Optional("read_at", &n.ReadAt),
		named.Optional("delivered_at", &n.DeliveredAt),
		named.OptionalWithDefault("created_at", &n.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	n.Type = models.NotificationType(nType)
	n.Priority = models.NotificationPriority(priority)
	return &n, nil
}

// CreateNotification сохраняет уведомление
func (c *YDBClient) CreateNotification(ctx context.Context, n *Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return c.execute(ctx, `
		DECLARE $notification_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $type AS Text;
		DECLARE $title AS Text;
		DECLARE $message AS Text;
		DECLARE $related_project_id AS Optional<Text>;
		DECLARE $priority AS Text;
		DECLARE $is_read AS Bool;
		DECLARE $read_at AS Optional<Timestamp>;
		DECLARE $delivered_at AS Optional<Timestamp>;
		DECLARE $created_at AS Timestamp;

		UPSERT INTO notifications (`+notificationColumns+`)
		VALUES ($notification_id, $user_id, $type, $title, $message, $related_project_id,
			$priority, $is_read, $read_at, $delivered_at, $created_at);
	`, table.NewQueryParameters(
		table.ValueParam("$notification_id", types.TextValue(n.NotificationID)),
		table.ValueParam("$user_id", types.TextValue(n.UserID)),
		table.ValueParam("$type", types.TextValue(string(n.Type))),
		table.ValueParam("$title", types.TextValue(n.Title)),
		table.ValueParam("$message", types.TextValue(n.Message)),
		table.ValueParam("$related_project_id", optText(n.RelatedProjectID)),
		table.ValueParam("$priority", types.TextValue(string(n.Priority))),
		table.ValueParam("$is_read", types.BoolValue(n.IsRead)),
		table.ValueParam("$read_at", optTimestamp(n.ReadAt)),
		table.ValueParam("$delivered_at", optTimestamp(n.DeliveredAt)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(n.CreatedAt)),
	))
}

// GetNotification получает уведомление по ID
func (c *YDBClient) GetNotification(ctx context.Context, notificationID string) (*Notification, error) {
	var n *Notification
	err := c.rows(ctx, `
		DECLARE $notification_id AS Text;
		SELECT `+notificationColumns+` FROM notifications WHERE notification_id = $notification_id;
	`, table.NewQueryParameters(table.ValueParam("$notification_id", types.TextValue(notificationID))),
		nil,
		func(res result.Result) (err error) {
			n, err = scanNotification(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, app_errors.ErrNotificationNotFound
	}
	return n, nil
}

// ListNotifications возвращает уведомления пользователя, новые первыми
func (c *YDBClient) ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*Notification, int64, error) {
	qb := &queryBuilder{}
	qb.param("$user_id", "Text", types.TextValue(filter.UserID)).where("user_id = $user_id")
	if filter.UnreadOnly {
		qb.where("is_read = false")
	}

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM notifications VIEW user_idx"+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageParams(filter.Limit, filter.Offset)
	qb.param("$limit", "Uint64", types.Uint64Value(limit)).param("$offset", "Uint64", types.Uint64Value(offset))

	var items []*Notification
	err = c.rows(ctx,
		qb.declareBlock()+"\nSELECT "+notificationColumns+" FROM notifications VIEW user_idx"+qb.whereClause()+" ORDER BY created_at DESC LIMIT $limit OFFSET $offset;",
		qb.params(),
		func() { items = nil },
		func(res result.Result) error {
			n, err := scanNotification(res)
			if err != nil {
				return err
			}
			items = append(items, n)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkNotificationRead отмечает уведомление прочитанным. Чужое уведомление
// не отличается от несуществующего
func (c *YDBClient) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		found := false
		err := txRows(ctx, tx, `
			DECLARE $notification_id AS Text;
			DECLARE $user_id AS Text;
			SELECT notification_id FROM notifications
			WHERE notification_id = $notification_id AND user_id = $user_id;
		`, table.NewQueryParameters(
			table.ValueParam("$notification_id", types.TextValue(notificationID)),
			table.ValueParam("$user_id", types.TextValue(userID)),
		), func(res result.Result) error {
			found = true
			return nil
		})
		if err != nil {
			return err
		}
		if !found {
			return app_errors.ErrNotificationNotFound
		}

		_, err = tx.Execute(ctx, `
			DECLARE $notification_id AS Text;
			DECLARE $read_at AS Timestamp;
			UPDATE notifications SET is_read = true, read_at = $read_at
			WHERE notification_id = $notification_id AND is_read = false;
		`, table.NewQueryParameters(
			table.ValueParam("$notification_id", types.TextValue(notificationID)),
			table.ValueParam("$read_at", types.TimestampValueFromTime(time.Now())),
		))
		return err
	})
}

// MarkAllNotificationsRead отмечает все уведомления пользователя прочитанными
func (c *YDBClient) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return c.execute(ctx, `
		DECLARE $user_id AS Text;
		DECLARE $read_at AS Timestamp;
		UPDATE notifications ON
		SELECT notification_id, true AS is_read, $read_at AS read_at
		FROM notifications VIEW user_idx
		WHERE user_id = $user_id AND is_read = false;
	`, table.NewQueryParameters(
		table.ValueParam("$user_id", types.TextValue(userID)),
		table.ValueParam("$read_at", types.TimestampValueFromTime(time.Now())),
	))
}

// MarkNotificationDelivered фиксирует доставку по внешним каналам
func (c *YDBClient) MarkNotificationDelivered(ctx context.Context, notificationID string) error {
	return c.execute(ctx, `
		DECLARE $notification_id AS Text;
		DECLARE $delivered_at AS Timestamp;
		UPDATE notifications SET delivered_at = $delivered_at WHERE notification_id = $notification_id;
	`, table.NewQueryParameters(
		table.ValueParam("$notification_id", types.TextValue(notificationID)),
		table.ValueParam("$delivered_at", types.TimestampValueFromTime(time.Now())),
	))
}

// CountUnreadNotifications количество непрочитанных уведомлений
func (c *YDBClient) CountUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	return c.count(ctx, `
		DECLARE $user_id AS Text;
		SELECT COUNT(*) AS total FROM notifications VIEW user_idx
		WHERE user_id = $user_id AND is_read = false;
	`, table.NewQueryParameters(table.ValueParam("$user_id", types.TextValue(userID))))
}
