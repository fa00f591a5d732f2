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

const messageColumns = `message_id, project_id, sender_id, receiver_id, message_type, content, attachment, is_read, read_at, created_at`

func scanMessage(res result.Result) (*Message, error) {
	var (
		m          Message
		msgType    string
		attachment *string
	)
	err := res.ScanNamed(
		named.Required("message_id", &m.MessageID),
		named.Required("project_id", &m.ProjectID),
		named.Required("sender_id", &m.SenderID),
		named.Required("receiver_id", &m.ReceiverID),
		named.OptionalWithDefault("message_type", &msgType),
		named.OptionalWithDefault("content", &m.Content),
		named.Optional("attachment", &attachment),
		named.OptionalWithDefault("is_read", &m.IsRead),
		named.Optional("read_at", &m.ReadAt),
		named.OptionalWithDefault("created_at", &m.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	m.MessageType = models.MessageType(msgType)
	if attachment != nil && *attachment != "" && *attachment != "null" {
		m.Attachment = &models.FileRef{}
		if err := decodeJSON(attachment, m.Attachment); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// CreateMessage сохраняет сообщение
func (c *YDBClient) CreateMessage(ctx context.Context, m *Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	attachment, err := jsonValue(m.Attachment)
	if err != nil {
		return err
	}
	return c.execute(ctx, `
		DECLARE $message_id AS Text;
		DECLARE $project_id AS Text;
		DECLARE $sender_id AS Text;
		DECLARE $receiver_id AS Text;
		DECLARE $message_type AS Text;
		DECLARE $content AS Text;
		DECLARE $attachment AS Optional<Json>;
		DECLARE $is_read AS Bool;
		DECLARE $read_at AS Optional<Timestamp>;
		DECLARE $created_at AS Timestamp;

		UPSERT INTO messages (`+messageColumns+`)
		VALUES ($message_id, $project_id, $sender_id, $receiver_id, $message_type, $content,
			$attachment, $is_read, $read_at, $created_at);
	`, table.NewQueryParameters(
		table.ValueParam("$message_id", types.TextValue(m.MessageID)),
		table.ValueParam("$project_id", types.TextValue(m.ProjectID)),
		table.ValueParam("$sender_id", types.TextValue(m.SenderID)),
		table.ValueParam("$receiver_id", types.TextValue(m.ReceiverID)),
		table.ValueParam("$message_type", types.TextValue(string(m.MessageType))),
		table.ValueParam("$content", types.TextValue(m.Content)),
		table.ValueParam("$attachment", attachment),
		table.ValueParam("$is_read", types.BoolValue(m.IsRead)),
		table.ValueParam("$read_at", optTimestamp(m.ReadAt)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(m.CreatedAt)),
	))
}

// GetMessage получает сообщение по ID
func (c *YDBClient) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	var m *Message
	err := c.rows(ctx, `
		DECLARE $message_id AS Text;
		SELECT `+messageColumns+` FROM messages WHERE message_id = $message_id;
	`, table.NewQueryParameters(table.ValueParam("$message_id", types.TextValue(messageID))),
		nil,
		func(res result.Result) (err error) {
			m, err = scanMessage(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, app_errors.ErrMessageNotFound
	}
	return m, nil
}

// ListMessages переписка проекта по порядку или сообщения пользователя, новые первыми
func (c *YDBClient) ListMessages(ctx context.Context, filter models.MessageFilter) ([]*Message, int64, error) {
	qb := &queryBuilder{}
	from, order := "messages", "created_at DESC"
	switch {
	case filter.ProjectID != "":
		from, order = "messages VIEW project_idx", "created_at ASC"
		qb.param("$project_id", "Text", types.TextValue(filter.ProjectID)).where("project_id = $project_id")
		if filter.UserID != "" && filter.UnreadOnly {
			qb.param("$user_id", "Text", types.TextValue(filter.UserID)).where("receiver_id = $user_id")
		}
	case filter.UnreadOnly:
		from = "messages VIEW receiver_idx"
		qb.param("$user_id", "Text", types.TextValue(filter.UserID)).where("receiver_id = $user_id")
	default:
		qb.param("$user_id", "Text", types.TextValue(filter.UserID)).where("(sender_id = $user_id OR receiver_id = $user_id)")
	}
	if filter.UnreadOnly {
		qb.where("is_read = false")
	}

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM "+from+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageParams(filter.Limit, filter.Offset)
	qb.param("$limit", "Uint64", types.Uint64Value(limit)).param("$offset", "Uint64", types.Uint64Value(offset))

	var items []*Message
	err = c.rows(ctx,
		qb.declareBlock()+"\nSELECT "+messageColumns+" FROM "+from+qb.whereClause()+" ORDER BY "+order+" LIMIT $limit OFFSET $offset;",
		qb.params(),
		func() { items = nil },
		func(res result.Result) error {
			m, err := scanMessage(res)
			if err != nil {
				return err
			}
			items = append(items, m)
			return nil
		})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkMessageRead отмечает сообщение прочитанным. Отметить можно только входящее
func (c *YDBClient) MarkMessageRead(ctx context.Context, userID, messageID string) error {
	return c.doTx(ctx, func(ctx context.Context, tx table.TransactionActor) error {
		var receiver string
		found := false
		err := txRows(ctx, tx, `
			DECLARE $message_id AS Text;
			SELECT receiver_id FROM messages WHERE message_id = $message_id;
		`, table.NewQueryParameters(table.ValueParam("$message_id", types.TextValue(messageID))),
			func(res result.Result) error {
				found = true
				return res.ScanNamed(named.Required("receiver_id", &receiver))
			})
		if err != nil {
			return err
		}
		if !found {
			return app_errors.ErrMessageNotFound
		}
		if receiver != userID {
			return app_errors.Forbidden("only the receiver can mark a message as read")
		}

		_, err = tx.Execute(ctx, `
			DECLARE $message_id AS Text;
			DECLARE $read_at AS Timestamp;
			UPDATE messages SET is_read = true, read_at = $read_at
			WHERE message_id = $message_id AND is_read = false;
		`, table.NewQueryParameters(
			table.ValueParam("$message_id", types.TextValue(messageID)),
			table.ValueParam("$read_at", types.TimestampValueFromTime(time.Now())),
		))
		return err
	})
}

// MarkProjectMessagesRead отмечает прочитанными все входящие сообщения пользователя по проекту
func (c *YDBClient) MarkProjectMessagesRead(ctx context.Context, projectID, userID string) error {
	return c.execute(ctx, `
		DECLARE $project_id AS Text;
		DECLARE $user_id AS Text;
		DECLARE $read_at AS Timestamp;
		UPDATE messages ON
		SELECT message_id, true AS is_read, $read_at AS read_at
		FROM messages VIEW project_idx
		WHERE project_id = $project_id AND receiver_id = $user_id AND is_read = false;
	`, table.NewQueryParameters(
		table.ValueParam("$project_id", types.TextValue(projectID)),
		table.ValueParam("$user_id", types.TextValue(userID)),
		table.ValueParam("$read_at", types.TimestampValueFromTime(time.Now())),
	))
}

// CountUnreadMessages количество непрочитанных входящих сообщений
func (c *YDBClient) CountUnreadMessages(ctx context.Context, userID string) (int64, error) {
	return c.count(ctx, `
		DECLARE $user_id AS Text;
		SELECT COUNT(*) AS total FROM messages VIEW receiver_idx
		WHERE receiver_id = $user_id AND is_read = false;
	`, table.NewQueryParameters(table.ValueParam("$user_id", types.TextValue(userID))))
}
