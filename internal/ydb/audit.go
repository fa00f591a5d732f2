package ydb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
)

const auditColumns = `id, timestamp, user_id, role, action_type, action_result, entity_id, ip_address, user_agent, details`

// InsertAuditLog сохраняет запись аудита
func (c *YDBClient) InsertAuditLog(ctx context.Context, auditLog *models.AuditLog) error {
	details := types.NullValue(types.TypeJSON)
	if len(auditLog.Details) > 0 {
		details = types.OptionalValue(types.JSONValue(string(auditLog.Details)))
	}

	return c.execute(ctx, `
		DECLARE $id AS Text;
		DECLARE $timestamp AS Timestamp;
		DECLARE $user_id AS Text;
		DECLARE $role AS Text;
		DECLARE $action_type AS Text;
		DECLARE $action_result AS Text;
		DECLARE $entity_id AS Text;
		DECLARE $ip_address AS Text;
		DECLARE $user_agent AS Text;
		DECLARE $details AS Optional<Json>;

		UPSERT INTO audit_logs (`+auditColumns+`)
		VALUES ($id, $timestamp, $user_id, $role, $action_type, $action_result, $entity_id, $ip_address, $user_agent, $details);
	`, table.NewQueryParameters(
		table.ValueParam("$id", types.TextValue(auditLog.ID)),
		table.ValueParam("$timestamp", types.TimestampValueFromTime(auditLog.Timestamp)),
		table.ValueParam("$user_id", types.TextValue(auditLog.UserID)),
		table.ValueParam("$role", types.TextValue(auditLog.Role)),
		table.ValueParam("$action_type", types.TextValue(auditLog.ActionType)),
		table.ValueParam("$action_result", types.TextValue(auditLog.ActionResult)),
		table.ValueParam("$entity_id", types.TextValue(auditLog.EntityID)),
		table.ValueParam("$ip_address", types.TextValue(auditLog.IPAddress)),
		table.ValueParam("$user_agent", types.TextValue(auditLog.UserAgent)),
		table.ValueParam("$details", details),
	))
}

// GetAuditLogs возвращает записи аудита по фильтрам.
// Поддерживаемые ключи: user_id, entity_id, action_type, action_result (string), from, to (time.Time)
func (c *YDBClient) GetAuditLogs(ctx context.Context, filters map[string]interface{}, limit, offset int) ([]*models.AuditLog, int64, error) {
	qb := &queryBuilder{}
	for _, key := range []string{"user_id", "entity_id", "action_type", "action_result"} {
		if v, ok := filters[key].(string); ok && v != "" {
			qb.param("$"+key, "Text", types.TextValue(v)).where(key + " = $" + key)
		}
	}
	if from, ok := filters["from"].(time.Time); ok && !from.IsZero() {
		qb.param("$from", "Timestamp", types.TimestampValueFromTime(from)).where("timestamp >= $from")
	}
	if to, ok := filters["to"].(time.Time); ok && !to.IsZero() {
		qb.param("$to", "Timestamp", types.TimestampValueFromTime(to)).where("timestamp <= $to")
	}

	total, err := c.count(ctx, qb.declareBlock()+"\nSELECT COUNT(*) AS total FROM audit_logs"+qb.whereClause()+";", qb.params())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	l, o := pageParams(limit, offset)
	qb.param("$limit", "Uint64", types.Uint64Value(l)).param("$offset", "Uint64", types.Uint64Value(o))

	var logs []*models.AuditLog
	err = c.rows(ctx,
		qb.declareBlock()+"\nSELECT "+auditColumns+" FROM audit_logs"+qb.whereClause()+" ORDER BY timestamp DESC LIMIT $limit OFFSET $offset;",
		qb.params(),
		func() { logs = nil },
		func(res result.Result) error {
			var (
				entry   models.AuditLog
				details *string
			)
			if err := res.ScanNamed(
				named.Required("id", &entry.ID),
				named.OptionalWithDefault("timestamp", &entry.Timestamp),
				named.OptionalWithDefault("user_id", &entry.UserID),
				named.OptionalWithDefault("role", &entry.Role),
				named.OptionalWithDefault("action_type", &entry.ActionType),
				named.OptionalWithDefault("action_result", &entry.ActionResult),
				named.OptionalWithDefault("entity_id", &entry.EntityID),
				named.OptionalWithDefault("ip_address", &entry.IPAddress),
				named.OptionalWithDefault("user_agent", &entry.UserAgent),
				named.Optional("details", &details),
			); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			if details != nil && *details != "" {
				entry.Details = json.RawMessage(*details)
			}
			logs = append(logs, &entry)
			return nil
		})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return logs, total, nil
}
