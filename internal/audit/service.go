package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Recorder записывает действия пользователей. Ошибки записи не прерывают операцию
type Recorder interface {
	LogAction(ctx context.Context, entry Entry) error
}

// Entry действие, попадающее в журнал аудита
type Entry struct {
	UserID   string
	Role     models.Role
	Action   models.AuditActionType
	Result   models.AuditActionResult
	EntityID string
	Details  map[string]interface{}
}

// Nop Recorder, который ничего не пишет
type Nop struct{}

func (Nop) LogAction(context.Context, Entry) error { return nil }

// Service handles audit logging
type Service struct {
	db ydb.Database
}

// NewService creates a new audit service
func NewService(db ydb.Database) *Service {
	return &Service{
		db: db,
	}
}

type requestMetaKey struct{}

type requestMeta struct {
	ip        string
	userAgent string
}

// WithRequestMeta сохраняет IP и User-Agent запроса для записей аудита
func WithRequestMeta(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, requestMeta{ip: ip, userAgent: userAgent})
}

// LogAction logs an audit action to the database
// Errors in logging are logged but don't interrupt the operation
func (s *Service) LogAction(ctx context.Context, entry Entry) error {
	if entry.Details == nil {
		entry.Details = make(map[string]interface{})
	}
	if entry.Result == "" {
		entry.Result = models.AuditResultSuccess
	}

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		slog.Error("Failed to marshal audit details", "error", err, "action_type", entry.Action)
		detailsJSON = []byte("{}")
	}

	auditLog := &models.AuditLog{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		UserID:       entry.UserID,
		Role:         string(entry.Role),
		ActionType:   string(entry.Action),
		ActionResult: string(entry.Result),
		EntityID:     entry.EntityID,
		Details:      detailsJSON,
	}
	if meta, ok := ctx.Value(requestMetaKey{}).(requestMeta); ok {
		auditLog.IPAddress = meta.ip
		auditLog.UserAgent = meta.userAgent
	}

	if err := s.db.InsertAuditLog(ctx, auditLog); err != nil {
		slog.Error("Failed to insert audit log",
			"error", err,
			"user_id", entry.UserID,
			"entity_id", entry.EntityID,
			"action_type", entry.Action,
		)
		return nil
	}

	return nil
}

// GetLogs retrieves audit logs with filtering and pagination
func (s *Service) GetLogs(ctx context.Context, req models.GetAuditLogsRequest) (*models.GetAuditLogsResponse, error) {
	limit, offset := req.Limit, req.Offset
	if limit > 100 {
		limit = 100
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filters := map[string]interface{}{}
	if req.UserID != "" {
		filters["user_id"] = req.UserID
	}
	if req.EntityID != "" {
		filters["entity_id"] = req.EntityID
	}
	if req.ActionType != "" {
		filters["action_type"] = req.ActionType
	}
	if req.Result != "" {
		filters["action_result"] = req.Result
	}
	for key, raw := range map[string]string{"from": req.From, "to": req.To} {
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, app_errors.Validation("%s must be an RFC3339 timestamp", key)
		}
		filters[key] = ts
	}

	logs, total, err := s.db.GetAuditLogs(ctx, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	return &models.GetAuditLogsResponse{
		Logs:   logs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
