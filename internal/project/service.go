package project

import (
	"context"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/audit"
	"github.com/lumiforge/cutroom-backend/internal/catalog"
	"github.com/lumiforge/cutroom-backend/internal/config"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/storage"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

const downloadURLLifetime = time.Hour

// Service управляет жизненным циклом проекта и квотой правок
type Service struct {
	db          ydb.Database
	catalog     *catalog.Service
	notifier    notification.Sink
	audit       audit.Recorder
	storage     storage.StorageProvider
	dueSoonDays int
	now         func() time.Time
}

// NewService создает project сервис. recorder может быть nil
func NewService(db ydb.Database, catalog *catalog.Service, notifier notification.Sink, recorder audit.Recorder, storage storage.StorageProvider, cfg *config.Config) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	dueSoon := cfg.DueSoonDays
	if dueSoon <= 0 {
		dueSoon = 2
	}
	return &Service{
		db:          db,
		catalog:     catalog,
		notifier:    notifier,
		audit:       recorder,
		storage:     storage,
		dueSoonDays: dueSoon,
		now:         time.Now,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// load читает проект и проверяет, что актор имеет к нему доступ
func (s *Service) load(ctx context.Context, actor models.Actor, projectID string) (*ydb.Project, error) {
	if projectID == "" {
		return nil, app_errors.Validation("project id is required")
	}
	p, err := s.db.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, p) {
		return nil, app_errors.ErrNotProjectOwner
	}
	return p, nil
}

func canView(actor models.Actor, p *ydb.Project) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return p.CustomerID == actor.UserID
	case models.RoleEditor:
		return p.AssignedTo(actor.UserID)
	}
	return false
}

func (s *Service) notify(ctx context.Context, userID string, nType models.NotificationType, priority models.NotificationPriority, p *ydb.Project, title, message string) {
	if s.notifier == nil || userID == "" {
		return
	}
	s.notifier.Notify(ctx, notification.Event{
		UserID:    userID,
		Type:      nType,
		Title:     title,
		Message:   message,
		ProjectID: p.ProjectID,
		Priority:  priority,
	})
}

func (s *Service) record(ctx context.Context, actor models.Actor, action models.AuditActionType, entityID string, details map[string]interface{}) {
	if err := s.audit.LogAction(ctx, audit.Entry{
		UserID:   actor.UserID,
		Role:     actor.Role,
		Action:   action,
		EntityID: entityID,
		Details:  details,
	}); err != nil {
		logger.FromContext(ctx).Warn("Failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

func editorOf(p *ydb.Project) string {
	if p.EditorID == nil {
		return ""
	}
	return *p.EditorID
}
