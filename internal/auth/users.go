package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/validation"
)

// ListUsers учетные записи для администратора
func (s *Service) ListUsers(ctx context.Context, actor models.Actor, filter models.UserFilter) (*models.ListResponse[models.UserInfo], error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, app_errors.Validation("unknown role %q", filter.Role)
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, total, err := s.db.ListUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	items := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		items = append(items, userInfo(u))
	}
	return &models.ListResponse[models.UserInfo]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// GetUser учетная запись с ролевым профилем
func (s *Service) GetUser(ctx context.Context, actor models.Actor, userID string) (*models.Account, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}
	return s.GetProfile(ctx, userID)
}

// SetSuspended блокирует или восстанавливает учетную запись. Блокировка
// отзывает refresh токены и снимает монтажера с приема проектов. Выданные
// access токены действуют до истечения срока
func (s *Service) SetSuspended(ctx context.Context, actor models.Actor, userID string, req models.SuspendUserRequest) (*models.UserInfo, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}
	if userID == actor.UserID {
		return nil, app_errors.ErrCannotManageSelf
	}
	reason := strings.TrimSpace(req.Reason)
	if req.Suspended {
		if reason == "" {
			return nil, app_errors.ErrSuspendReasonMissing
		}
		var err error
		if reason, err = validation.RequiredNote(reason, "reason"); err != nil {
			return nil, app_errors.Validation("%s", err.Error())
		}
	}

	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive == !req.Suspended {
		info := userInfo(user)
		return &info, nil
	}

	user.IsActive = !req.Suspended
	user.UpdatedAt = time.Now()
	if err := s.db.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log := logger.FromContext(ctx)
	action := models.AuditUserReactivated
	if req.Suspended {
		action = models.AuditUserSuspended
		if err := s.db.RevokeUserRefreshTokens(ctx, user.UserID); err != nil {
			log.Warn("Failed to revoke refresh tokens of suspended user", "user_id", user.UserID, "error", err)
		}
		if user.Role == models.RoleEditor {
			s.pauseEditor(ctx, user.UserID)
		}
	}

	log.Info("User suspension changed", "user_id", user.UserID, "suspended", req.Suspended, "admin_id", actor.UserID)
	details := map[string]interface{}{"role": string(user.Role)}
	if reason != "" {
		details["reason"] = reason
	}
	s.record(ctx, actor.UserID, actor.Role, action, user.UserID, details)
	s.notifySuspension(ctx, user.UserID, req.Suspended, reason)

	info := userInfo(user)
	return &info, nil
}

// DeleteUser удаляет учетную запись без проектов. Учетные записи с
// историей проектов можно только заблокировать
func (s *Service) DeleteUser(ctx context.Context, actor models.Actor, userID string) error {
	if !actor.IsAdmin() {
		return app_errors.ErrAccessDenied
	}
	if userID == actor.UserID {
		return app_errors.ErrCannotManageSelf
	}

	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.db.DeleteUserTx(ctx, user.UserID); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("User deleted", "user_id", user.UserID, "role", user.Role, "admin_id", actor.UserID)
	s.record(ctx, actor.UserID, actor.Role, models.AuditUserDeleted, user.UserID, map[string]interface{}{
		"role":  string(user.Role),
		"email": user.Email,
	})
	return nil
}

// pauseEditor снимает заблокированного монтажера с приема новых проектов
func (s *Service) pauseEditor(ctx context.Context, editorID string) {
	log := logger.FromContext(ctx)
	e, err := s.db.GetEditor(ctx, editorID)
	if err != nil {
		log.Warn("Failed to load editor of suspended user", "user_id", editorID, "error", err)
		return
	}
	if !e.IsAvailable {
		return
	}
	e.IsAvailable = false
	if err := s.db.UpdateEditorProfile(ctx, e); err != nil {
		log.Warn("Failed to pause suspended editor", "user_id", editorID, "error", err)
	}
}

func (s *Service) notifySuspension(ctx context.Context, userID string, suspended bool, reason string) {
	if s.notifier == nil {
		return
	}
	ev := notification.Event{
		UserID:   userID,
		Type:     models.NotificationSystem,
		Title:    "Account reactivated",
		Message:  "Your account has been reactivated.",
		Priority: models.PriorityHigh,
	}
	if suspended {
		ev.Title = "Account suspended"
		ev.Message = "Your account has been suspended: " + reason
		ev.Priority = models.PriorityUrgent
	}
	s.notifier.Notify(ctx, ev)
}
