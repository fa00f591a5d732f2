package editor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/audit"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Допустимая нагрузка монтажера
const (
	minConcurrentProjects = 1
	maxConcurrentProjects = 10
)

// requiredDetails обязательные реквизиты для каждого способа выплаты
var requiredDetails = map[models.PayoutMethod][]string{
	models.PayoutBankTransfer: {"account_holder", "account_number", "ifsc"},
	models.PayoutUPI:          {"upi_id"},
	models.PayoutPayPal:       {"email"},
}

// Service справочник монтажеров: модерация заявок, доступность, реквизиты
type Service struct {
	db       ydb.Database
	notifier notification.Sink
	audit    audit.Recorder
}

// NewService создает editor сервис
func NewService(db ydb.Database, notifier notification.Sink, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{db: db, notifier: notifier, audit: recorder}
}

// ToProfile ролевая часть учетной записи монтажера
func ToProfile(e *ydb.Editor) models.EditorProfile {
	p := models.EditorProfile{
		Specializations:       e.Specializations,
		Bio:                   e.Bio,
		PortfolioURL:          e.PortfolioURL,
		ApplicationStatus:     e.ApplicationStatus,
		IsVerified:            e.IsVerified,
		IsAvailable:           e.IsAvailable,
		MaxConcurrentProjects: e.MaxConcurrentProjects,
		CurrentWorkload:       e.CurrentWorkload,
		AverageRating:         e.AverageRating,
		TotalReviews:          e.TotalReviews,
		TotalEarnings:         e.TotalEarnings,
		PendingEarnings:       e.PendingEarnings,
		HasPayoutAccount:      e.HasPayoutAccount(),
	}
	if e.PayoutMethod != nil {
		p.PayoutMethod = *e.PayoutMethod
	}
	if p.Specializations == nil {
		p.Specializations = []string{}
	}
	return p
}

// Get монтажер для администратора или для самого монтажера
func (s *Service) Get(ctx context.Context, actor models.Actor, editorID string) (*ydb.Editor, error) {
	if !actor.IsAdmin() && actor.UserID != editorID {
		return nil, app_errors.ErrAccessDenied
	}
	return s.db.GetEditor(ctx, editorID)
}

// List монтажеры по фильтру. Только администратор
func (s *Service) List(ctx context.Context, actor models.Actor, filter models.EditorFilter) (*models.ListResponse[*ydb.Editor], error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
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

	items, total, err := s.db.ListEditors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list editors: %w", err)
	}
	if items == nil {
		items = []*ydb.Editor{}
	}
	return &models.ListResponse[*ydb.Editor]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Approve одобряет заявку монтажера, только из pending
func (s *Service) Approve(ctx context.Context, actor models.Actor, editorID string) (*ydb.Editor, error) {
	e, err := s.pending(ctx, actor, editorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e.ApplicationStatus = models.ApplicationApproved
	e.ApprovedBy = &actor.UserID
	e.ApprovedAt = &now
	e.RejectionReason = nil
	e.IsVerified = true
	e.IsAvailable = true

	if err := s.db.UpdateEditorApplication(ctx, e, models.ApplicationPending); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Editor approved", "editor_id", e.EditorID, "admin_id", actor.UserID)
	s.record(ctx, actor, models.AuditEditorApproved, e.EditorID, nil)
	s.notify(ctx, e.EditorID, models.PriorityHigh, "Application approved", "Your editor application was approved. You can now receive projects.")
	return e, nil
}

// Reject отклоняет заявку монтажера с причиной, только из pending
func (s *Service) Reject(ctx context.Context, actor models.Actor, editorID, reason string) (*ydb.Editor, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, app_errors.Validation("reason is required")
	}
	e, err := s.pending(ctx, actor, editorID)
	if err != nil {
		return nil, err
	}

	e.ApplicationStatus = models.ApplicationRejected
	e.RejectionReason = &reason
	e.IsVerified = false
	e.IsAvailable = false

	if err := s.db.UpdateEditorApplication(ctx, e, models.ApplicationPending); err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.AuditEditorRejected, e.EditorID, map[string]interface{}{"reason": reason})
	s.notify(ctx, e.EditorID, models.PriorityHigh, "Application rejected", "Your editor application was rejected: "+reason)
	return e, nil
}

func (s *Service) pending(ctx context.Context, actor models.Actor, editorID string) (*ydb.Editor, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.Forbidden("only admins can review editor applications")
	}
	e, err := s.db.GetEditor(ctx, editorID)
	if err != nil {
		return nil, err
	}
	if e.ApplicationStatus != models.ApplicationPending {
		return nil, app_errors.InvalidState("editor application is already %s", e.ApplicationStatus)
	}
	return e, nil
}

// SetAvailability монтажер включает или выключает прием новых проектов
func (s *Service) SetAvailability(ctx context.Context, actor models.Actor, available bool) (*ydb.Editor, error) {
	if !actor.IsEditor() {
		return nil, app_errors.Forbidden("only editors can change availability")
	}
	e, err := s.db.GetEditor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if available && e.ApplicationStatus != models.ApplicationApproved {
		return nil, app_errors.InvalidState("editor application is %s", e.ApplicationStatus)
	}
	e.IsAvailable = available
	if err := s.db.UpdateEditorProfile(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update editor: %w", err)
	}
	return e, nil
}

// AdminUpdate администратор правит профиль монтажера. Открыть прием проектов
// можно только одобренному монтажеру
func (s *Service) AdminUpdate(ctx context.Context, actor models.Actor, editorID string, req models.UpdateEditorRequest) (*ydb.Editor, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.Forbidden("only admins can edit editor profiles")
	}
	e, err := s.db.GetEditor(ctx, editorID)
	if err != nil {
		return nil, err
	}

	changed := map[string]interface{}{}
	if req.Bio != nil {
		bio, err := validation.Note(*req.Bio, "bio")
		if err != nil {
			return nil, app_errors.Validation("%s", err.Error())
		}
		e.Bio = bio
		changed["bio"] = true
	}
	if req.PortfolioURL != nil {
		link := strings.TrimSpace(*req.PortfolioURL)
		if link != "" {
			u, err := url.Parse(link)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, app_errors.Validation("portfolio_url must be an http(s) link")
			}
		}
		e.PortfolioURL = link
		changed["portfolio_url"] = link
	}
	if req.Specializations != nil {
		specs := make([]string, 0, len(*req.Specializations))
		for _, v := range *req.Specializations {
			v, err := validation.SanitizeText(v, "specializations", false, validation.MaxTitleLength)
			if err != nil {
				return nil, app_errors.Validation("%s", err.Error())
			}
			if v != "" {
				specs = append(specs, v)
			}
		}
		e.Specializations = specs
		changed["specializations"] = specs
	}
	if req.MaxConcurrentProjects != nil {
		limit := *req.MaxConcurrentProjects
		if limit < minConcurrentProjects || limit > maxConcurrentProjects {
			return nil, app_errors.Validation("max_concurrent_projects must be between %d and %d", minConcurrentProjects, maxConcurrentProjects)
		}
		e.MaxConcurrentProjects = limit
		changed["max_concurrent_projects"] = limit
	}
	if req.IsAvailable != nil {
		if *req.IsAvailable && e.ApplicationStatus != models.ApplicationApproved {
			return nil, app_errors.InvalidState("editor application is %s", e.ApplicationStatus)
		}
		e.IsAvailable = *req.IsAvailable
		changed["is_available"] = *req.IsAvailable
	}
	if len(changed) == 0 {
		return e, nil
	}

	if err := s.db.UpdateEditorProfile(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update editor: %w", err)
	}
	logger.FromContext(ctx).Info("Editor profile updated by admin", "editor_id", e.EditorID, "admin_id", actor.UserID)
	s.record(ctx, actor, models.AuditEditorUpdated, e.EditorID, changed)
	return e, nil
}

// UpdatePayoutAccount сохраняет реквизиты для выплат. Уже созданные выплаты
// хранят свою копию и не меняются
func (s *Service) UpdatePayoutAccount(ctx context.Context, actor models.Actor, req models.PayoutAccountRequest) (*ydb.Editor, error) {
	if !actor.IsEditor() {
		return nil, app_errors.Forbidden("only editors have payout accounts")
	}
	details, err := ValidatePayoutAccount(req.Method, req.Details)
	if err != nil {
		return nil, err
	}

	e, err := s.db.GetEditor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	method := req.Method
	e.PayoutMethod = &method
	e.PayoutDetails = details
	if err := s.db.UpdateEditorProfile(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update payout account: %w", err)
	}

	s.record(ctx, actor, models.AuditPayoutAccountUpdated, e.EditorID, map[string]interface{}{"method": string(method)})
	return e, nil
}

// ValidatePayoutAccount проверяет способ выплаты и обязательные реквизиты
func ValidatePayoutAccount(method models.PayoutMethod, details map[string]string) (map[string]string, error) {
	if !method.Valid() {
		return nil, app_errors.Validation("unknown payout method %q", method)
	}
	clean := make(map[string]string, len(details))
	for k, v := range details {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if err := validation.ValidateXSS(v, k); err != nil {
			return nil, app_errors.Validation("%s", err.Error())
		}
		clean[k] = v
	}
	for _, key := range requiredDetails[method] {
		if clean[key] == "" {
			return nil, app_errors.Validation("%s is required for %s payouts", key, method)
		}
	}
	if method == models.PayoutPayPal {
		if err := validation.ValidateEmail(clean["email"], "email"); err != nil {
			return nil, app_errors.Validation("%s", err.Error())
		}
	}
	return clean, nil
}

func (s *Service) notify(ctx context.Context, editorID string, priority models.NotificationPriority, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notification.Event{
		UserID:   editorID,
		Type:     models.NotificationEditorApplication,
		Title:    title,
		Message:  message,
		Priority: priority,
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
