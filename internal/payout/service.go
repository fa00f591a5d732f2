package payout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/cutroom-backend/internal/audit"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// maxBatch предел проектов в одной выплате и в одном запросе проектов
const maxBatch = 100

// transitions допустимые переходы статуса выплаты
var transitions = map[models.PayoutStatus][]models.PayoutStatus{
	models.PayoutPending:    {models.PayoutProcessing, models.PayoutCompleted, models.PayoutFailed, models.PayoutCancelled},
	models.PayoutProcessing: {models.PayoutCompleted, models.PayoutFailed},
}

// CanTransition допустим ли переход выплаты from -> to
func CanTransition(from, to models.PayoutStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Service реализует журнал выплат монтажерам
type Service struct {
	db       ydb.Database
	notifier notification.Sink
	audit    audit.Recorder
}

// NewService создает payout сервис
func NewService(db ydb.Database, notifier notification.Sink, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{db: db, notifier: notifier, audit: recorder}
}

// SelectEligible оставляет проекты монтажера, гонорар по которым еще не выплачен
// и не входит в действующую выплату. Результат отсортирован по completed_at
func SelectEligible(editorID string, projects []*ydb.Project) []models.PayoutItem {
	items := make([]models.PayoutItem, 0, len(projects))
	for _, p := range projects {
		if !p.AssignedTo(editorID) || !p.PayoutEligible() || p.CompletedAt == nil {
			continue
		}
		items = append(items, models.PayoutItem{
			ProjectID:   p.ProjectID,
			Amount:      p.EditorFee,
			CompletedAt: *p.CompletedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CompletedAt.Before(items[j].CompletedAt) })
	return items
}

// Create собирает выплату из переданных проектов. Неподходящие проекты молча
// исключаются, реквизиты монтажера копируются в выплату
func (s *Service) Create(ctx context.Context, actor models.Actor, req models.CreatePayoutRequest) (*ydb.Payout, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.Forbidden("only admins can create payouts")
	}
	if req.EditorID == "" {
		return nil, app_errors.Validation("editor_id is required")
	}
	ids := dedupe(req.ProjectIDs)
	if len(ids) == 0 {
		return nil, app_errors.Validation("project_ids must not be empty")
	}
	if len(ids) > maxBatch {
		return nil, app_errors.Validation("at most %d projects per payout", maxBatch)
	}
	if req.Method != "" && !req.Method.Valid() {
		return nil, app_errors.Validation("unknown payout method %q", req.Method)
	}

	editor, err := s.db.GetEditor(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	projects, err := s.db.GetProjectsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	items := SelectEligible(editor.EditorID, projects)
	if len(items) == 0 {
		return nil, app_errors.ErrNoEligibleProjects
	}
	if !editor.HasPayoutAccount() {
		return nil, app_errors.ErrNoPayoutAccount
	}

	method := *editor.PayoutMethod
	if req.Method != "" && req.Method != method {
		return nil, app_errors.Validation("editor account is configured for %s, not %s", method, req.Method)
	}

	var total int64
	for _, it := range items {
		total += it.Amount
	}
	details := make(map[string]string, len(editor.PayoutDetails))
	for k, v := range editor.PayoutDetails {
		details[k] = v
	}

	payout := &ydb.Payout{
		PayoutID:       uuid.New().String(),
		EditorID:       editor.EditorID,
		Items:          items,
		TotalAmount:    total,
		PeriodStart:    items[0].CompletedAt,
		PeriodEnd:      items[len(items)-1].CompletedAt,
		PaymentMethod:  method,
		AccountDetails: details,
		Status:         models.PayoutPending,
		CreatedBy:      actor.UserID,
	}
	if err := s.db.CreatePayoutTx(ctx, payout); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Payout created", "payout_id", payout.PayoutID, "editor_id", editor.EditorID, "projects", len(items), "total", total)
	s.record(ctx, actor, models.AuditPayoutCreated, payout.PayoutID, map[string]interface{}{
		"editor_id":    editor.EditorID,
		"project_ids":  payout.ProjectIDs(),
		"total_amount": total,
	})
	s.notify(ctx, editor.EditorID, models.NotificationPayoutCreated, models.PriorityMedium,
		"Payout scheduled", fmt.Sprintf("A payout of %d for %d project(s) has been scheduled", total, len(items)))
	return payout, nil
}

// UpdateStatus переводит выплату по допустимому ребру. Завершение переводит
// проекты в paid, отказ и отмена возвращают их в пул для следующей выплаты
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, payoutID string, req models.UpdatePayoutStatusRequest) (*ydb.Payout, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.Forbidden("only admins can update payouts")
	}
	payout, err := s.db.GetPayout(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(payout.Status, req.Status) {
		return nil, app_errors.InvalidState("payout cannot move from %s to %s", payout.Status, req.Status)
	}

	expected := payout.Status
	now := time.Now().UTC().Truncate(time.Microsecond)
	payout.Status = req.Status
	if ref := strings.TrimSpace(req.TransactionReference); ref != "" {
		payout.TransactionReference = &ref
	}
	switch req.Status {
	case models.PayoutCompleted:
		payout.ProcessedAt = &now
	case models.PayoutFailed, models.PayoutCancelled:
		reason := strings.TrimSpace(req.FailureReason)
		if reason == "" && req.Status == models.PayoutFailed {
			return nil, app_errors.Validation("failure_reason is required")
		}
		if reason != "" {
			payout.FailureReason = &reason
		}
		payout.ProcessedAt = &now
	}

	if err := s.db.UpdatePayoutStatusTx(ctx, payout, expected); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Payout status changed", "payout_id", payout.PayoutID, "from", expected, "to", payout.Status)
	s.record(ctx, actor, models.AuditPayoutStatusChanged, payout.PayoutID, map[string]interface{}{
		"from": string(expected),
		"to":   string(payout.Status),
	})

	switch payout.Status {
	case models.PayoutCompleted:
		s.notify(ctx, payout.EditorID, models.NotificationPayoutProcessed, models.PriorityHigh,
			"Payout sent", fmt.Sprintf("Your payout of %d has been sent", payout.TotalAmount))
	case models.PayoutFailed:
		s.notify(ctx, payout.EditorID, models.NotificationPayoutFailed, models.PriorityUrgent,
			"Payout failed", fmt.Sprintf("Your payout of %d failed: %s", payout.TotalAmount, *payout.FailureReason))
	case models.PayoutCancelled:
		s.notify(ctx, payout.EditorID, models.NotificationPayoutFailed, models.PriorityMedium,
			"Payout cancelled", fmt.Sprintf("Your payout of %d was cancelled, the projects will be included in a later payout", payout.TotalAmount))
	}
	return payout, nil
}

// Get выплата монтажеру-получателю или администратору
func (s *Service) Get(ctx context.Context, actor models.Actor, payoutID string) (*ydb.Payout, error) {
	payout, err := s.db.GetPayout(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && payout.EditorID != actor.UserID {
		return nil, app_errors.ErrAccessDenied
	}
	return payout, nil
}

// List выплаты: монтажер видит свои, администратор все
func (s *Service) List(ctx context.Context, actor models.Actor, filter models.PayoutFilter) (*models.ListResponse[*ydb.Payout], error) {
	switch actor.Role {
	case models.RoleEditor:
		filter.EditorID = actor.UserID
	case models.RoleAdmin:
	default:
		return nil, app_errors.ErrAccessDenied
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > maxBatch {
		filter.Limit = maxBatch
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := s.db.ListPayouts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	if items == nil {
		items = []*ydb.Payout{}
	}
	return &models.ListResponse[*ydb.Payout]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// PendingEarnings завершенные проекты монтажера, которые можно включить в выплату
func (s *Service) PendingEarnings(ctx context.Context, actor models.Actor, editorID string) (*models.PendingEarningsResponse, error) {
	if actor.IsEditor() {
		editorID = actor.UserID
	} else if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}
	if editorID == "" {
		return nil, app_errors.Validation("editor_id is required")
	}

	var completed []*ydb.Project
	for offset := 0; ; offset += maxBatch {
		page, total, err := s.db.ListProjects(ctx, models.ProjectFilter{
			EditorID: editorID,
			Status:   models.StatusCompleted,
			Limit:    maxBatch,
			Offset:   offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list completed projects: %w", err)
		}
		completed = append(completed, page...)
		if len(page) < maxBatch || int64(offset+len(page)) >= total {
			break
		}
	}

	items := SelectEligible(editorID, completed)
	resp := &models.PendingEarningsResponse{EditorID: editorID, Items: items}
	for _, it := range items {
		resp.Total += it.Amount
	}
	return resp, nil
}

func (s *Service) notify(ctx context.Context, userID string, nType models.NotificationType, priority models.NotificationPriority, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notification.Event{
		UserID:   userID,
		Type:     nType,
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

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
