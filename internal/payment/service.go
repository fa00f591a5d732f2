package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/cutroom-backend/internal/audit"
	"github.com/lumiforge/cutroom-backend/internal/catalog"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/gateway"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// DefaultCurrency валюта платежа, если клиент ее не указал
const DefaultCurrency = "INR"

// Receipt платеж вместе с пересчитанным проектом
type Receipt struct {
	Payment *ydb.Payment `json:"payment"`
	Project *ydb.Project `json:"project,omitempty"`
}

// Service реализует платежный журнал: создание, подтверждение, отказ и возврат
type Service struct {
	db       ydb.Database
	catalog  *catalog.Service
	verifier gateway.Verifier
	notifier notification.Sink
	audit    audit.Recorder
	now      func() time.Time
}

// NewService создает payment сервис
func NewService(db ydb.Database, catalog *catalog.Service, verifier gateway.Verifier, notifier notification.Sink, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		db:       db,
		catalog:  catalog,
		verifier: verifier,
		notifier: notifier,
		audit:    recorder,
		now:      time.Now,
	}
}

// AmountDue сумма к оплате: остаток для full и milestone, аванс для advance
// (не больше остатка)
func (s *Service) AmountDue(p *ydb.Project, paymentType models.PaymentType) (int64, error) {
	remaining := p.TotalAmount - p.PaidAmount
	switch paymentType {
	case models.PaymentTypeFull, models.PaymentTypeMilestone:
		return remaining, nil
	case models.PaymentTypeAdvance:
		advance := s.catalog.AdvanceAmount(p.TotalAmount)
		if advance > remaining {
			advance = remaining
		}
		return advance, nil
	case models.PaymentTypeRefund:
		return 0, app_errors.Validation("refunds are issued through the refund operation")
	}
	return 0, app_errors.Validation("unknown payment type %q", paymentType)
}

// Initiate создает pending-платеж по проекту заказчика
func (s *Service) Initiate(ctx context.Context, actor models.Actor, req models.InitiatePaymentRequest) (*ydb.Payment, error) {
	if !actor.IsCustomer() {
		return nil, app_errors.Forbidden("only customers can pay for projects")
	}
	if !req.Gateway.Valid() {
		return nil, app_errors.Validation("unknown gateway %q", req.Gateway)
	}

	p, err := s.db.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.CustomerID != actor.UserID {
		return nil, app_errors.ErrNotProjectOwner
	}
	if p.Status == models.StatusCancelled {
		return nil, app_errors.InvalidState("cannot pay for a cancelled project")
	}

	amount, err := s.AmountDue(p, req.PaymentType)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, app_errors.ErrNothingToPay
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	payment := &ydb.Payment{
		PaymentID:   uuid.New().String(),
		ProjectID:   p.ProjectID,
		UserID:      actor.UserID,
		Amount:      amount,
		Currency:    currency,
		PaymentType: req.PaymentType,
		Gateway:     req.Gateway,
		OrderID:     "order_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20],
		Status:      models.PaymentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	logger.FromContext(ctx).Info("Payment initiated", "payment_id", payment.PaymentID, "project_id", p.ProjectID, "amount", amount)
	s.record(ctx, actor, models.AuditPaymentInitiated, models.AuditResultSuccess, payment.PaymentID, map[string]interface{}{
		"project_id": p.ProjectID,
		"amount":     amount,
		"type":       string(req.PaymentType),
		"gateway":    string(req.Gateway),
	})
	return payment, nil
}

// Get платеж владельцу или администратору
func (s *Service) Get(ctx context.Context, actor models.Actor, paymentID string) (*ydb.Payment, error) {
	payment, err := s.db.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && payment.UserID != actor.UserID {
		return nil, app_errors.ErrAccessDenied
	}
	return payment, nil
}

// Verify проверяет подпись шлюза и проводит платеж: paid_amount проекта
// увеличивается в той же транзакции
func (s *Service) Verify(ctx context.Context, actor models.Actor, req models.VerifyPaymentRequest) (*Receipt, error) {
	payment, err := s.Get(ctx, actor, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, app_errors.InvalidState("payment is %s, only pending payments can be verified", payment.Status)
	}
	if s.verifier.RequiresAdmin(payment.Gateway) && !actor.IsAdmin() {
		return nil, app_errors.Forbidden("%s payments must be confirmed by an admin", payment.Gateway)
	}
	if err := s.verifier.Verify(payment.Gateway, payment.OrderID, req.GatewayConfirmation); err != nil {
		logger.FromContext(ctx).Warn("Payment verification failed", "payment_id", payment.PaymentID, "gateway", payment.Gateway, "error", err)
		s.record(ctx, actor, models.AuditPaymentVerified, models.AuditResultFailure, payment.PaymentID, map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if req.GatewayPaymentID != "" {
		gwID := req.GatewayPaymentID
		payment.GatewayPaymentID = &gwID
	}
	if req.Signature != "" {
		sig := req.Signature
		payment.GatewaySignature = &sig
	}
	if req.Method != "" {
		method := req.Method
		payment.PaymentMethod = &method
	}
	if len(req.Details) > 0 {
		payment.GatewayDetails = req.Details
	}

	project, err := s.db.CompletePaymentTx(ctx, payment)
	if err != nil {
		if app_errors.Is(err, app_errors.KindInvalidState) {
			logger.FromContext(ctx).Warn("Payment rejected, project balance already covered", "payment_id", payment.PaymentID, "project_id", payment.ProjectID, "amount", payment.Amount)
			s.record(ctx, actor, models.AuditPaymentVerified, models.AuditResultFailure, payment.PaymentID, map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("Payment completed", "payment_id", payment.PaymentID, "project_id", project.ProjectID, "paid_amount", project.PaidAmount)
	s.record(ctx, actor, models.AuditPaymentVerified, models.AuditResultSuccess, payment.PaymentID, map[string]interface{}{
		"project_id":     project.ProjectID,
		"paid_amount":    project.PaidAmount,
		"payment_status": string(project.PaymentStatus),
	})
	s.notify(ctx, payment.UserID, models.NotificationPaymentReceived, models.PriorityMedium, project.ProjectID,
		"Payment received", fmt.Sprintf("We received %d %s for %q", payment.Amount, payment.Currency, project.Title))
	return &Receipt{Payment: payment, Project: project}, nil
}

// Fail отмечает pending-платеж неуспешным
func (s *Service) Fail(ctx context.Context, actor models.Actor, paymentID, reason string) (*ydb.Payment, error) {
	payment, err := s.Get(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, app_errors.InvalidState("payment is %s, only pending payments can fail", payment.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "payment failed"
	}
	payment.FailureReason = &reason

	if err := s.db.FailPayment(ctx, payment); err != nil {
		return nil, err
	}
	s.record(ctx, actor, models.AuditPaymentFailed, models.AuditResultSuccess, payment.PaymentID, map[string]interface{}{"reason": reason})
	return payment, nil
}

// Refund возврат по проведенному платежу. Проект перечитывается внутри транзакции
func (s *Service) Refund(ctx context.Context, actor models.Actor, paymentID string, req models.RefundPaymentRequest) (*Receipt, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.Forbidden("only admins can issue refunds")
	}
	if req.Amount <= 0 {
		return nil, app_errors.Validation("refund amount must be positive")
	}
	reason, err := validation.RequiredNote(req.Reason, "reason")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}

	payment, err := s.db.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentCompleted {
		return nil, app_errors.InvalidState("payment is %s, only completed payments can be refunded", payment.Status)
	}
	if req.Amount > payment.Amount {
		return nil, app_errors.ErrRefundExceedsAmount
	}

	amount := req.Amount
	txID := "rfnd_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
	payment.RefundAmount = &amount
	payment.RefundReason = &reason
	payment.RefundTransactionID = &txID

	project, err := s.db.RefundPaymentTx(ctx, payment)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Payment refunded", "payment_id", payment.PaymentID, "amount", amount, "paid_amount", project.PaidAmount)
	s.record(ctx, actor, models.AuditPaymentRefunded, models.AuditResultSuccess, payment.PaymentID, map[string]interface{}{
		"project_id": project.ProjectID,
		"amount":     amount,
		"reason":     reason,
	})
	s.notify(ctx, payment.UserID, models.NotificationPaymentRefunded, models.PriorityHigh, project.ProjectID,
		"Refund issued", fmt.Sprintf("%d %s was refunded for %q", amount, payment.Currency, project.Title))
	return &Receipt{Payment: payment, Project: project}, nil
}

// List платежи: заказчик видит свои, администратор все
func (s *Service) List(ctx context.Context, actor models.Actor, filter models.PaymentFilter) (*models.ListResponse[*ydb.Payment], error) {
	switch actor.Role {
	case models.RoleCustomer:
		filter.UserID = actor.UserID
	case models.RoleAdmin:
	default:
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

	items, total, err := s.db.ListPayments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if items == nil {
		items = []*ydb.Payment{}
	}
	return &models.ListResponse[*ydb.Payment]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Stats количество и сумма платежей по статусам
func (s *Service) Stats(ctx context.Context, actor models.Actor) (*models.PaymentStats, error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}
	stats, err := s.db.PaymentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment stats: %w", err)
	}
	return stats, nil
}

func (s *Service) notify(ctx context.Context, userID string, nType models.NotificationType, priority models.NotificationPriority, projectID, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notification.Event{
		UserID:    userID,
		Type:      nType,
		Title:     title,
		Message:   message,
		ProjectID: projectID,
		Priority:  priority,
	})
}

func (s *Service) record(ctx context.Context, actor models.Actor, action models.AuditActionType, result models.AuditActionResult, entityID string, details map[string]interface{}) {
	if err := s.audit.LogAction(ctx, audit.Entry{
		UserID:   actor.UserID,
		Role:     actor.Role,
		Action:   action,
		Result:   result,
		EntityID: entityID,
		Details:  details,
	}); err != nil {
		logger.FromContext(ctx).Warn("Failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}
