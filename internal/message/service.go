package message

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumiforge/cutroom-backend/internal/audit"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// previewLength длина фрагмента сообщения в уведомлении
const previewLength = 120

// Service переписка заказчика и монтажера в рамках проекта
type Service struct {
	db       ydb.Database
	notifier notification.Sink
	audit    audit.Recorder
	now      func() time.Time
}

// NewService создает сервис сообщений
func NewService(db ydb.Database, notifier notification.Sink, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{db: db, notifier: notifier, audit: recorder, now: time.Now}
}

// Send отправляет сообщение второй стороне проекта. Писать могут только
// владелец проекта и назначенный монтажер
func (s *Service) Send(ctx context.Context, actor models.Actor, req models.SendMessageRequest) (*ydb.Message, error) {
	content, err := validation.RequiredNote(req.Content, "content")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}
	p, err := s.project(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	var counterparty string
	switch {
	case actor.IsCustomer() && p.CustomerID == actor.UserID:
		if p.EditorID == nil || *p.EditorID == "" {
			return nil, app_errors.InvalidState("project has no editor assigned yet")
		}
		counterparty = *p.EditorID
	case actor.IsEditor() && p.AssignedTo(actor.UserID):
		counterparty = p.CustomerID
	default:
		return nil, app_errors.ErrNotProjectOwner
	}

	receiver := strings.TrimSpace(req.ReceiverID)
	if receiver == "" {
		receiver = counterparty
	}
	if receiver != counterparty {
		return nil, app_errors.Validation("receiver must be the other participant of the project")
	}

	m := &ydb.Message{
		MessageID:   uuid.New().String(),
		ProjectID:   p.ProjectID,
		SenderID:    actor.UserID,
		ReceiverID:  receiver,
		MessageType: models.MessageText,
		Content:     content,
		CreatedAt:   s.now().UTC(),
	}

	if req.AttachmentID != "" {
		ref, err := s.attachment(ctx, p.ProjectID, req.AttachmentID)
		if err != nil {
			return nil, err
		}
		m.Attachment = ref
		m.MessageType = models.MessageFile
	}

	if err := s.db.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	logger.FromContext(ctx).Info("Message sent",
		"message_id", m.MessageID, "project_id", m.ProjectID, "sender_id", m.SenderID, "receiver_id", m.ReceiverID)
	s.record(ctx, actor, m.MessageID, map[string]interface{}{
		"project_id":  m.ProjectID,
		"receiver_id": m.ReceiverID,
		"type":        string(m.MessageType),
	})

	if s.notifier != nil {
		s.notifier.Notify(ctx, notification.Event{
			UserID:    m.ReceiverID,
			Type:      models.NotificationNewMessage,
			Title:     "New message on " + p.Title,
			Message:   preview(content),
			ProjectID: p.ProjectID,
			Priority:  models.PriorityMedium,
		})
	}
	return m, nil
}

// ProjectMessages переписка по проекту в хронологическом порядке. Входящие
// сообщения читающего отмечаются прочитанными
func (s *Service) ProjectMessages(ctx context.Context, actor models.Actor, projectID string, limit, offset int) (*models.ListResponse[*ydb.Message], error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !participant(actor, p) {
		return nil, app_errors.ErrNotProjectOwner
	}

	filter := models.MessageFilter{ProjectID: p.ProjectID, Limit: limit, Offset: offset}
	normalize(&filter)
	items, total, err := s.db.ListMessages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if items == nil {
		items = []*ydb.Message{}
	}

	if hasUnreadFor(items, actor.UserID) {
		if err := s.db.MarkProjectMessagesRead(ctx, p.ProjectID, actor.UserID); err != nil {
			logger.FromContext(ctx).Warn("Failed to mark project messages read",
				"project_id", p.ProjectID, "user_id", actor.UserID, "error", err)
		}
	}
	return &models.ListResponse[*ydb.Message]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// List сообщения пользователя по всем проектам, новые первыми
func (s *Service) List(ctx context.Context, actor models.Actor, unreadOnly bool, limit, offset int) (*models.ListResponse[*ydb.Message], error) {
	if actor.UserID == "" {
		return nil, app_errors.Validation("user id is required")
	}
	filter := models.MessageFilter{UserID: actor.UserID, UnreadOnly: unreadOnly, Limit: limit, Offset: offset}
	normalize(&filter)

	items, total, err := s.db.ListMessages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if items == nil {
		items = []*ydb.Message{}
	}
	return &models.ListResponse[*ydb.Message]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// UnreadCount количество непрочитанных входящих сообщений
func (s *Service) UnreadCount(ctx context.Context, userID string) (*models.UnreadCountResponse, error) {
	count, err := s.db.CountUnreadMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return &models.UnreadCountResponse{Count: count}, nil
}

// MarkRead отмечает входящее сообщение прочитанным
func (s *Service) MarkRead(ctx context.Context, actor models.Actor, messageID string) error {
	if messageID == "" {
		return app_errors.Validation("message id is required")
	}
	return s.db.MarkMessageRead(ctx, actor.UserID, messageID)
}

// MarkProjectRead отмечает прочитанными все входящие сообщения по проекту
func (s *Service) MarkProjectRead(ctx context.Context, actor models.Actor, projectID string) error {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return err
	}
	if !participant(actor, p) {
		return app_errors.ErrNotProjectOwner
	}
	if err := s.db.MarkProjectMessagesRead(ctx, p.ProjectID, actor.UserID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (s *Service) project(ctx context.Context, projectID string) (*ydb.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, app_errors.Validation("project id is required")
	}
	return s.db.GetProject(ctx, projectID)
}

// attachment вложение должно быть завершенной загрузкой того же проекта
func (s *Service) attachment(ctx context.Context, projectID, uploadID string) (*models.FileRef, error) {
	u, err := s.db.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if u.ProjectID != projectID {
		return nil, app_errors.Validation("attachment belongs to another project")
	}
	if u.UploadStatus != ydb.UploadStatusCompleted || u.UploadedAt == nil {
		return nil, app_errors.InvalidState("attachment upload is not completed")
	}
	return &models.FileRef{
		UploadID:   u.UploadID,
		FileName:   u.FileName,
		SizeBytes:  u.FileSizeBytes,
		UploadedAt: *u.UploadedAt,
	}, nil
}

func (s *Service) record(ctx context.Context, actor models.Actor, messageID string, details map[string]interface{}) {
	if err := s.audit.LogAction(ctx, audit.Entry{
		UserID:   actor.UserID,
		Role:     actor.Role,
		Action:   models.AuditMessageSent,
		EntityID: messageID,
		Details:  details,
	}); err != nil {
		logger.FromContext(ctx).Warn("Failed to record audit entry", "action", models.AuditMessageSent, "entity_id", messageID, "error", err)
	}
}

// participant владелец, назначенный монтажер или администратор
func participant(actor models.Actor, p *ydb.Project) bool {
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

func hasUnreadFor(items []*ydb.Message, userID string) bool {
	for _, m := range items {
		if m.ReceiverID == userID && !m.IsRead {
			return true
		}
	}
	return false
}

func normalize(f *models.MessageFilter) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

func preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLength {
		return content
	}
	return string(r[:previewLength]) + "..."
}
