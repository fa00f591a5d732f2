package project

import (
	"context"
	"fmt"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/lifecycle"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Assign назначает монтажера на проект. Только администратор
func (s *Service) Assign(ctx context.Context, actor models.Actor, projectID, editorID string) (*ydb.Project, error) {
	if !lifecycle.Allowed(actor.Role, lifecycle.ActionAssign) {
		return nil, app_errors.Forbidden("only admins can assign editors")
	}
	if editorID == "" {
		return nil, app_errors.Validation("editor_id is required")
	}

	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	next, err := lifecycle.Next(p.Status, lifecycle.ActionAssign)
	if err != nil {
		return nil, err
	}

	// Предварительная проверка ради понятной ошибки; окончательная делается в транзакции
	editor, err := s.db.GetEditor(ctx, editorID)
	if err != nil {
		return nil, err
	}
	if !editor.IsAvailable || editor.ApplicationStatus != models.ApplicationApproved {
		return nil, app_errors.ErrEditorNotAvailable
	}
	if editor.CurrentWorkload >= editor.MaxConcurrentProjects {
		return nil, app_errors.ErrWorkloadExceeded
	}

	expected := p.Status
	now := s.timestamp()
	p.EditorID = &editorID
	p.AssignedBy = &actor.UserID
	p.AssignedAt = &now
	p.Status = next

	if err := s.db.AssignProjectTx(ctx, p, expected); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Editor assigned", "project_id", p.ProjectID, "editor_id", editorID)
	s.record(ctx, actor, models.AuditProjectAssigned, p.ProjectID, map[string]interface{}{"editor_id": editorID})
	s.notify(ctx, editorID, models.NotificationProjectAssigned, models.PriorityHigh, p,
		"New project assigned", fmt.Sprintf("You have been assigned to %q", p.Title))
	s.notify(ctx, p.CustomerID, models.NotificationProjectAssigned, models.PriorityMedium, p,
		"Editor assigned", fmt.Sprintf("An editor has been assigned to %q", p.Title))
	return p, nil
}

// UpdateStatus общий переход по графу статусов для монтажера и администратора.
// Переходы, требующие данных (назначение, черновик, правки), идут через свои операции
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, projectID string, req models.UpdateStatusRequest) (*ydb.Project, error) {
	if actor.IsCustomer() {
		return nil, app_errors.Forbidden("customers cannot change project status directly")
	}
	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	action, err := lifecycle.Authorize(actor.Role, p.Status, req.Status)
	if err != nil {
		return nil, err
	}

	switch action {
	case lifecycle.ActionStart:
		return s.start(ctx, actor, p)
	case lifecycle.ActionMarkFinal:
		return s.complete(ctx, actor, p)
	case lifecycle.ActionCancel:
		return s.cancel(ctx, actor, p, req.CancellationReason)
	}
	return nil, app_errors.InvalidState("%s is not supported by status update", action)
}

// Start монтажер начинает работу над проектом
func (s *Service) Start(ctx context.Context, actor models.Actor, projectID string) (*ydb.Project, error) {
	return s.UpdateStatus(ctx, actor, projectID, models.UpdateStatusRequest{Status: models.StatusInProgress})
}

// Cancel отмена проекта администратором
func (s *Service) Cancel(ctx context.Context, actor models.Actor, projectID, reason string) (*ydb.Project, error) {
	return s.UpdateStatus(ctx, actor, projectID, models.UpdateStatusRequest{
		Status:             models.StatusCancelled,
		CancellationReason: reason,
	})
}

func (s *Service) start(ctx context.Context, actor models.Actor, p *ydb.Project) (*ydb.Project, error) {
	if actor.IsEditor() && !p.AssignedTo(actor.UserID) {
		return nil, app_errors.ErrNotProjectOwner
	}
	expected := p.Status
	now := s.timestamp()
	p.Status = models.StatusInProgress
	p.StartedAt = &now

	if err := s.db.UpdateProjectTx(ctx, p, expected); err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.AuditProjectStatusChanged, p.ProjectID, statusDetails(expected, p.Status))
	s.notify(ctx, p.CustomerID, models.NotificationProjectStarted, models.PriorityMedium, p,
		"Editing started", fmt.Sprintf("Work on %q has started", p.Title))
	return p, nil
}

func (s *Service) cancel(ctx context.Context, actor models.Actor, p *ydb.Project, reason string) (*ydb.Project, error) {
	reason, err := validation.RequiredNote(reason, "cancellation_reason")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}
	expected := p.Status
	now := s.timestamp()
	p.Status = models.StatusCancelled
	p.CancelledAt = &now
	p.CancellationReason = &reason

	if err := s.db.CancelProjectTx(ctx, p, expected); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Project cancelled", "project_id", p.ProjectID, "from", expected)
	details := statusDetails(expected, p.Status)
	details["reason"] = reason
	s.record(ctx, actor, models.AuditProjectStatusChanged, p.ProjectID, details)

	msg := fmt.Sprintf("Project %q was cancelled: %s", p.Title, reason)
	s.notify(ctx, p.CustomerID, models.NotificationProjectCancelled, models.PriorityHigh, p, "Project cancelled", msg)
	s.notify(ctx, editorOf(p), models.NotificationProjectCancelled, models.PriorityHigh, p, "Project cancelled", msg)
	return p, nil
}

// UploadDraft монтажер загружает новую версию ролика и отправляет ее на проверку
func (s *Service) UploadDraft(ctx context.Context, actor models.Actor, projectID, uploadID string) (*ydb.Project, error) {
	if !lifecycle.Allowed(actor.Role, lifecycle.ActionSubmitDraft) {
		return nil, app_errors.Forbidden("only the assigned editor can upload drafts")
	}
	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	next, err := lifecycle.Next(p.Status, lifecycle.ActionSubmitDraft)
	if err != nil {
		return nil, err
	}
	ref, err := s.resolveUpload(ctx, p, uploadID, models.UploadEditedVideo)
	if err != nil {
		return nil, err
	}

	expected := p.Status
	p.EditedVideo = nextEditedVideo(p.EditedVideo, ref)
	if expected == models.StatusRevisionRequested {
		resolveLatestRevision(p.Revisions, s.timestamp())
	}
	p.Status = next

	if err := s.db.UpdateProjectTx(ctx, p, expected); err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.AuditDraftUploaded, p.ProjectID, map[string]interface{}{
		"upload_id": ref.UploadID,
		"version":   p.EditedVideo.Version,
	})
	s.notify(ctx, p.CustomerID, models.NotificationDraftSubmitted, models.PriorityHigh, p,
		"Draft ready for review", fmt.Sprintf("Version %d of %q is ready for review", p.EditedVideo.Version, p.Title))
	return p, nil
}

// MarkFinal закрывает проект и начисляет гонорар монтажеру.
// Повторный вызов падает с InvalidState и не начисляет гонорар дважды
func (s *Service) MarkFinal(ctx context.Context, actor models.Actor, projectID string) (*ydb.Project, error) {
	if !lifecycle.Allowed(actor.Role, lifecycle.ActionMarkFinal) {
		return nil, app_errors.Forbidden("role %s cannot mark projects final", actor.Role)
	}
	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := lifecycle.Next(p.Status, lifecycle.ActionMarkFinal); err != nil {
		return nil, err
	}
	return s.complete(ctx, actor, p)
}

func (s *Service) complete(ctx context.Context, actor models.Actor, p *ydb.Project) (*ydb.Project, error) {
	if actor.IsEditor() && !p.AssignedTo(actor.UserID) {
		return nil, app_errors.ErrNotProjectOwner
	}
	expected := p.Status
	now := s.timestamp()
	p.Status = models.StatusCompleted
	p.CompletedAt = &now
	p.ActualDelivery = &now
	p.EditorPaymentStatus = models.EditorPaymentProcessing

	if err := s.db.CompleteProjectTx(ctx, p, expected); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Project completed", "project_id", p.ProjectID, "editor_fee", p.EditorFee)
	s.record(ctx, actor, models.AuditProjectCompleted, p.ProjectID, map[string]interface{}{
		"editor_id":  editorOf(p),
		"editor_fee": p.EditorFee,
	})
	s.notify(ctx, p.CustomerID, models.NotificationProjectCompleted, models.PriorityHigh, p,
		"Project completed", fmt.Sprintf("The final cut of %q has been delivered", p.Title))
	return p, nil
}

// Rate заказчик оценивает завершенный проект, один раз
func (s *Service) Rate(ctx context.Context, actor models.Actor, projectID string, req models.RateProjectRequest) (*ydb.Project, error) {
	if !actor.IsCustomer() {
		return nil, app_errors.Forbidden("only the project owner can rate it")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, app_errors.Validation("rating must be between 1 and 5")
	}
	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusCompleted {
		return nil, app_errors.InvalidState("project can only be rated once completed")
	}
	if p.Rating != nil {
		return nil, app_errors.ErrAlreadyRated
	}

	feedback, err := validation.Note(req.Feedback, "feedback")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}
	rated, err := s.db.RateProjectTx(ctx, p.ProjectID, req.Rating, feedback)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.AuditProjectRated, p.ProjectID, map[string]interface{}{"rating": req.Rating})
	s.notify(ctx, editorOf(rated), models.NotificationRatingReceived, models.PriorityLow, rated,
		"New rating", fmt.Sprintf("%q was rated %d/5", rated.Title, req.Rating))
	return rated, nil
}

func statusDetails(from, to models.ProjectStatus) map[string]interface{} {
	return map[string]interface{}{"from": string(from), "to": string(to)}
}
