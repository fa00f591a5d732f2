package project

import (
	"context"
	"fmt"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/lifecycle"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// QuotaLeft сколько правок еще доступно. -1 означает отсутствие лимита
func QuotaLeft(p *ydb.Project) int32 {
	if p.MaxRevisions == models.UnlimitedRevisions {
		return models.UnlimitedRevisions
	}
	left := p.MaxRevisions - p.RevisionsUsed
	if left < 0 {
		return 0
	}
	return left
}

// CheckRevision проверяет, можно ли сейчас запросить правки.
// Статус проверяется раньше квоты
func CheckRevision(p *ydb.Project) error {
	if !lifecycle.Can(p.Status, lifecycle.ActionRequestRevision) {
		return app_errors.InvalidState("revisions can only be requested while the project is ready for review (current: %s)", p.Status)
	}
	if QuotaLeft(p) == 0 {
		return app_errors.ErrRevisionQuotaExceeded
	}
	return nil
}

// appendRevision добавляет запись о правке и увеличивает счетчик
func appendRevision(p *ydb.Project, feedback string, now time.Time) models.Revision {
	rev := models.Revision{
		RevisionNumber: p.RevisionsUsed + 1,
		Feedback:       feedback,
		RequestedAt:    now,
	}
	p.Revisions = append(p.Revisions, rev)
	p.RevisionsUsed++
	return rev
}

// resolveLatestRevision закрывает последнюю открытую правку при загрузке новой версии
func resolveLatestRevision(revs []models.Revision, now time.Time) {
	for i := len(revs) - 1; i >= 0; i-- {
		if revs[i].ResolvedAt == nil {
			resolved := now
			revs[i].ResolvedAt = &resolved
			return
		}
	}
}

// nextEditedVideo новая версия ролика, нумерация с 1
func nextEditedVideo(prev *models.EditedVideo, ref models.FileRef) *models.EditedVideo {
	version := int32(1)
	if prev != nil {
		version = prev.Version + 1
	}
	return &models.EditedVideo{FileRef: ref, Version: version}
}

// RequestRevision заказчик отправляет проект на доработку, расходуя квоту правок
func (s *Service) RequestRevision(ctx context.Context, actor models.Actor, projectID, feedback string) (*ydb.Project, error) {
	if !lifecycle.Allowed(actor.Role, lifecycle.ActionRequestRevision) {
		return nil, app_errors.Forbidden("only the project owner can request revisions")
	}
	feedback, err := validation.RequiredNote(feedback, "feedback")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}

	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if err := CheckRevision(p); err != nil {
		return nil, err
	}

	expected := p.Status
	rev := appendRevision(p, feedback, s.timestamp())
	p.Status = models.StatusRevisionRequested

	if err := s.db.UpdateProjectTx(ctx, p, expected); err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.AuditRevisionRequested, p.ProjectID, map[string]interface{}{
		"revision_number": rev.RevisionNumber,
	})
	s.notify(ctx, editorOf(p), models.NotificationRevisionRequested, models.PriorityHigh, p,
		"Revision requested", fmt.Sprintf("Revision #%d requested for %q", rev.RevisionNumber, p.Title))
	return p, nil
}
