package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Create создает проект заказчика по пакету каталога. Квота правок, цена,
// гонорар монтажера и дедлайн вычисляются один раз здесь
func (s *Service) Create(ctx context.Context, actor models.Actor, req models.CreateProjectRequest) (*ydb.Project, error) {
	if !actor.IsCustomer() {
		return nil, app_errors.Forbidden("only customers can create projects")
	}
	title, err := validation.Title(req.Title, "title")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}
	description, err := validation.Note(req.Description, "description")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}
	instructions, err := validation.Note(req.EditingInstructions, "editing_instructions")
	if err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}
	if !req.PackageType.Valid() {
		return nil, app_errors.Validation("unknown package type %q", req.PackageType)
	}

	pkg, err := s.catalog.GetActive(ctx, req.PackageType)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	deadline := now.AddDate(0, 0, int(pkg.EstimatedDeliveryDays))
	requirements := req.SpecialRequirements
	if requirements == nil {
		requirements = []string{}
	}

	p := &ydb.Project{
		ProjectID:           uuid.New().String(),
		CustomerID:          actor.UserID,
		Title:               title,
		Description:         description,
		PackageType:         pkg.PackageType,
		EditingInstructions: instructions,
		SpecialRequirements: requirements,
		Status:              models.StatusPendingAssignment,
		RawFootage:          []models.FileRef{},
		Revisions:           []models.Revision{},
		MaxRevisions:        pkg.MaxRevisions,
		Deadline:            deadline,
		EstimatedDelivery:   deadline,
		TotalAmount:         pkg.BasePrice,
		PaymentStatus:       models.PaymentStatusPending,
		EditorFee:           s.catalog.EditorFee(pkg.BasePrice),
		EditorPaymentStatus: models.EditorPaymentPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.db.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logger.FromContext(ctx).Info("Project created", "project_id", p.ProjectID, "package", p.PackageType, "total", p.TotalAmount)
	s.record(ctx, actor, models.AuditProjectCreated, p.ProjectID, map[string]interface{}{
		"package_type": string(p.PackageType),
		"total_amount": p.TotalAmount,
	})
	return p, nil
}

// AddRawFootage заказчик прикрепляет исходник, пока монтаж не ушел на проверку
func (s *Service) AddRawFootage(ctx context.Context, actor models.Actor, projectID, uploadID string) (*ydb.Project, error) {
	if !actor.IsCustomer() {
		return nil, app_errors.Forbidden("only the project owner can add raw footage")
	}
	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case models.StatusPendingAssignment, models.StatusAssigned, models.StatusInProgress:
	default:
		return nil, app_errors.InvalidState("raw footage cannot be added while project is %s", p.Status)
	}

	ref, err := s.resolveUpload(ctx, p, uploadID, models.UploadRawFootage)
	if err != nil {
		return nil, err
	}
	for _, existing := range p.RawFootage {
		if existing.UploadID == ref.UploadID {
			return p, nil
		}
	}
	p.RawFootage = append(p.RawFootage, ref)

	if err := s.db.UpdateProjectTx(ctx, p, p.Status); err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.AuditRawFootageAdded, p.ProjectID, map[string]interface{}{"upload_id": ref.UploadID})
	return p, nil
}

// resolveUpload превращает завершенную загрузку проекта в ссылку на файл
func (s *Service) resolveUpload(ctx context.Context, p *ydb.Project, uploadID string, kind models.UploadKind) (models.FileRef, error) {
	if uploadID == "" {
		return models.FileRef{}, app_errors.Validation("upload_id is required")
	}
	up, err := s.db.GetUpload(ctx, uploadID)
	if err != nil {
		return models.FileRef{}, err
	}
	if up.ProjectID != p.ProjectID {
		return models.FileRef{}, app_errors.Validation("upload does not belong to this project")
	}
	if up.Kind != kind {
		return models.FileRef{}, app_errors.Validation("upload is %s, expected %s", up.Kind, kind)
	}
	if up.UploadStatus != ydb.UploadStatusCompleted || up.UploadedAt == nil {
		return models.FileRef{}, app_errors.InvalidState("upload is not completed")
	}
	return models.FileRef{
		UploadID:   up.UploadID,
		FileName:   up.FileName,
		SizeBytes:  up.FileSizeBytes,
		UploadedAt: *up.UploadedAt,
	}, nil
}

// Get возвращает проект владельцу, назначенному монтажеру или администратору
func (s *Service) Get(ctx context.Context, actor models.Actor, projectID string) (*ydb.Project, error) {
	return s.load(ctx, actor, projectID)
}

// List список проектов в пределах видимости актора
func (s *Service) List(ctx context.Context, actor models.Actor, filter models.ProjectFilter) (*models.ListResponse[*ydb.Project], error) {
	switch actor.Role {
	case models.RoleCustomer:
		filter.CustomerID = actor.UserID
		filter.EditorID = ""
		filter.Unassigned = false
	case models.RoleEditor:
		filter.EditorID = actor.UserID
		filter.CustomerID = ""
		filter.Unassigned = false
	case models.RoleAdmin:
	default:
		return nil, app_errors.ErrAccessDenied
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, app_errors.Validation("unknown project status %q", filter.Status)
	}
	filter.Limit, filter.Offset = page(filter.Limit, filter.Offset)

	items, total, err := s.db.ListProjects(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if items == nil {
		items = []*ydb.Project{}
	}
	return &models.ListResponse[*ydb.Project]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// ListUnassigned очередь проектов, ожидающих назначения
func (s *Service) ListUnassigned(ctx context.Context, actor models.Actor, limit, offset int) (*models.ListResponse[*ydb.Project], error) {
	if !actor.IsAdmin() {
		return nil, app_errors.ErrAccessDenied
	}
	return s.List(ctx, actor, models.ProjectFilter{
		Status:     models.StatusPendingAssignment,
		Unassigned: true,
		Limit:      limit,
		Offset:     offset,
	})
}

// DueSoon незавершенные проекты с дедлайном в ближайшие days дней.
// Монтажер видит только свои
func (s *Service) DueSoon(ctx context.Context, actor models.Actor, days int) ([]*ydb.Project, error) {
	if actor.IsCustomer() {
		return nil, app_errors.ErrAccessDenied
	}
	if days <= 0 {
		days = s.dueSoonDays
	}
	if days > 90 {
		return nil, app_errors.Validation("days must be at most 90")
	}
	editorID := ""
	if actor.IsEditor() {
		editorID = actor.UserID
	}

	projects, err := s.db.ListProjectsDueSoon(ctx, s.timestamp().Add(time.Duration(days)*24*time.Hour), editorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list due projects: %w", err)
	}
	active := make([]*ydb.Project, 0, len(projects))
	for _, p := range projects {
		if !p.Status.Terminal() {
			active = append(active, p)
		}
	}
	return active, nil
}

// Stats количество проектов по статусам в пределах видимости актора
func (s *Service) Stats(ctx context.Context, actor models.Actor) (*models.ProjectStats, error) {
	var filter models.ProjectFilter
	switch actor.Role {
	case models.RoleCustomer:
		filter.CustomerID = actor.UserID
	case models.RoleEditor:
		filter.EditorID = actor.UserID
	case models.RoleAdmin:
	default:
		return nil, app_errors.ErrAccessDenied
	}

	counts, err := s.db.CountProjectsByStatus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	stats := &models.ProjectStats{ByStatus: make(map[models.ProjectStatus]int64, len(models.AllProjectStatuses))}
	for _, st := range models.AllProjectStatuses {
		stats.ByStatus[st] = counts[st]
		stats.Total += counts[st]
	}
	return stats, nil
}

// DownloadURL подписанная ссылка на смонтированный ролик (which=edited) или исходник (which=raw)
func (s *Service) DownloadURL(ctx context.Context, actor models.Actor, projectID, which, uploadID string) (*models.DownloadURLResponse, error) {
	p, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	var ref *models.FileRef
	switch which {
	case "", "edited":
		if p.EditedVideo == nil {
			return nil, app_errors.NotFound("project has no edited video yet")
		}
		ref = &p.EditedVideo.FileRef
	case "raw":
		for i := range p.RawFootage {
			if uploadID == "" || p.RawFootage[i].UploadID == uploadID {
				ref = &p.RawFootage[i]
				break
			}
		}
		if ref == nil {
			return nil, app_errors.NotFound("raw footage not found")
		}
	default:
		return nil, app_errors.Validation("which must be edited or raw")
	}

	up, err := s.db.GetUpload(ctx, ref.UploadID)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, up.StoragePath, ref.FileName, downloadURLLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return &models.DownloadURLResponse{
		URL:       url,
		FileName:  ref.FileName,
		ExpiresAt: s.now().Add(downloadURLLifetime).Unix(),
	}, nil
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
