package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/storage"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

const (
	// MaxFileSize предел одного исходника или черновика, 20 ГиБ
	MaxFileSize int64 = 20 << 30
	// MaxParts предел частей multipart загрузки в S3
	MaxParts = 10000

	partURLLifetime     = time.Hour
	uploadLifetime      = 24 * time.Hour
	recommendedPartSize = 16
)

// Service загрузка исходников и черновиков в объектное хранилище.
// Проект получает только ссылки на завершенные загрузки
type Service struct {
	db      ydb.Database
	storage storage.StorageProvider
	now     func() time.Time
}

// NewService создает upload сервис
func NewService(db ydb.Database, storage storage.StorageProvider) *Service {
	return &Service{db: db, storage: storage, now: time.Now}
}

// Initiate начинает multipart загрузку. Исходники загружает заказчик-владелец,
// черновики только назначенный монтажер
func (s *Service) Initiate(ctx context.Context, actor models.Actor, req models.InitiateMultipartUploadRequest) (*models.InitiateMultipartUploadResponse, error) {
	fileName := strings.TrimSpace(req.FileName)
	if err := validation.ValidateFilename(fileName, "file_name"); err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}
	if req.FileSizeBytes <= 0 || req.FileSizeBytes > MaxFileSize {
		return nil, app_errors.Validation("file_size_bytes must be between 1 and %d", MaxFileSize)
	}
	contentType := validation.NormalizeContentType(req.ContentType)
	if contentType == "" {
		contentType = validation.GetContentTypeFromExtension(fileName)
	}
	if err := validation.ValidateVideoContentType(contentType, "content_type"); err != nil {
		return nil, app_errors.Validation("%s", err.Error())
	}

	p, err := s.db.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeKind(actor, p, req.Kind); err != nil {
		return nil, err
	}

	uploadID := uuid.New().String()
	key := fmt.Sprintf("projects/%s/%s/%s/%s", p.ProjectID, req.Kind, uploadID, fileName)
	multipartID, err := s.storage.InitiateMultipartUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate s3 upload: %w", err)
	}

	now := s.now().UTC()
	expires := now.Add(uploadLifetime)
	u := &ydb.Upload{
		UploadID:        uploadID,
		ProjectID:       p.ProjectID,
		UploadedBy:      actor.UserID,
		Kind:            req.Kind,
		FileName:        fileName,
		FileSizeBytes:   req.FileSizeBytes,
		ContentType:     contentType,
		StoragePath:     key,
		MultipartID:     multipartID,
		UploadStatus:    ydb.UploadStatusUploading,
		UploadExpiresAt: &expires,
		CreatedAt:       now,
	}
	if err := s.db.CreateUpload(ctx, u); err != nil {
		if abortErr := s.storage.AbortMultipartUpload(ctx, key, multipartID); abortErr != nil {
			logger.FromContext(ctx).Warn("Failed to abort orphaned multipart upload", "key", key, "error", abortErr)
		}
		return nil, fmt.Errorf("failed to create upload record: %w", err)
	}

	return &models.InitiateMultipartUploadResponse{
		UploadID:              uploadID,
		RecommendedPartSizeMB: recommendedPartSize,
	}, nil
}

// PartURLs presigned ссылки на загрузку частей 1..totalParts
func (s *Service) PartURLs(ctx context.Context, actor models.Actor, req models.GetPartUploadURLsRequest) (*models.GetPartUploadURLsResponse, error) {
	if req.TotalParts < 1 || req.TotalParts > MaxParts {
		return nil, app_errors.Validation("total_parts must be between 1 and %d", MaxParts)
	}
	u, err := s.active(ctx, actor, req.UploadID)
	if err != nil {
		return nil, err
	}

	urls := make([]string, req.TotalParts)
	for i := range urls {
		url, err := s.storage.GeneratePresignedPartURL(ctx, u.StoragePath, u.MultipartID, int32(i+1), partURLLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to generate url for part %d: %w", i+1, err)
		}
		urls[i] = url
	}

	total := req.TotalParts
	u.TotalParts = &total
	if err := s.db.UpdateUpload(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update upload: %w", err)
	}

	return &models.GetPartUploadURLsResponse{
		PartURLs:  urls,
		ExpiresAt: s.now().Add(partURLLifetime).Unix(),
	}, nil
}

// Complete собирает части, проверяет сигнатуру видео и фактический размер.
// Файл, не прошедший проверку, удаляется, а загрузка помечается aborted
func (s *Service) Complete(ctx context.Context, actor models.Actor, req models.CompleteMultipartUploadRequest) (*models.CompleteMultipartUploadResponse, error) {
	if len(req.Parts) == 0 {
		return nil, app_errors.Validation("parts must not be empty")
	}
	u, err := s.active(ctx, actor, req.UploadID)
	if err != nil {
		return nil, err
	}

	parts := make([]types.CompletedPart, len(req.Parts))
	for i, p := range req.Parts {
		if p.PartNumber < 1 || strings.TrimSpace(p.ETag) == "" {
			return nil, app_errors.Validation("part %d is malformed", i+1)
		}
		parts[i] = types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.PartNumber),
		}
	}
	if err := s.storage.CompleteMultipartUpload(ctx, u.StoragePath, u.MultipartID, parts); err != nil {
		return nil, fmt.Errorf("failed to complete s3 upload: %w", err)
	}

	header, err := s.storage.GetObjectHeader(ctx, u.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded object: %w", err)
	}
	if !IsVideo(header) {
		s.discard(ctx, u)
		return nil, app_errors.Validation("invalid file content: not a video")
	}

	size, err := s.storage.GetObjectSize(ctx, u.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat uploaded object: %w", err)
	}
	if size > u.FileSizeBytes {
		s.discard(ctx, u)
		return nil, app_errors.Validation("uploaded file is larger than declared (%d > %d)", size, u.FileSizeBytes)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	u.FileSizeBytes = size
	u.UploadStatus = ydb.UploadStatusCompleted
	u.UploadedAt = &now
	if err := s.db.UpdateUpload(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update upload: %w", err)
	}

	logger.FromContext(ctx).Info("Upload completed", "upload_id", u.UploadID, "project_id", u.ProjectID, "kind", u.Kind, "size", size)
	return &models.CompleteMultipartUploadResponse{
		Message: "Upload completed",
		File: models.FileRef{
			UploadID:   u.UploadID,
			FileName:   u.FileName,
			SizeBytes:  size,
			UploadedAt: now,
		},
	}, nil
}

// Abort отменяет незавершенную загрузку
func (s *Service) Abort(ctx context.Context, actor models.Actor, uploadID string) error {
	u, err := s.active(ctx, actor, uploadID)
	if err != nil {
		return err
	}
	if err := s.storage.AbortMultipartUpload(ctx, u.StoragePath, u.MultipartID); err != nil {
		return fmt.Errorf("failed to abort s3 upload: %w", err)
	}
	u.UploadStatus = ydb.UploadStatusAborted
	if err := s.db.UpdateUpload(ctx, u); err != nil {
		return fmt.Errorf("failed to update upload: %w", err)
	}
	return nil
}

// active загрузка автора в статусе uploading и с неистекшим сроком
func (s *Service) active(ctx context.Context, actor models.Actor, uploadID string) (*ydb.Upload, error) {
	if uploadID == "" {
		return nil, app_errors.Validation("upload_id is required")
	}
	u, err := s.db.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if u.UploadedBy != actor.UserID {
		return nil, app_errors.ErrAccessDenied
	}
	if u.UploadStatus != ydb.UploadStatusUploading {
		return nil, app_errors.InvalidState("upload is %s", u.UploadStatus)
	}
	if u.UploadExpiresAt != nil && s.now().After(*u.UploadExpiresAt) {
		return nil, app_errors.InvalidState("upload has expired")
	}
	return u, nil
}

func (s *Service) discard(ctx context.Context, u *ydb.Upload) {
	log := logger.FromContext(ctx)
	if err := s.storage.DeleteObject(ctx, u.StoragePath); err != nil {
		log.Error("Failed to delete rejected upload", "upload_id", u.UploadID, "key", u.StoragePath, "error", err)
	}
	u.UploadStatus = ydb.UploadStatusAborted
	if err := s.db.UpdateUpload(ctx, u); err != nil {
		log.Error("Failed to mark rejected upload", "upload_id", u.UploadID, "error", err)
	}
}

func authorizeKind(actor models.Actor, p *ydb.Project, kind models.UploadKind) error {
	switch kind {
	case models.UploadRawFootage:
		if !actor.IsCustomer() || p.CustomerID != actor.UserID {
			return app_errors.ErrNotProjectOwner
		}
		switch p.Status {
		case models.StatusPendingAssignment, models.StatusAssigned, models.StatusInProgress:
			return nil
		}
		return app_errors.InvalidState("raw footage cannot be added while project is %s", p.Status)
	case models.UploadEditedVideo:
		if !actor.IsEditor() || !p.AssignedTo(actor.UserID) {
			return app_errors.ErrNotProjectOwner
		}
		switch p.Status {
		case models.StatusInProgress, models.StatusRevisionRequested:
			return nil
		}
		return app_errors.InvalidState("drafts cannot be uploaded while project is %s", p.Status)
	}
	return app_errors.Validation("unknown upload kind %q", kind)
}

// IsVideo проверяет сигнатуру контейнера: ISO BMFF (mp4, mov), Matroska/WebM, AVI
func IsVideo(header []byte) bool {
	switch {
	case len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")):
		return true
	case len(header) >= 4 && bytes.Equal(header[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return true
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("AVI ")):
		return true
	}
	return false
}
