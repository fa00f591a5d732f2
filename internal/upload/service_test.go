package upload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	storagemocks "github.com/lumiforge/cutroom-backend/internal/storage/mocks"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/cutroom-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	customer = models.Actor{UserID: "customer-1", Role: models.RoleCustomer}
	editor   = models.Actor{UserID: "editor-1", Role: models.RoleEditor}

	mp4Header  = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2'}
	exeHeader  = []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff\x00\x00")
	storageKey = "projects/project-1/raw_footage/up-1/clip.mp4"
)

func setupUploadService() (*Service, *ydbmocks.Database, *storagemocks.StorageProvider) {
	mockDB := new(ydbmocks.Database)
	mockStorage := new(storagemocks.StorageProvider)
	service := NewService(mockDB, mockStorage)
	service.now = func() time.Time { return fixedNow }
	return service, mockDB, mockStorage
}

func project(status models.ProjectStatus) *ydb.Project {
	editorID := "editor-1"
	return &ydb.Project{
		ProjectID:  "project-1",
		CustomerID: "customer-1",
		EditorID:   &editorID,
		Status:     status,
	}
}

func uploading() *ydb.Upload {
	expires := fixedNow.Add(time.Hour)
	return &ydb.Upload{
		UploadID:        "up-1",
		ProjectID:       "project-1",
		UploadedBy:      "customer-1",
		Kind:            models.UploadRawFootage,
		FileName:        "clip.mp4",
		FileSizeBytes:   10 << 20,
		StoragePath:     storageKey,
		MultipartID:     "s3-upload-id",
		UploadStatus:    ydb.UploadStatusUploading,
		UploadExpiresAt: &expires,
	}
}

func TestInitiate_RawFootage(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()

	mockDB.On("GetProject", ctx, "project-1").Return(project(models.StatusPendingAssignment), nil)
	mockStorage.On("InitiateMultipartUpload", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "projects/project-1/raw_footage/") && strings.HasSuffix(key, "/clip.mp4")
	}), "video/mp4").Return("s3-upload-id", nil)
	mockDB.On("CreateUpload", ctx, mock.MatchedBy(func(u *ydb.Upload) bool {
		return u.UploadedBy == "customer-1" &&
			u.MultipartID == "s3-upload-id" &&
			u.UploadStatus == ydb.UploadStatusUploading &&
			u.UploadExpiresAt != nil && u.UploadExpiresAt.Equal(fixedNow.Add(24*time.Hour))
	})).Return(nil)

	resp, err := service.Initiate(ctx, customer, models.InitiateMultipartUploadRequest{
		ProjectID:     "project-1",
		Kind:          models.UploadRawFootage,
		FileName:      "clip.mp4",
		FileSizeBytes: 10 << 20,
		ContentType:   "video/mp4",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.UploadID)
	assert.Equal(t, int32(recommendedPartSize), resp.RecommendedPartSizeMB)
	mockDB.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestInitiate_Rejections(t *testing.T) {
	valid := models.InitiateMultipartUploadRequest{
		ProjectID:     "project-1",
		Kind:          models.UploadEditedVideo,
		FileName:      "cut.mp4",
		FileSizeBytes: 1 << 20,
		ContentType:   "video/mp4",
	}

	tests := []struct {
		name   string
		actor  models.Actor
		status models.ProjectStatus
		mutate func(*models.InitiateMultipartUploadRequest)
		kind   app_errors.Kind
	}{
		{"bad filename", editor, models.StatusInProgress, func(r *models.InitiateMultipartUploadRequest) { r.FileName = "../etc/passwd" }, app_errors.KindValidation},
		{"zero size", editor, models.StatusInProgress, func(r *models.InitiateMultipartUploadRequest) { r.FileSizeBytes = 0 }, app_errors.KindValidation},
		{"too large", editor, models.StatusInProgress, func(r *models.InitiateMultipartUploadRequest) { r.FileSizeBytes = MaxFileSize + 1 }, app_errors.KindValidation},
		{"not a video", editor, models.StatusInProgress, func(r *models.InitiateMultipartUploadRequest) { r.ContentType = "application/pdf" }, app_errors.KindValidation},
		{"customer uploads draft", customer, models.StatusInProgress, func(*models.InitiateMultipartUploadRequest) {}, app_errors.KindForbidden},
		{"draft before start", editor, models.StatusAssigned, func(*models.InitiateMultipartUploadRequest) {}, app_errors.KindInvalidState},
		{"editor uploads footage", editor, models.StatusInProgress, func(r *models.InitiateMultipartUploadRequest) { r.Kind = models.UploadRawFootage }, app_errors.KindForbidden},
		{"footage after review", customer, models.StatusReadyForReview, func(r *models.InitiateMultipartUploadRequest) { r.Kind = models.UploadRawFootage }, app_errors.KindInvalidState},
		{"unknown kind", customer, models.StatusInProgress, func(r *models.InitiateMultipartUploadRequest) { r.Kind = "thumbnail" }, app_errors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockDB, mockStorage := setupUploadService()
			ctx := context.Background()
			mockDB.On("GetProject", ctx, "project-1").Return(project(tt.status), nil).Maybe()

			req := valid
			tt.mutate(&req)
			_, err := service.Initiate(ctx, tt.actor, req)

			require.Error(t, err)
			assert.Equal(t, tt.kind, app_errors.KindOf(err), "got %v", err)
			mockStorage.AssertNotCalled(t, "InitiateMultipartUpload", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInitiate_AbortsOnRecordFailure(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()

	mockDB.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
	mockStorage.On("InitiateMultipartUpload", ctx, mock.Anything, "video/mp4").Return("s3-upload-id", nil)
	mockDB.On("CreateUpload", ctx, mock.Anything).Return(errors.New("ydb unavailable"))
	mockStorage.On("AbortMultipartUpload", ctx, mock.Anything, "s3-upload-id").Return(nil)

	_, err := service.Initiate(ctx, editor, models.InitiateMultipartUploadRequest{
		ProjectID: "project-1", Kind: models.UploadEditedVideo, FileName: "cut.mp4", FileSizeBytes: 1024, ContentType: "video/mp4",
	})

	assert.Error(t, err)
	mockStorage.AssertExpectations(t)
}

func TestPartURLs(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()

	mockDB.On("GetUpload", ctx, "up-1").Return(uploading(), nil)
	mockStorage.On("GeneratePresignedPartURL", ctx, storageKey, "s3-upload-id", int32(1), time.Hour).Return("https://s3/part1", nil)
	mockStorage.On("GeneratePresignedPartURL", ctx, storageKey, "s3-upload-id", int32(2), time.Hour).Return("https://s3/part2", nil)
	mockDB.On("UpdateUpload", ctx, mock.MatchedBy(func(u *ydb.Upload) bool {
		return u.TotalParts != nil && *u.TotalParts == 2
	})).Return(nil)

	resp, err := service.PartURLs(ctx, customer, models.GetPartUploadURLsRequest{UploadID: "up-1", TotalParts: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://s3/part1", "https://s3/part2"}, resp.PartURLs)
	assert.Equal(t, fixedNow.Add(time.Hour).Unix(), resp.ExpiresAt)
	mockDB.AssertExpectations(t)
}

func TestPartURLs_Guards(t *testing.T) {
	t.Run("too many parts", func(t *testing.T) {
		service, _, _ := setupUploadService()
		_, err := service.PartURLs(context.Background(), customer, models.GetPartUploadURLsRequest{UploadID: "up-1", TotalParts: MaxParts + 1})
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})

	t.Run("someone else's upload", func(t *testing.T) {
		service, mockDB, _ := setupUploadService()
		ctx := context.Background()
		mockDB.On("GetUpload", ctx, "up-1").Return(uploading(), nil)

		_, err := service.PartURLs(ctx, editor, models.GetPartUploadURLsRequest{UploadID: "up-1", TotalParts: 1})
		assert.ErrorIs(t, err, app_errors.ErrAccessDenied)
	})

	t.Run("expired", func(t *testing.T) {
		service, mockDB, _ := setupUploadService()
		ctx := context.Background()
		u := uploading()
		past := fixedNow.Add(-time.Minute)
		u.UploadExpiresAt = &past
		mockDB.On("GetUpload", ctx, "up-1").Return(u, nil)

		_, err := service.PartURLs(ctx, customer, models.GetPartUploadURLsRequest{UploadID: "up-1", TotalParts: 1})
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})

	t.Run("already completed", func(t *testing.T) {
		service, mockDB, _ := setupUploadService()
		ctx := context.Background()
		u := uploading()
		u.UploadStatus = ydb.UploadStatusCompleted
		mockDB.On("GetUpload", ctx, "up-1").Return(u, nil)

		_, err := service.PartURLs(ctx, customer, models.GetPartUploadURLsRequest{UploadID: "up-1", TotalParts: 1})
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})
}

func TestComplete(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()

	mockDB.On("GetUpload", ctx, "up-1").Return(uploading(), nil)
	mockStorage.On("CompleteMultipartUpload", ctx, storageKey, "s3-upload-id", mock.MatchedBy(func(parts []types.CompletedPart) bool {
		return len(parts) == 1 && *parts[0].ETag == "etag1" && *parts[0].PartNumber == 1
	})).Return(nil)
	mockStorage.On("GetObjectHeader", ctx, storageKey).Return(mp4Header, nil)
	mockStorage.On("GetObjectSize", ctx, storageKey).Return(int64(9<<20), nil)
	mockDB.On("UpdateUpload", ctx, mock.MatchedBy(func(u *ydb.Upload) bool {
		return u.UploadStatus == ydb.UploadStatusCompleted && u.UploadedAt != nil && u.FileSizeBytes == 9<<20
	})).Return(nil)

	resp, err := service.Complete(ctx, customer, models.CompleteMultipartUploadRequest{
		UploadID: "up-1",
		Parts:    []models.CompletedPart{{PartNumber: 1, ETag: "etag1"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "up-1", resp.File.UploadID)
	assert.Equal(t, "clip.mp4", resp.File.FileName)
	assert.Equal(t, int64(9<<20), resp.File.SizeBytes)
	assert.Equal(t, fixedNow, resp.File.UploadedAt)
	mockDB.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestComplete_MaliciousFile(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()

	mockDB.On("GetUpload", ctx, "up-1").Return(uploading(), nil)
	mockStorage.On("CompleteMultipartUpload", ctx, storageKey, "s3-upload-id", mock.Anything).Return(nil)
	mockStorage.On("GetObjectHeader", ctx, storageKey).Return(exeHeader, nil)
	mockStorage.On("DeleteObject", ctx, storageKey).Return(nil)
	mockDB.On("UpdateUpload", ctx, mock.MatchedBy(func(u *ydb.Upload) bool {
		return u.UploadStatus == ydb.UploadStatusAborted
	})).Return(nil)

	resp, err := service.Complete(ctx, customer, models.CompleteMultipartUploadRequest{
		UploadID: "up-1",
		Parts:    []models.CompletedPart{{PartNumber: 1, ETag: "etag1"}},
	})

	assert.Nil(t, resp)
	assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	assert.Contains(t, err.Error(), "invalid file content")
	mockDB.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestComplete_LargerThanDeclared(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()

	mockDB.On("GetUpload", ctx, "up-1").Return(uploading(), nil)
	mockStorage.On("CompleteMultipartUpload", ctx, storageKey, "s3-upload-id", mock.Anything).Return(nil)
	mockStorage.On("GetObjectHeader", ctx, storageKey).Return(mp4Header, nil)
	mockStorage.On("GetObjectSize", ctx, storageKey).Return(int64(100<<20), nil)
	mockStorage.On("DeleteObject", ctx, storageKey).Return(nil)
	mockDB.On("UpdateUpload", ctx, mock.Anything).Return(nil)

	_, err := service.Complete(ctx, customer, models.CompleteMultipartUploadRequest{
		UploadID: "up-1",
		Parts:    []models.CompletedPart{{PartNumber: 1, ETag: "etag1"}},
	})

	assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	mockStorage.AssertCalled(t, "DeleteObject", ctx, storageKey)
}

func TestComplete_MalformedParts(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()
	mockDB.On("GetUpload", ctx, "up-1").Return(uploading(), nil)

	_, err := service.Complete(ctx, customer, models.CompleteMultipartUploadRequest{
		UploadID: "up-1",
		Parts:    []models.CompletedPart{{PartNumber: 0, ETag: ""}},
	})

	assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	mockStorage.AssertNotCalled(t, "CompleteMultipartUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAbort(t *testing.T) {
	service, mockDB, mockStorage := setupUploadService()
	ctx := context.Background()

	mockDB.On("GetUpload", ctx, "up-1").Return(uploading(), nil)
	mockStorage.On("AbortMultipartUpload", ctx, storageKey, "s3-upload-id").Return(nil)
	mockDB.On("UpdateUpload", ctx, mock.MatchedBy(func(u *ydb.Upload) bool {
		return u.UploadStatus == ydb.UploadStatusAborted
	})).Return(nil)

	require.NoError(t, service.Abort(ctx, customer, "up-1"))
	mockDB.AssertExpectations(t)
}

func TestIsVideo(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{"mp4", mp4Header, true},
		{"quicktime", []byte{0x00, 0x00, 0x00, 0x14, 'f', 't', 'y', 'p', 'q', 't', ' ', ' '}, true},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81}, true},
		{"avi", []byte("RIFF\x00\x00\x00\x00AVI LIST"), true},
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), false},
		{"exe", exeHeader, false},
		{"short", []byte{0x00}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVideo(tt.header))
		})
	}
}
