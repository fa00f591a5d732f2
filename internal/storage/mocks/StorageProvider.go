package mocks

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/lumiforge/cutroom-backend/internal/storage"
	"github.com/stretchr/testify/mock"
)

// StorageProvider мок объектного хранилища
type StorageProvider struct {
	mock.Mock
}

var _ storage.StorageProvider = (*StorageProvider)(nil)

func (m *StorageProvider) InitiateMultipartUpload(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *StorageProvider) GeneratePresignedPartURL(ctx context.Context, key, uploadID string, partNumber int32, lifetime time.Duration) (string, error) {
	args := m.Called(ctx, key, uploadID, partNumber, lifetime)
	return args.String(0), args.Error(1)
}

func (m *StorageProvider) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []types.CompletedPart) error {
	args := m.Called(ctx, key, uploadID, parts)
	return args.Error(0)
}

func (m *StorageProvider) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	args := m.Called(ctx, key, uploadID)
	return args.Error(0)
}

func (m *StorageProvider) GeneratePresignedDownloadURL(ctx context.Context, key, fileName string, lifetime time.Duration) (string, error) {
	args := m.Called(ctx, key, fileName, lifetime)
	return args.String(0), args.Error(1)
}

func (m *StorageProvider) PutReport(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *StorageProvider) GenerateReportURL(ctx context.Context, key string, lifetime time.Duration) (string, error) {
	args := m.Called(ctx, key, lifetime)
	return args.String(0), args.Error(1)
}

func (m *StorageProvider) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *StorageProvider) GetObjectSize(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageProvider) GetObjectHeader(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	var r0 []byte
	if v := args.Get(0); v != nil {
		r0 = v.([]byte)
	}
	return r0, args.Error(1)
}
