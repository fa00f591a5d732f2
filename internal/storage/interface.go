package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StorageProvider определяет интерфейс для работы с объектным хранилищем (S3)
type StorageProvider interface {
	// Методы загрузки исходников и черновиков
	InitiateMultipartUpload(ctx context.Context, key string, contentType string) (string, error)
	GeneratePresignedPartURL(ctx context.Context, key, uploadID string, partNumber int32, lifetime time.Duration) (string, error)
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []types.CompletedPart) error
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error

	// Методы скачивания и доступа
	GeneratePresignedDownloadURL(ctx context.Context, key, fileName string, lifetime time.Duration) (string, error)

	// Отчеты
	PutReport(ctx context.Context, key string, body []byte, contentType string) error
	GenerateReportURL(ctx context.Context, key string, lifetime time.Duration) (string, error)

	// Служебные методы
	DeleteObject(ctx context.Context, key string) error
	GetObjectSize(ctx context.Context, key string) (int64, error)
	GetObjectHeader(ctx context.Context, key string) ([]byte, error)
}
