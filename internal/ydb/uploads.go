package ydb

import (
	"context"
	"fmt"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/ydb-platform/ydb-go-sdk/v3/table"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/result/named"
	"github.com/ydb-platform/ydb-go-sdk/v3/table/types"
)

const uploadColumns = `upload_id, project_id, uploaded_by, kind, file_name, file_size_bytes, content_type,
	storage_path, multipart_id, upload_status, total_parts, upload_expires_at, created_at, uploaded_at`

func scanUpload(res result.Result) (*Upload, error) {
	var (
		u    Upload
		kind string
	)
	err := res.ScanNamed(
		named.Required("upload_id", &u.UploadID),
		named.Required("project_id", &u.ProjectID),
		named.OptionalWithDefault("uploaded_by", &u.UploadedBy),
		named.OptionalWithDefault("kind", &kind),
		named.OptionalWithDefault("file_name", &u.FileName),
		named.OptionalWithDefault("file_size_bytes", &u.FileSizeBytes),
		named.OptionalWithDefault("content_type", &u.ContentType),
		named.OptionalWithDefault("storage_path", &u.StoragePath),
		named.OptionalWithDefault("multipart_id", &u.MultipartID),
		named.OptionalWithDefault("upload_status", &u.UploadStatus),
		named.Optional("total_parts", &u.TotalParts),
		named.Optional("upload_expires_at", &u.UploadExpiresAt),
		named.OptionalWithDefault("created_at", &u.CreatedAt),
		named.Optional("uploaded_at", &u.UploadedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	u.Kind = models.UploadKind(kind)
	return &u, nil
}

func (c *YDBClient) upsertUpload(ctx context.Context, u *Upload) error {
	return c.execute(ctx, `
		DECLARE $upload_id AS Text;
		DECLARE $project_id AS Text;
		DECLARE $uploaded_by AS Text;
		DECLARE $kind AS Text;
		DECLARE $file_name AS Text;
		DECLARE $file_size_bytes AS Int64;
		DECLARE $content_type AS Text;
		DECLARE $storage_path AS Text;
		DECLARE $multipart_id AS Text;
		DECLARE $upload_status AS Text;
		DECLARE $total_parts AS Optional<Int32>;
		DECLARE $upload_expires_at AS Optional<Timestamp>;
		DECLARE $created_at AS Timestamp;
		DECLARE $uploaded_at AS Optional<Timestamp>;

		UPSERT INTO uploads (`+uploadColumns+`)
		VALUES ($upload_id, $project_id, $uploaded_by, $kind, $file_name, $file_size_bytes, $content_type,
			$storage_path, $multipart_id, $upload_status, $total_parts, $upload_expires_at, $created_at, $uploaded_at);
	`, table.NewQueryParameters(
		table.ValueParam("$upload_id", types.TextValue(u.UploadID)),
		table.ValueParam("$project_id", types.TextValue(u.ProjectID)),
		table.ValueParam("$uploaded_by", types.TextValue(u.UploadedBy)),
		table.ValueParam("$kind", types.TextValue(string(u.Kind))),
		table.ValueParam("$file_name", types.TextValue(u.FileName)),
		table.ValueParam("$file_size_bytes", types.Int64Value(u.FileSizeBytes)),
		table.ValueParam("$content_type", types.TextValue(u.ContentType)),
		table.ValueParam("$storage_path", types.TextValue(u.StoragePath)),
		table.ValueParam("$multipart_id", types.TextValue(u.MultipartID)),
		table.ValueParam("$upload_status", types.TextValue(u.UploadStatus)),
		table.ValueParam("$total_parts", optInt32(u.TotalParts)),
		table.ValueParam("$upload_expires_at", optTimestamp(u.UploadExpiresAt)),
		table.ValueParam("$created_at", types.TimestampValueFromTime(u.CreatedAt)),
		table.ValueParam("$uploaded_at", optTimestamp(u.UploadedAt)),
	))
}

// CreateUpload создает запись о загрузке
func (c *YDBClient) CreateUpload(ctx context.Context, u *Upload) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	return c.upsertUpload(ctx, u)
}

// GetUpload получает загрузку по ID
func (c *YDBClient) GetUpload(ctx context.Context, uploadID string) (*Upload, error) {
	var u *Upload
	err := c.rows(ctx, `
		DECLARE $upload_id AS Text;
		SELECT `+uploadColumns+` FROM uploads WHERE upload_id = $upload_id;
	`, table.NewQueryParameters(table.ValueParam("$upload_id", types.TextValue(uploadID))),
		nil,
		func(res result.Result) (err error) {
			u, err = scanUpload(res)
			return err
		})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, app_errors.ErrUploadNotFound
	}
	return u, nil
}

// UpdateUpload обновляет запись о загрузке
func (c *YDBClient) UpdateUpload(ctx context.Context, u *Upload) error {
	return c.upsertUpload(ctx, u)
}
