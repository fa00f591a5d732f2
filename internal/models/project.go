package models

import "time"

// FileRef ссылка на загруженный исходник
type FileRef struct {
	UploadID   string    `json:"upload_id"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// EditedVideo текущая версия смонтированного ролика. Version начинается с 1
type EditedVideo struct {
	FileRef
	Version int32 `json:"version"`
}

// Revision запись о запросе правок
type Revision struct {
	RevisionNumber int32      `json:"revision_number"`
	Feedback       string     `json:"feedback"`
	RequestedAt    time.Time  `json:"requested_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// CreateProjectRequest создание проекта заказчиком
// @Description	Project creation request
type CreateProjectRequest struct {
	Title               string      `json:"title" validate:"required"`
	Description         string      `json:"description"`
	PackageType         PackageType `json:"package_type" validate:"required"`
	EditingInstructions string      `json:"editing_instructions"`
	SpecialRequirements []string    `json:"special_requirements"`
}

// AssignEditorRequest назначение монтажера администратором
// @Description	Assign editor request
type AssignEditorRequest struct {
	EditorID string `json:"editor_id" validate:"required"`
}

// UpdateStatusRequest смена статуса проекта
// @Description	Project status change request
type UpdateStatusRequest struct {
	Status             ProjectStatus `json:"status" validate:"required"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
}

// FileRefRequest ссылка на завершенную загрузку
// @Description	Reference to a completed upload
type FileRefRequest struct {
	UploadID string `json:"upload_id" validate:"required"`
}

// RequestRevisionRequest запрос правок заказчиком
// @Description	Revision request with feedback
type RequestRevisionRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// RateProjectRequest оценка завершенного проекта
// @Description	Rating 1..5 with optional feedback
type RateProjectRequest struct {
	Rating   int32  `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

// ProjectFilter фильтр списка проектов
type ProjectFilter struct {
	CustomerID string
	EditorID   string
	Status     ProjectStatus
	Unassigned bool
	Limit      int
	Offset     int
}

// ProjectStats количество проектов по статусам
// @Description	Project counts per status
type ProjectStats struct {
	Total    int64                   `json:"total"`
	ByStatus map[ProjectStatus]int64 `json:"by_status"`
}

// DownloadURLResponse ссылка на скачивание
// @Description	Presigned download URL
type DownloadURLResponse struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	ExpiresAt int64  `json:"expires_at"`
}
