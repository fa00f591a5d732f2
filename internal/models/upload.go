package models

// Upload Request/Response Models

// InitiateMultipartUploadRequest represents a request to initiate multipart upload
// @Description	Multipart upload initiation request for raw footage or an edited cut
type InitiateMultipartUploadRequest struct {
	ProjectID     string     `json:"project_id"`
	Kind          UploadKind `json:"kind"`
	FileName      string     `json:"file_name"`
	FileSizeBytes int64      `json:"file_size_bytes"`
	ContentType   string     `json:"content_type"`
}

// InitiateMultipartUploadResponse represents a response for initiated multipart upload
// @Description	Multipart upload initiation response
type InitiateMultipartUploadResponse struct {
	UploadID              string `json:"upload_id"`
	RecommendedPartSizeMB int32  `json:"recommended_part_size_mb"`
}

// GetPartUploadURLsRequest represents a request to get part upload URLs
// @Description	Part upload URLs request
type GetPartUploadURLsRequest struct {
	UploadID   string `json:"upload_id"`
	TotalParts int32  `json:"total_parts"`
}

// GetPartUploadURLsResponse represents a response with part upload URLs
// @Description	Part upload URLs response
type GetPartUploadURLsResponse struct {
	PartURLs  []string `json:"part_urls"`
	ExpiresAt int64    `json:"expires_at"`
}

// CompletedPart represents a completed multipart upload part
// @Description	Completed multipart upload part
type CompletedPart struct {
	PartNumber int32  `json:"part_number"`
	ETag       string `json:"etag"`
}

// CompleteMultipartUploadRequest represents a request to complete multipart upload
// @Description	Multipart upload completion request
type CompleteMultipartUploadRequest struct {
	UploadID string          `json:"upload_id"`
	Parts    []CompletedPart `json:"parts"`
}

// CompleteMultipartUploadResponse represents a response for completed multipart upload
// @Description	Multipart upload completion response
type CompleteMultipartUploadResponse struct {
	Message string  `json:"message"`
	File    FileRef `json:"file"`
}
