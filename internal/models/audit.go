package models

import (
	"encoding/json"
	"time"
)

// AuditLog представляет запись аудита в системе
// @Description	Audit log entry for user actions
type AuditLog struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	UserID       string          `json:"user_id"`
	Role         string          `json:"role"`
	ActionType   string          `json:"action_type"`
	ActionResult string          `json:"action_result"`
	EntityID     string          `json:"entity_id"`
	IPAddress    string          `json:"ip_address"`
	UserAgent    string          `json:"user_agent"`
	Details      json.RawMessage `json:"details"`
}

// AuditActionType содержит константы для типов действий
type AuditActionType string

const (
	// Registration actions
	AuditRegisterSuccess AuditActionType = "register_success"
	AuditLoginSuccess    AuditActionType = "login_success"

	// Project actions
	AuditProjectCreated       AuditActionType = "project_created"
	AuditProjectAssigned      AuditActionType = "project_assigned"
	AuditProjectStatusChanged AuditActionType = "project_status_changed"
	AuditDraftUploaded        AuditActionType = "draft_uploaded"
	AuditRevisionRequested    AuditActionType = "revision_requested"
	AuditProjectCompleted     AuditActionType = "project_completed"
	AuditProjectRated         AuditActionType = "project_rated"
	AuditRawFootageAdded      AuditActionType = "raw_footage_added"

	// Money actions
	AuditPaymentInitiated     AuditActionType = "payment_initiated"
	AuditPaymentVerified      AuditActionType = "payment_verified"
	AuditPaymentFailed        AuditActionType = "payment_failed"
	AuditPaymentRefunded      AuditActionType = "payment_refunded"
	AuditPayoutCreated        AuditActionType = "payout_created"
	AuditPayoutStatusChanged  AuditActionType = "payout_status_changed"
	AuditPayoutAccountUpdated AuditActionType = "payout_account_updated"

	// Editor actions
	AuditEditorApproved AuditActionType = "editor_approved"
	AuditEditorRejected AuditActionType = "editor_rejected"
	AuditEditorUpdated  AuditActionType = "editor_updated"

	// Account management
	AuditUserSuspended   AuditActionType = "user_suspended"
	AuditUserReactivated AuditActionType = "user_reactivated"
	AuditUserDeleted     AuditActionType = "user_deleted"

	// Messaging
	AuditMessageSent AuditActionType = "message_sent"

	// Catalog / reports
	AuditPackageUpserted AuditActionType = "package_upserted"
	AuditReportGenerated AuditActionType = "report_generated"
)

// AuditActionResult содержит константы для результатов действий
type AuditActionResult string

const (
	AuditResultSuccess AuditActionResult = "success"
	AuditResultFailure AuditActionResult = "failure"
)

// GetAuditLogs request model
// @Description	Request filters for audit logs listing
type GetAuditLogsRequest struct {
	UserID     string `query:"user_id"`
	EntityID   string `query:"entity_id"`
	ActionType string `query:"action_type"`
	Result     string `query:"result"`
	From       string `query:"from"`
	To         string `query:"to"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// GetAuditLogsResponse response for audit logs listing
// @Description	Audit logs list with pagination
type GetAuditLogsResponse struct {
	Logs   []*AuditLog `json:"logs"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ListResponse обертка для постраничных списков
// @Description	Paginated list
type ListResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
