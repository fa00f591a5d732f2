package models

import "time"

// PayoutItem проект в составе выплаты
type PayoutItem struct {
	ProjectID   string    `json:"project_id"`
	Amount      int64     `json:"amount"`
	CompletedAt time.Time `json:"completed_at"`
}

// CreatePayoutRequest создание выплаты администратором
// @Description	Payout creation request
type CreatePayoutRequest struct {
	EditorID   string       `json:"editor_id" validate:"required"`
	ProjectIDs []string     `json:"project_ids" validate:"required"`
	Method     PayoutMethod `json:"method"`
}

// UpdatePayoutStatusRequest смена статуса выплаты
// @Description	Payout status change request
type UpdatePayoutStatusRequest struct {
	Status               PayoutStatus `json:"status" validate:"required"`
	TransactionReference string       `json:"transaction_reference,omitempty"`
	FailureReason        string       `json:"failure_reason,omitempty"`
}

// PayoutAccountRequest реквизиты для выплат
// @Description	Payout account details
type PayoutAccountRequest struct {
	Method  PayoutMethod      `json:"method" validate:"required"`
	Details map[string]string `json:"details" validate:"required"`
}

// PendingEarningsResponse проекты, ожидающие выплаты
// @Description	Payout-eligible projects and their fee sum
type PendingEarningsResponse struct {
	EditorID string       `json:"editor_id"`
	Items    []PayoutItem `json:"items"`
	Total    int64        `json:"total"`
}

// PayoutFilter фильтр списка выплат
type PayoutFilter struct {
	EditorID string
	Status   PayoutStatus
	Limit    int
	Offset   int
}
