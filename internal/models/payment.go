package models

// InitiatePaymentRequest создание платежа
// @Description	Payment initiation request
type InitiatePaymentRequest struct {
	ProjectID   string      `json:"project_id" validate:"required"`
	PaymentType PaymentType `json:"payment_type" validate:"required"`
	Gateway     Gateway     `json:"gateway" validate:"required"`
	Currency    string      `json:"currency"`
}

// GatewayConfirmation подтверждение от платежного шлюза
// @Description	Gateway confirmation payload
type GatewayConfirmation struct {
	OrderID          string            `json:"order_id"`
	GatewayPaymentID string            `json:"gateway_payment_id"`
	Signature        string            `json:"signature"`
	Method           string            `json:"method,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
}

// VerifyPaymentRequest подтверждение платежа
// @Description	Payment verification request
type VerifyPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	GatewayConfirmation
}

// RefundPaymentRequest возврат платежа
// @Description	Refund request
type RefundPaymentRequest struct {
	Amount int64  `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// FailPaymentRequest отметка о неуспешном платеже
// @Description	Payment failure request
type FailPaymentRequest struct {
	Reason string `json:"reason"`
}

// PaymentFilter фильтр списка платежей
type PaymentFilter struct {
	UserID    string
	ProjectID string
	Status    PaymentRecordStatus
	Limit     int
	Offset    int
}

// PaymentStats агрегаты по платежам
// @Description	Payment count and sum per status
type PaymentStats struct {
	Count         map[PaymentRecordStatus]int64 `json:"count"`
	Sum           map[PaymentRecordStatus]int64 `json:"sum"`
	RefundedTotal int64                         `json:"refunded_total"`
}

// PackageQuote расчет стоимости пакета
// @Description	Package price breakdown
type PackageQuote struct {
	PackageType   PackageType `json:"package_type"`
	TotalAmount   int64       `json:"total_amount"`
	EditorFee     int64       `json:"editor_fee"`
	AdvanceAmount int64       `json:"advance_amount"`
	MaxRevisions  int32       `json:"max_revisions"`
	DeliveryDays  int32       `json:"delivery_days"`
}
