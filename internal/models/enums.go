package models

// Role роль пользователя платформы
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEditor   Role = "editor"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleCustomer:
		return true
	}
	return false
}

// ProjectStatus статус проекта, ровно одно значение в каждый момент
type ProjectStatus string

const (
	StatusPendingAssignment ProjectStatus = "pending_assignment"
	StatusAssigned          ProjectStatus = "assigned"
	StatusInProgress        ProjectStatus = "in_progress"
	StatusReadyForReview    ProjectStatus = "ready_for_review"
	StatusRevisionRequested ProjectStatus = "revision_requested"
	StatusCompleted         ProjectStatus = "completed"
	StatusCancelled         ProjectStatus = "cancelled"
)

// AllProjectStatuses в порядке прохождения жизненного цикла
var AllProjectStatuses = []ProjectStatus{
	StatusPendingAssignment,
	StatusAssigned,
	StatusInProgress,
	StatusReadyForReview,
	StatusRevisionRequested,
	StatusCompleted,
	StatusCancelled,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range AllProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s ProjectStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PackageType тарифный пакет проекта
type PackageType string

const (
	PackageBasic    PackageType = "basic"
	PackageAdvanced PackageType = "advanced"
	PackageCustom   PackageType = "custom"
)

func (p PackageType) Valid() bool {
	return p == PackageBasic || p == PackageAdvanced || p == PackageCustom
}

// UnlimitedRevisions означает отсутствие лимита правок
const UnlimitedRevisions int32 = -1

// PaymentStatus статус оплаты проекта заказчиком
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// EditorPaymentStatus статус выплаты гонорара монтажеру по проекту
type EditorPaymentStatus string

const (
	EditorPaymentPending    EditorPaymentStatus = "pending"
	EditorPaymentProcessing EditorPaymentStatus = "processing"
	EditorPaymentPaid       EditorPaymentStatus = "paid"
)

// PaymentType тип платежа
type PaymentType string

const (
	PaymentTypeFull      PaymentType = "full"
	PaymentTypeAdvance   PaymentType = "advance"
	PaymentTypeMilestone PaymentType = "milestone"
	PaymentTypeRefund    PaymentType = "refund"
)

// PaymentRecordStatus статус отдельного платежа
type PaymentRecordStatus string

const (
	PaymentPending    PaymentRecordStatus = "pending"
	PaymentProcessing PaymentRecordStatus = "processing"
	PaymentCompleted  PaymentRecordStatus = "completed"
	PaymentFailed     PaymentRecordStatus = "failed"
	PaymentRefunded   PaymentRecordStatus = "refunded"
)

// Gateway платежный шлюз
type Gateway string

const (
	GatewayRazorpay Gateway = "razorpay"
	GatewayStripe   Gateway = "stripe"
	GatewayPayPal   Gateway = "paypal"
	GatewayManual   Gateway = "manual"
)

func (g Gateway) Valid() bool {
	switch g {
	case GatewayRazorpay, GatewayStripe, GatewayPayPal, GatewayManual:
		return true
	}
	return false
}

// PayoutStatus статус выплаты
type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
	PayoutCancelled  PayoutStatus = "cancelled"
)

// PayoutMethod способ выплаты монтажеру
type PayoutMethod string

const (
	PayoutBankTransfer PayoutMethod = "bank_transfer"
	PayoutUPI          PayoutMethod = "upi"
	PayoutPayPal       PayoutMethod = "paypal"
)

func (m PayoutMethod) Valid() bool {
	return m == PayoutBankTransfer || m == PayoutUPI || m == PayoutPayPal
}

// ApplicationStatus статус заявки монтажера
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// NotificationType тип уведомления
type NotificationType string

const (
	NotificationProjectAssigned   NotificationType = "project_assigned"
	NotificationProjectStarted    NotificationType = "project_started"
	NotificationDraftSubmitted    NotificationType = "draft_submitted"
	NotificationRevisionRequested NotificationType = "revision_requested"
	NotificationProjectCompleted  NotificationType = "project_completed"
	NotificationProjectCancelled  NotificationType = "project_cancelled"
	NotificationPaymentReceived   NotificationType = "payment_received"
	NotificationPaymentRefunded   NotificationType = "payment_refunded"
	NotificationPayoutCreated     NotificationType = "payout_created"
	NotificationPayoutProcessed   NotificationType = "payout_processed"
	NotificationPayoutFailed      NotificationType = "payout_failed"
	NotificationEditorApplication NotificationType = "editor_application"
	NotificationRatingReceived    NotificationType = "rating_received"
	NotificationNewMessage        NotificationType = "new_message"
	NotificationSystem            NotificationType = "system"
)

// NotificationPriority приоритет уведомления
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// UploadKind назначение загружаемого файла
type UploadKind string

const (
	UploadRawFootage  UploadKind = "raw_footage"
	UploadEditedVideo UploadKind = "edited_video"
)
