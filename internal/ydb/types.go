package ydb

import (
	"time"

	"github.com/lumiforge/cutroom-backend/internal/models"
)

// User представляет пользователя в системе
type User struct {
	UserID       string      `db:"user_id"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	FullName     string      `db:"full_name"`
	Role         models.Role `db:"role"`
	ProfileData  string      `db:"profile_data"` // JSON профиля администратора или заказчика
	IsActive     bool        `db:"is_active"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

// Editor ролевые данные монтажера. Ключ совпадает с user_id
type Editor struct {
	EditorID              string                   `db:"editor_id" json:"editor_id"`
	FullName              string                   `db:"-" json:"full_name"`
	Email                 string                   `db:"-" json:"email"`
	Specializations       []string                 `db:"specializations" json:"specializations"`
	Bio                   string                   `db:"bio" json:"bio"`
	PortfolioURL          string                   `db:"portfolio_url" json:"portfolio_url"`
	ApplicationStatus     models.ApplicationStatus `db:"application_status" json:"application_status"`
	RejectionReason       *string                  `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedBy            *string                  `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt            *time.Time               `db:"approved_at" json:"approved_at,omitempty"`
	IsVerified            bool                     `db:"is_verified" json:"is_verified"`
	IsAvailable           bool                     `db:"is_available" json:"is_available"`
	MaxConcurrentProjects int32                    `db:"max_concurrent_projects" json:"max_concurrent_projects"`
	CurrentWorkload       int32                    `db:"current_workload" json:"current_workload"`
	AverageRating         float64                  `db:"average_rating" json:"average_rating"`
	TotalReviews          int64                    `db:"total_reviews" json:"total_reviews"`
	TotalEarnings         int64                    `db:"total_earnings" json:"total_earnings"`
	PendingEarnings       int64                    `db:"pending_earnings" json:"pending_earnings"`
	PayoutMethod          *models.PayoutMethod     `db:"payout_method" json:"payout_method,omitempty"`
	PayoutDetails         map[string]string        `db:"payout_details" json:"-"`
	CreatedAt             time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time                `db:"updated_at" json:"updated_at"`
}

// HasPayoutAccount настроены ли реквизиты для выплат
func (e *Editor) HasPayoutAccount() bool {
	return e.PayoutMethod != nil && *e.PayoutMethod != "" && len(e.PayoutDetails) > 0
}

// Package тарифный пакет каталога
type Package struct {
	PackageType           models.PackageType `db:"package_type" json:"package_type" yaml:"package_type"`
	Name                  string             `db:"name" json:"name" yaml:"name"`
	Description           string             `db:"description" json:"description" yaml:"description"`
	BasePrice             int64              `db:"base_price" json:"base_price" yaml:"base_price"`
	MaxRevisions          int32              `db:"max_revisions" json:"max_revisions" yaml:"max_revisions"`
	EstimatedDeliveryDays int32              `db:"estimated_delivery_days" json:"estimated_delivery_days" yaml:"estimated_delivery_days"`
	Features              []string           `db:"features" json:"features" yaml:"features"`
	IsActive              bool               `db:"is_active" json:"is_active" yaml:"is_active"`
	CreatedAt             time.Time          `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt             time.Time          `db:"updated_at" json:"updated_at" yaml:"-"`
}

// Project центральная сущность маркетплейса
type Project struct {
	ProjectID           string                     `db:"project_id" json:"project_id"`
	CustomerID          string                     `db:"customer_id" json:"customer_id"`
	EditorID            *string                    `db:"editor_id" json:"editor_id,omitempty"`
	AssignedBy          *string                    `db:"assigned_by" json:"assigned_by,omitempty"`
	Title               string                     `db:"title" json:"title"`
	Description         string                     `db:"description" json:"description"`
	PackageType         models.PackageType         `db:"package_type" json:"package_type"`
	EditingInstructions string                     `db:"editing_instructions" json:"editing_instructions"`
	SpecialRequirements []string                   `db:"special_requirements" json:"special_requirements"`
	Status              models.ProjectStatus       `db:"status" json:"status"`
	RawFootage          []models.FileRef           `db:"raw_footage" json:"raw_footage"`
	EditedVideo         *models.EditedVideo        `db:"edited_video" json:"edited_video,omitempty"`
	Revisions           []models.Revision          `db:"revisions" json:"revisions"`
	MaxRevisions        int32                      `db:"max_revisions" json:"max_revisions"`
	RevisionsUsed       int32                      `db:"revisions_used" json:"revisions_used"`
	Deadline            time.Time                  `db:"deadline" json:"deadline"`
	EstimatedDelivery   time.Time                  `db:"estimated_delivery" json:"estimated_delivery"`
	ActualDelivery      *time.Time                 `db:"actual_delivery" json:"actual_delivery,omitempty"`
	TotalAmount         int64                      `db:"total_amount" json:"total_amount"`
	PaidAmount          int64                      `db:"paid_amount" json:"paid_amount"`
	PaymentStatus       models.PaymentStatus       `db:"payment_status" json:"payment_status"`
	EditorFee           int64                      `db:"editor_fee" json:"editor_fee"`
	EditorPaymentStatus models.EditorPaymentStatus `db:"editor_payment_status" json:"editor_payment_status"`
	PayoutID            *string                    `db:"payout_id" json:"payout_id,omitempty"`
	Rating              *int32                     `db:"rating" json:"rating,omitempty"`
	RatingFeedback      *string                    `db:"rating_feedback" json:"rating_feedback,omitempty"`
	CancellationReason  *string                    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	AssignedAt          *time.Time                 `db:"assigned_at" json:"assigned_at,omitempty"`
	StartedAt           *time.Time                 `db:"started_at" json:"started_at,omitempty"`
	CompletedAt         *time.Time                 `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt         *time.Time                 `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt           time.Time                  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time                  `db:"updated_at" json:"updated_at"`
}

// AssignedTo назначен ли проект указанному монтажеру
func (p *Project) AssignedTo(editorID string) bool {
	return p.EditorID != nil && *p.EditorID == editorID
}

// PayoutEligible можно ли включить гонорар по проекту в новую выплату
func (p *Project) PayoutEligible() bool {
	return p.Status == models.StatusCompleted &&
		p.EditorPaymentStatus != models.EditorPaymentPaid &&
		(p.PayoutID == nil || *p.PayoutID == "")
}

// Payment движение денег от заказчика к платформе
type Payment struct {
	PaymentID           string                     `db:"payment_id" json:"payment_id"`
	ProjectID           string                     `db:"project_id" json:"project_id"`
	UserID              string                     `db:"user_id" json:"user_id"`
	Amount              int64                      `db:"amount" json:"amount"`
	Currency            string                     `db:"currency" json:"currency"`
	PaymentType         models.PaymentType         `db:"payment_type" json:"payment_type"`
	Gateway             models.Gateway             `db:"gateway" json:"gateway"`
	OrderID             string                     `db:"order_id" json:"order_id"`
	GatewayPaymentID    *string                    `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	GatewaySignature    *string                    `db:"gateway_signature" json:"-"`
	PaymentMethod       *string                    `db:"payment_method" json:"payment_method,omitempty"`
	GatewayDetails      map[string]string          `db:"gateway_details" json:"gateway_details,omitempty"`
	Status              models.PaymentRecordStatus `db:"status" json:"status"`
	FailureReason       *string                    `db:"failure_reason" json:"failure_reason,omitempty"`
	RefundAmount        *int64                     `db:"refund_amount" json:"refund_amount,omitempty"`
	RefundReason        *string                    `db:"refund_reason" json:"refund_reason,omitempty"`
	RefundTransactionID *string                    `db:"refund_transaction_id" json:"refund_transaction_id,omitempty"`
	CreatedAt           time.Time                  `db:"created_at" json:"created_at"`
	CompletedAt         *time.Time                 `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt            *time.Time                 `db:"failed_at" json:"failed_at,omitempty"`
	RefundedAt          *time.Time                 `db:"refunded_at" json:"refunded_at,omitempty"`
	UpdatedAt           time.Time                  `db:"updated_at" json:"updated_at"`
}

// Payout пакетная выплата монтажеру
type Payout struct {
	PayoutID             string              `db:"payout_id" json:"payout_id"`
	EditorID             string              `db:"editor_id" json:"editor_id"`
	Items                []models.PayoutItem `db:"items" json:"items"`
	TotalAmount          int64               `db:"total_amount" json:"total_amount"`
	PeriodStart          time.Time           `db:"period_start" json:"period_start"`
	PeriodEnd            time.Time           `db:"period_end" json:"period_end"`
	PaymentMethod        models.PayoutMethod `db:"payment_method" json:"payment_method"`
	AccountDetails       map[string]string   `db:"account_details" json:"account_details"`
	Status               models.PayoutStatus `db:"status" json:"status"`
	TransactionReference *string             `db:"transaction_reference" json:"transaction_reference,omitempty"`
	FailureReason        *string             `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedBy            string              `db:"created_by" json:"created_by"`
	ProcessedAt          *time.Time          `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt            time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time           `db:"updated_at" json:"updated_at"`
}

// ProjectIDs идентификаторы проектов в составе выплаты
func (p *Payout) ProjectIDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.ProjectID)
	}
	return ids
}

// Notification уведомление пользователю
type Notification struct {
	NotificationID   string                      `db:"notification_id" json:"notification_id"`
	UserID           string                      `db:"user_id" json:"user_id"`
	Type             models.NotificationType     `db:"type" json:"type"`
	Title            string                      `db:"title" json:"title"`
	Message          string                      `db:"message" json:"message"`
	RelatedProjectID *string                     `db:"related_project_id" json:"related_project_id,omitempty"`
	Priority         models.NotificationPriority `db:"priority" json:"priority"`
	IsRead           bool                        `db:"is_read" json:"is_read"`
	ReadAt           *time.Time                  `db:"read_at" json:"read_at,omitempty"`
	DeliveredAt      *time.Time                  `db:"delivered_at" json:"delivered_at,omitempty"`
	CreatedAt        time.Time                   `db:"created_at" json:"created_at"`
}

// Message сообщение в переписке по проекту
type Message struct {
	MessageID   string             `db:"message_id" json:"message_id"`
	ProjectID   string             `db:"project_id" json:"project_id"`
	SenderID    string             `db:"sender_id" json:"sender_id"`
	ReceiverID  string             `db:"receiver_id" json:"receiver_id"`
	MessageType models.MessageType `db:"message_type" json:"message_type"`
	Content     string             `db:"content" json:"content"`
	Attachment  *models.FileRef    `db:"attachment" json:"attachment,omitempty"`
	IsRead      bool               `db:"is_read" json:"is_read"`
	ReadAt      *time.Time         `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
}

// Upload загрузка файла в объектное хранилище
type Upload struct {
	UploadID        string            `db:"upload_id"`
	ProjectID       string            `db:"project_id"`
	UploadedBy      string            `db:"uploaded_by"`
	Kind            models.UploadKind `db:"kind"`
	FileName        string            `db:"file_name"`
	FileSizeBytes   int64             `db:"file_size_bytes"`
	ContentType     string            `db:"content_type"`
	StoragePath     string            `db:"storage_path"`
	MultipartID     string            `db:"multipart_id"`
	UploadStatus    string            `db:"upload_status"`
	TotalParts      *int32            `db:"total_parts"`
	UploadExpiresAt *time.Time        `db:"upload_expires_at"`
	CreatedAt       time.Time         `db:"created_at"`
	UploadedAt      *time.Time        `db:"uploaded_at"`
}

// RefreshToken представляет refresh токен
type RefreshToken struct {
	TokenID   string    `db:"token_id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	IsRevoked bool      `db:"is_revoked"`
}

// Статусы загрузки
const (
	UploadStatusUploading = "uploading"
	UploadStatusCompleted = "completed"
	UploadStatusAborted   = "aborted"
)
