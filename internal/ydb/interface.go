package ydb

import (
	"context"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Database определяет интерфейс для работы с базой данных.
// Методы с суффиксом Tx выполняются в одной serializable-транзакции и
// проверяют ожидаемый статус (compare-and-swap), возвращая Conflict при расхождении.
type Database interface {
	// Пользователи
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*User, int64, error)
	DeleteUserTx(ctx context.Context, userID string) error

	// Монтажеры
	RegisterEditorTx(ctx context.Context, user *User, editor *Editor) error
	GetEditor(ctx context.Context, editorID string) (*Editor, error)
	ListEditors(ctx context.Context, filter models.EditorFilter) ([]*Editor, int64, error)
	UpdateEditorApplication(ctx context.Context, editor *Editor, expected models.ApplicationStatus) error
	UpdateEditorProfile(ctx context.Context, editor *Editor) error
	CountEditorsByApplicationStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)

	// Каталог пакетов
	UpsertPackage(ctx context.Context, pkg *Package) error
	GetPackage(ctx context.Context, packageType models.PackageType) (*Package, error)
	ListPackages(ctx context.Context, activeOnly bool) ([]*Package, error)

	// Проекты
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, projectID string) (*Project, error)
	GetProjectsByIDs(ctx context.Context, projectIDs []string) ([]*Project, error)
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*Project, int64, error)
	ListProjectsDueSoon(ctx context.Context, before time.Time, editorID string) ([]*Project, error)
	ListProjectsCompletedBetween(ctx context.Context, from, to time.Time) ([]*Project, error)
	CountProjectsByStatus(ctx context.Context, filter models.ProjectFilter) (map[models.ProjectStatus]int64, error)
	UpdateProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error
	AssignProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error
	CompleteProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error
	CancelProjectTx(ctx context.Context, project *Project, expected models.ProjectStatus) error
	RateProjectTx(ctx context.Context, projectID string, rating int32, feedback string) (*Project, error)

	// Платежи
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*Payment, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*Payment, int64, error)
	ListPaymentsBetween(ctx context.Context, from, to time.Time) ([]*Payment, error)
	PaymentStats(ctx context.Context) (*models.PaymentStats, error)
	CompletePaymentTx(ctx context.Context, payment *Payment) (*Project, error)
	FailPayment(ctx context.Context, payment *Payment) error
	RefundPaymentTx(ctx context.Context, payment *Payment) (*Project, error)

	// Выплаты
	CreatePayoutTx(ctx context.Context, payout *Payout) error
	GetPayout(ctx context.Context, payoutID string) (*Payout, error)
	ListPayouts(ctx context.Context, filter models.PayoutFilter) ([]*Payout, int64, error)
	ListPayoutsBetween(ctx context.Context, from, to time.Time) ([]*Payout, error)
	UpdatePayoutStatusTx(ctx context.Context, payout *Payout, expected models.PayoutStatus) error
	SumPendingPayouts(ctx context.Context) (int64, error)

	// Уведомления
	CreateNotification(ctx context.Context, n *Notification) error
	GetNotification(ctx context.Context, notificationID string) (*Notification, error)
	ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*Notification, int64, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	MarkNotificationDelivered(ctx context.Context, notificationID string) error
	CountUnreadNotifications(ctx context.Context, userID string) (int64, error)

	// Сообщения
	CreateMessage(ctx context.Context, message *Message) error
	GetMessage(ctx context.Context, messageID string) (*Message, error)
	ListMessages(ctx context.Context, filter models.MessageFilter) ([]*Message, int64, error)
	MarkMessageRead(ctx context.Context, userID, messageID string) error
	MarkProjectMessagesRead(ctx context.Context, projectID, userID string) error
	CountUnreadMessages(ctx context.Context, userID string) (int64, error)

	// Загрузки
	CreateUpload(ctx context.Context, upload *Upload) error
	GetUpload(ctx context.Context, uploadID string) (*Upload, error)
	UpdateUpload(ctx context.Context, upload *Upload) error

	// Refresh токены
	CreateRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error

	// Аудит
	InsertAuditLog(ctx context.Context, auditLog *models.AuditLog) error
	GetAuditLogs(ctx context.Context, filters map[string]interface{}, limit, offset int) ([]*models.AuditLog, int64, error)

	Close() error
}
