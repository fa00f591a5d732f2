package mocks

import (
	"context"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	"github.com/stretchr/testify/mock"
)

// Database мок интерфейса ydb.Database
type Database struct {
	mock.Mock
}

var _ ydb.Database = (*Database)(nil)

func (m *Database) CreateUser(ctx context.Context, user *ydb.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Database) GetUserByID(ctx context.Context, userID string) (*ydb.User, error) {
	args := m.Called(ctx, userID)
	var r0 *ydb.User
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.User)
	}
	return r0, args.Error(1)
}

func (m *Database) GetUserByEmail(ctx context.Context, email string) (*ydb.User, error) {
	args := m.Called(ctx, email)
	var r0 *ydb.User
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.User)
	}
	return r0, args.Error(1)
}

func (m *Database) UpdateUser(ctx context.Context, user *ydb.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Database) ListUsers(ctx context.Context, filter models.UserFilter) ([]*ydb.User, int64, error) {
	args := m.Called(ctx, filter)
	var r0 []*ydb.User
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.User)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) DeleteUserTx(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Database) RegisterEditorTx(ctx context.Context, user *ydb.User, editor *ydb.Editor) error {
	args := m.Called(ctx, user, editor)
	return args.Error(0)
}

func (m *Database) GetEditor(ctx context.Context, editorID string) (*ydb.Editor, error) {
	args := m.Called(ctx, editorID)
	var r0 *ydb.Editor
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Editor)
	}
	return r0, args.Error(1)
}

func (m *Database) ListEditors(ctx context.Context, filter models.EditorFilter) ([]*ydb.Editor, int64, error) {
	args := m.Called(ctx, filter)
	var r0 []*ydb.Editor
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Editor)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) UpdateEditorApplication(ctx context.Context, editor *ydb.Editor, expected models.ApplicationStatus) error {
	args := m.Called(ctx, editor, expected)
	return args.Error(0)
}

func (m *Database) UpdateEditorProfile(ctx context.Context, editor *ydb.Editor) error {
	args := m.Called(ctx, editor)
	return args.Error(0)
}

func (m *Database) CountEditorsByApplicationStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	args := m.Called(ctx)
	var r0 map[models.ApplicationStatus]int64
	if v := args.Get(0); v != nil {
		r0 = v.(map[models.ApplicationStatus]int64)
	}
	return r0, args.Error(1)
}

func (m *Database) UpsertPackage(ctx context.Context, pkg *ydb.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *Database) GetPackage(ctx context.Context, packageType models.PackageType) (*ydb.Package, error) {
	args := m.Called(ctx, packageType)
	var r0 *ydb.Package
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Package)
	}
	return r0, args.Error(1)
}

func (m *Database) ListPackages(ctx context.Context, activeOnly bool) ([]*ydb.Package, error) {
	args := m.Called(ctx, activeOnly)
	var r0 []*ydb.Package
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Package)
	}
	return r0, args.Error(1)
}

func (m *Database) CreateProject(ctx context.Context, project *ydb.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *Database) GetProject(ctx context.Context, projectID string) (*ydb.Project, error) {
	args := m.Called(ctx, projectID)
	var r0 *ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Project)
	}
	return r0, args.Error(1)
}

func (m *Database) GetProjectsByIDs(ctx context.Context, projectIDs []string) ([]*ydb.Project, error) {
	args := m.Called(ctx, projectIDs)
	var r0 []*ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Project)
	}
	return r0, args.Error(1)
}

func (m *Database) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]*ydb.Project, int64, error) {
	args := m.Called(ctx, filter)
	var r0 []*ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Project)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) ListProjectsDueSoon(ctx context.Context, before time.Time, editorID string) ([]*ydb.Project, error) {
	args := m.Called(ctx, before, editorID)
	var r0 []*ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Project)
	}
	return r0, args.Error(1)
}

func (m *Database) ListProjectsCompletedBetween(ctx context.Context, from, to time.Time) ([]*ydb.Project, error) {
	args := m.Called(ctx, from, to)
	var r0 []*ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Project)
	}
	return r0, args.Error(1)
}

func (m *Database) CountProjectsByStatus(ctx context.Context, filter models.ProjectFilter) (map[models.ProjectStatus]int64, error) {
	args := m.Called(ctx, filter)
	var r0 map[models.ProjectStatus]int64
	if v := args.Get(0); v != nil {
		r0 = v.(map[models.ProjectStatus]int64)
	}
	return r0, args.Error(1)
}

func (m *Database) UpdateProjectTx(ctx context.Context, project *ydb.Project, expected models.ProjectStatus) error {
	args := m.Called(ctx, project, expected)
	return args.Error(0)
}

func (m *Database) AssignProjectTx(ctx context.Context, project *ydb.Project, expected models.ProjectStatus) error {
	args := m.Called(ctx, project, expected)
	return args.Error(0)
}

func (m *Database) CompleteProjectTx(ctx context.Context, project *ydb.Project, expected models.ProjectStatus) error {
	args := m.Called(ctx, project, expected)
	return args.Error(0)
}

func (m *Database) CancelProjectTx(ctx context.Context, project *ydb.Project, expected models.ProjectStatus) error {
	args := m.Called(ctx, project, expected)
	return args.Error(0)
}

func (m *Database) RateProjectTx(ctx context.Context, projectID string, rating int32, feedback string) (*ydb.Project, error) {
	args := m.Called(ctx, projectID, rating, feedback)
	var r0 *ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Project)
	}
	return r0, args.Error(1)
}

func (m *Database) CreatePayment(ctx context.Context, payment *ydb.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *Database) GetPayment(ctx context.Context, paymentID string) (*ydb.Payment, error) {
	args := m.Called(ctx, paymentID)
	var r0 *ydb.Payment
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Payment)
	}
	return r0, args.Error(1)
}

func (m *Database) GetPaymentByOrderID(ctx context.Context, orderID string) (*ydb.Payment, error) {
	args := m.Called(ctx, orderID)
	var r0 *ydb.Payment
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Payment)
	}
	return r0, args.Error(1)
}

func (m *Database) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*ydb.Payment, int64, error) {
	args := m.Called(ctx, filter)
	var r0 []*ydb.Payment
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Payment)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) ListPaymentsBetween(ctx context.Context, from, to time.Time) ([]*ydb.Payment, error) {
	args := m.Called(ctx, from, to)
	var r0 []*ydb.Payment
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Payment)
	}
	return r0, args.Error(1)
}

func (m *Database) PaymentStats(ctx context.Context) (*models.PaymentStats, error) {
	args := m.Called(ctx)
	var r0 *models.PaymentStats
	if v := args.Get(0); v != nil {
		r0 = v.(*models.PaymentStats)
	}
	return r0, args.Error(1)
}

func (m *Database) CompletePaymentTx(ctx context.Context, payment *ydb.Payment) (*ydb.Project, error) {
	args := m.Called(ctx, payment)
	var r0 *ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Project)
	}
	return r0, args.Error(1)
}

func (m *Database) FailPayment(ctx context.Context, payment *ydb.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *Database) RefundPaymentTx(ctx context.Context, payment *ydb.Payment) (*ydb.Project, error) {
	args := m.Called(ctx, payment)
	var r0 *ydb.Project
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Project)
	}
	return r0, args.Error(1)
}

func (m *Database) CreatePayoutTx(ctx context.Context, payout *ydb.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

func (m *Database) GetPayout(ctx context.Context, payoutID string) (*ydb.Payout, error) {
	args := m.Called(ctx, payoutID)
	var r0 *ydb.Payout
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Payout)
	}
	return r0, args.Error(1)
}

func (m *Database) ListPayouts(ctx context.Context, filter models.PayoutFilter) ([]*ydb.Payout, int64, error) {
	args := m.Called(ctx, filter)
	var r0 []*ydb.Payout
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Payout)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) ListPayoutsBetween(ctx context.Context, from, to time.Time) ([]*ydb.Payout, error) {
	args := m.Called(ctx, from, to)
	var r0 []*ydb.Payout
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Payout)
	}
	return r0, args.Error(1)
}

func (m *Database) UpdatePayoutStatusTx(ctx context.Context, payout *ydb.Payout, expected models.PayoutStatus) error {
	args := m.Called(ctx, payout, expected)
	return args.Error(0)
}

func (m *Database) SumPendingPayouts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Database) CreateNotification(ctx context.Context, n *ydb.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *Database) GetNotification(ctx context.Context, notificationID string) (*ydb.Notification, error) {
	args := m.Called(ctx, notificationID)
	var r0 *ydb.Notification
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Notification)
	}
	return r0, args.Error(1)
}

func (m *Database) ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]*ydb.Notification, int64, error) {
	args := m.Called(ctx, filter)
	var r0 []*ydb.Notification
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Notification)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *Database) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Database) MarkNotificationDelivered(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}

func (m *Database) CountUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Database) CreateMessage(ctx context.Context, message *ydb.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *Database) GetMessage(ctx context.Context, messageID string) (*ydb.Message, error) {
	args := m.Called(ctx, messageID)
	var r0 *ydb.Message
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Message)
	}
	return r0, args.Error(1)
}

func (m *Database) ListMessages(ctx context.Context, filter models.MessageFilter) ([]*ydb.Message, int64, error) {
	args := m.Called(ctx, filter)
	var r0 []*ydb.Message
	if v := args.Get(0); v != nil {
		r0 = v.([]*ydb.Message)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) MarkMessageRead(ctx context.Context, userID, messageID string) error {
	args := m.Called(ctx, userID, messageID)
	return args.Error(0)
}

func (m *Database) MarkProjectMessagesRead(ctx context.Context, projectID, userID string) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *Database) CountUnreadMessages(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Database) CreateUpload(ctx context.Context, upload *ydb.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *Database) GetUpload(ctx context.Context, uploadID string) (*ydb.Upload, error) {
	args := m.Called(ctx, uploadID)
	var r0 *ydb.Upload
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.Upload)
	}
	return r0, args.Error(1)
}

func (m *Database) UpdateUpload(ctx context.Context, upload *ydb.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *Database) CreateRefreshToken(ctx context.Context, token *ydb.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *Database) GetRefreshToken(ctx context.Context, tokenHash string) (*ydb.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	var r0 *ydb.RefreshToken
	if v := args.Get(0); v != nil {
		r0 = v.(*ydb.RefreshToken)
	}
	return r0, args.Error(1)
}

func (m *Database) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *Database) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *Database) InsertAuditLog(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *Database) GetAuditLogs(ctx context.Context, filters map[string]interface{}, limit, offset int) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, filters, limit, offset)
	var r0 []*models.AuditLog
	if v := args.Get(0); v != nil {
		r0 = v.([]*models.AuditLog)
	}
	return r0, args.Get(1).(int64), args.Error(2)
}

func (m *Database) Close() error {
	args := m.Called()
	return args.Error(0)
}
