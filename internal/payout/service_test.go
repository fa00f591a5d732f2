package payout

import (
	"context"
	"testing"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	notifmocks "github.com/lumiforge/cutroom-backend/internal/notification/mocks"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/cutroom-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin  = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	editor = models.Actor{UserID: "editor-1", Role: models.RoleEditor}
	base   = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
)

func setup() (*Service, *ydbmocks.Database, *notifmocks.Sink) {
	mockDB := new(ydbmocks.Database)
	sink := new(notifmocks.Sink)
	sink.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	return NewService(mockDB, sink, nil), mockDB, sink
}

func completed(id string, fee int64, day int, paymentStatus models.EditorPaymentStatus) *ydb.Project {
	editorID := "editor-1"
	at := base.AddDate(0, 0, day)
	return &ydb.Project{
		ProjectID:           id,
		EditorID:            &editorID,
		Status:              models.StatusCompleted,
		EditorFee:           fee,
		EditorPaymentStatus: paymentStatus,
		CompletedAt:         &at,
	}
}

func payoutEditor() *ydb.Editor {
	method := models.PayoutUPI
	return &ydb.Editor{
		EditorID:      "editor-1",
		PayoutMethod:  &method,
		PayoutDetails: map[string]string{"upi_id": "editor@upi"},
	}
}

func TestCreate_ExcludesPaidProjects(t *testing.T) {
	service, mockDB, sink := setup()
	ctx := context.Background()

	mockDB.On("GetEditor", ctx, "editor-1").Return(payoutEditor(), nil)
	mockDB.On("GetProjectsByIDs", ctx, []string{"p-1", "p-2", "p-3"}).Return([]*ydb.Project{
		completed("p-1", 1399, 3, models.EditorPaymentProcessing),
		completed("p-2", 3499, 1, models.EditorPaymentPaid),
		completed("p-3", 699, 5, models.EditorPaymentPending),
	}, nil)
	mockDB.On("CreatePayoutTx", ctx, mock.AnythingOfType("*ydb.Payout")).Return(nil)

	payout, err := service.Create(ctx, admin, models.CreatePayoutRequest{
		EditorID:   "editor-1",
		ProjectIDs: []string{"p-1", "p-2", "p-3", "p-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-3"}, payout.ProjectIDs())
	assert.Equal(t, int64(1399+699), payout.TotalAmount)
	assert.Equal(t, base.AddDate(0, 0, 3), payout.PeriodStart)
	assert.Equal(t, base.AddDate(0, 0, 5), payout.PeriodEnd)
	assert.Equal(t, models.PayoutUPI, payout.PaymentMethod)
	assert.Equal(t, "editor@upi", payout.AccountDetails["upi_id"])
	assert.Equal(t, models.PayoutPending, payout.Status)

	require.Len(t, sink.Calls, 1)
	ev := sink.Calls[0].Arguments.Get(1).(notification.Event)
	assert.Equal(t, models.NotificationPayoutCreated, ev.Type)
}

func TestCreate_SnapshotIsCopied(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()
	ed := payoutEditor()

	mockDB.On("GetEditor", ctx, "editor-1").Return(ed, nil)
	mockDB.On("GetProjectsByIDs", ctx, []string{"p-1"}).Return([]*ydb.Project{completed("p-1", 100, 1, models.EditorPaymentPending)}, nil)
	mockDB.On("CreatePayoutTx", ctx, mock.Anything).Return(nil)

	payout, err := service.Create(ctx, admin, models.CreatePayoutRequest{EditorID: "editor-1", ProjectIDs: []string{"p-1"}})
	require.NoError(t, err)

	ed.PayoutDetails["upi_id"] = "changed@upi"
	assert.Equal(t, "editor@upi", payout.AccountDetails["upi_id"])
}

func TestCreate_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing eligible", func(t *testing.T) {
		service, mockDB, _ := setup()
		other := "editor-2"
		foreign := completed("p-2", 100, 1, models.EditorPaymentPending)
		foreign.EditorID = &other
		mockDB.On("GetEditor", ctx, "editor-1").Return(payoutEditor(), nil)
		mockDB.On("GetProjectsByIDs", ctx, []string{"p-1", "p-2"}).Return([]*ydb.Project{
			completed("p-1", 100, 1, models.EditorPaymentPaid),
			foreign,
		}, nil)

		_, err := service.Create(ctx, admin, models.CreatePayoutRequest{EditorID: "editor-1", ProjectIDs: []string{"p-1", "p-2"}})
		assert.ErrorIs(t, err, app_errors.ErrNoEligibleProjects)
		mockDB.AssertNotCalled(t, "CreatePayoutTx", mock.Anything, mock.Anything)
	})

	t.Run("no payout account", func(t *testing.T) {
		service, mockDB, _ := setup()
		mockDB.On("GetEditor", ctx, "editor-1").Return(&ydb.Editor{EditorID: "editor-1"}, nil)
		mockDB.On("GetProjectsByIDs", ctx, []string{"p-1"}).Return([]*ydb.Project{completed("p-1", 100, 1, models.EditorPaymentPending)}, nil)

		_, err := service.Create(ctx, admin, models.CreatePayoutRequest{EditorID: "editor-1", ProjectIDs: []string{"p-1"}})
		assert.ErrorIs(t, err, app_errors.ErrNoPayoutAccount)
	})

	t.Run("already in live payout", func(t *testing.T) {
		service, mockDB, _ := setup()
		batched := completed("p-1", 100, 1, models.EditorPaymentProcessing)
		payoutID := "payout-0"
		batched.PayoutID = &payoutID
		mockDB.On("GetEditor", ctx, "editor-1").Return(payoutEditor(), nil)
		mockDB.On("GetProjectsByIDs", ctx, []string{"p-1"}).Return([]*ydb.Project{batched}, nil)

		_, err := service.Create(ctx, admin, models.CreatePayoutRequest{EditorID: "editor-1", ProjectIDs: []string{"p-1"}})
		assert.ErrorIs(t, err, app_errors.ErrNoEligibleProjects)
	})

	t.Run("concurrent batch", func(t *testing.T) {
		service, mockDB, _ := setup()
		mockDB.On("GetEditor", ctx, "editor-1").Return(payoutEditor(), nil)
		mockDB.On("GetProjectsByIDs", ctx, []string{"p-1"}).Return([]*ydb.Project{completed("p-1", 100, 1, models.EditorPaymentPending)}, nil)
		mockDB.On("CreatePayoutTx", ctx, mock.Anything).Return(app_errors.ErrPayoutConflict)

		_, err := service.Create(ctx, admin, models.CreatePayoutRequest{EditorID: "editor-1", ProjectIDs: []string{"p-1"}})
		assert.True(t, app_errors.Is(err, app_errors.KindConflict))
	})

	t.Run("editor cannot create", func(t *testing.T) {
		service, _, _ := setup()
		_, err := service.Create(ctx, editor, models.CreatePayoutRequest{EditorID: "editor-1", ProjectIDs: []string{"p-1"}})
		assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
	})

	t.Run("empty ids", func(t *testing.T) {
		service, _, _ := setup()
		_, err := service.Create(ctx, admin, models.CreatePayoutRequest{EditorID: "editor-1", ProjectIDs: []string{" "}})
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.PayoutStatus
		want     bool
	}{
		{models.PayoutPending, models.PayoutProcessing, true},
		{models.PayoutPending, models.PayoutCompleted, true},
		{models.PayoutPending, models.PayoutCancelled, true},
		{models.PayoutProcessing, models.PayoutFailed, true},
		{models.PayoutProcessing, models.PayoutCancelled, false},
		{models.PayoutCompleted, models.PayoutFailed, false},
		{models.PayoutFailed, models.PayoutPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("completed", func(t *testing.T) {
		service, mockDB, sink := setup()
		payout := &ydb.Payout{PayoutID: "payout-1", EditorID: "editor-1", Status: models.PayoutProcessing, TotalAmount: 2098}
		mockDB.On("GetPayout", ctx, "payout-1").Return(payout, nil)
		mockDB.On("UpdatePayoutStatusTx", ctx, payout, models.PayoutProcessing).Return(nil)

		updated, err := service.UpdateStatus(ctx, admin, "payout-1", models.UpdatePayoutStatusRequest{
			Status:               models.PayoutCompleted,
			TransactionReference: "UTR123",
		})
		require.NoError(t, err)
		assert.Equal(t, models.PayoutCompleted, updated.Status)
		assert.Equal(t, "UTR123", *updated.TransactionReference)
		assert.NotNil(t, updated.ProcessedAt)
		ev := sink.Calls[0].Arguments.Get(1).(notification.Event)
		assert.Equal(t, models.NotificationPayoutProcessed, ev.Type)
	})

	t.Run("failed is urgent", func(t *testing.T) {
		service, mockDB, sink := setup()
		payout := &ydb.Payout{PayoutID: "payout-1", EditorID: "editor-1", Status: models.PayoutPending}
		mockDB.On("GetPayout", ctx, "payout-1").Return(payout, nil)
		mockDB.On("UpdatePayoutStatusTx", ctx, payout, models.PayoutPending).Return(nil)

		_, err := service.UpdateStatus(ctx, admin, "payout-1", models.UpdatePayoutStatusRequest{Status: models.PayoutFailed, FailureReason: "IFSC invalid"})
		require.NoError(t, err)
		ev := sink.Calls[0].Arguments.Get(1).(notification.Event)
		assert.Equal(t, models.NotificationPayoutFailed, ev.Type)
		assert.Equal(t, models.PriorityUrgent, ev.Priority)
	})

	t.Run("failed needs reason", func(t *testing.T) {
		service, mockDB, _ := setup()
		mockDB.On("GetPayout", ctx, "payout-1").Return(&ydb.Payout{PayoutID: "payout-1", Status: models.PayoutPending}, nil)
		_, err := service.UpdateStatus(ctx, admin, "payout-1", models.UpdatePayoutStatusRequest{Status: models.PayoutFailed})
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})

	t.Run("terminal", func(t *testing.T) {
		service, mockDB, _ := setup()
		mockDB.On("GetPayout", ctx, "payout-1").Return(&ydb.Payout{PayoutID: "payout-1", Status: models.PayoutCompleted}, nil)
		_, err := service.UpdateStatus(ctx, admin, "payout-1", models.UpdatePayoutStatusRequest{Status: models.PayoutFailed, FailureReason: "x"})
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
		mockDB.AssertNotCalled(t, "UpdatePayoutStatusTx", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPendingEarnings(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()

	mockDB.On("ListProjects", ctx, models.ProjectFilter{EditorID: "editor-1", Status: models.StatusCompleted, Limit: maxBatch}).
		Return([]*ydb.Project{
			completed("p-1", 1399, 2, models.EditorPaymentProcessing),
			completed("p-2", 3499, 1, models.EditorPaymentPaid),
			completed("p-3", 700, 1, models.EditorPaymentPending),
		}, int64(3), nil)

	resp, err := service.PendingEarnings(ctx, editor, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, "editor-1", resp.EditorID)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "p-3", resp.Items[0].ProjectID)
	assert.Equal(t, int64(2099), resp.Total)
}

func TestGet_OtherEditor(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()
	mockDB.On("GetPayout", ctx, "payout-1").Return(&ydb.Payout{PayoutID: "payout-1", EditorID: "editor-2"}, nil)

	_, err := service.Get(ctx, editor, "payout-1")
	assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
}
