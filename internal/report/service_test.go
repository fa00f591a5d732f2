package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	storagemocks "github.com/lumiforge/cutroom-backend/internal/storage/mocks"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/cutroom-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	admin    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	editor   = models.Actor{UserID: "editor-1", Role: models.RoleEditor}
)

func setupReportService() (*Service, *ydbmocks.Database, *storagemocks.StorageProvider) {
	mockDB := new(ydbmocks.Database)
	mockStorage := new(storagemocks.StorageProvider)
	service := NewService(mockDB, mockStorage, nil)
	service.now = func() time.Time { return fixedNow }
	return service, mockDB, mockStorage
}

func TestDashboard(t *testing.T) {
	service, mockDB, _ := setupReportService()
	ctx := context.Background()

	mockDB.On("CountProjectsByStatus", ctx, models.ProjectFilter{}).Return(map[models.ProjectStatus]int64{
		models.StatusInProgress: 4,
		models.StatusCompleted:  7,
	}, nil)
	mockDB.On("PaymentStats", ctx).Return(&models.PaymentStats{
		Count: map[models.PaymentRecordStatus]int64{models.PaymentCompleted: 3, models.PaymentRefunded: 1},
		Sum: map[models.PaymentRecordStatus]int64{
			models.PaymentCompleted: 9997,
			models.PaymentRefunded:  4999,
		},
		RefundedTotal: 2000,
	}, nil)
	mockDB.On("SumPendingPayouts", ctx).Return(int64(2098), nil)
	mockDB.On("CountEditorsByApplicationStatus", ctx).Return(map[models.ApplicationStatus]int64{
		models.ApplicationApproved: 5,
		models.ApplicationPending:  2,
	}, nil)

	d, err := service.Dashboard(ctx, admin)

	require.NoError(t, err)
	assert.Len(t, d.ProjectsByStatus, len(models.AllProjectStatuses))
	assert.Equal(t, int64(7), d.ProjectsByStatus[models.StatusCompleted])
	assert.Equal(t, int64(0), d.ProjectsByStatus[models.StatusCancelled])
	assert.Equal(t, int64(9997+4999-2000), d.Revenue)
	assert.Equal(t, int64(2000), d.Refunds)
	assert.Equal(t, int64(2098), d.PendingPayouts)
	assert.Equal(t, int64(0), d.EditorsByStatus[models.ApplicationRejected])
	assert.Equal(t, fixedNow.Unix(), d.GeneratedAt)
}

func TestDashboard_AdminOnly(t *testing.T) {
	service, mockDB, _ := setupReportService()

	_, err := service.Dashboard(context.Background(), editor)

	assert.ErrorIs(t, err, app_errors.ErrAccessDenied)
	mockDB.AssertNotCalled(t, "CountProjectsByStatus", mock.Anything, mock.Anything)
}

func TestMonthlyReport(t *testing.T) {
	service, mockDB, mockStorage := setupReportService()
	ctx := context.Background()

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	completedAt := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	editorID := "editor-1"
	rating := int32(5)

	mockDB.On("ListProjectsCompletedBetween", ctx, from, to).Return([]*ydb.Project{{
		ProjectID:           "project-1",
		Title:               "Wedding teaser",
		PackageType:         models.PackageAdvanced,
		CustomerID:          "customer-1",
		EditorID:            &editorID,
		TotalAmount:         4999,
		PaidAmount:          4999,
		EditorFee:           3499,
		EditorPaymentStatus: models.EditorPaymentProcessing,
		RevisionsUsed:       2,
		Rating:              &rating,
		CompletedAt:         &completedAt,
	}}, nil)
	mockDB.On("ListPaymentsBetween", ctx, from, to).Return([]*ydb.Payment{{
		PaymentID: "pay-1", ProjectID: "project-1", Amount: 4999, Currency: "INR",
		PaymentType: models.PaymentTypeFull, Gateway: models.GatewayRazorpay, Status: models.PaymentCompleted,
		CreatedAt: completedAt,
	}}, nil)
	mockDB.On("ListPayoutsBetween", ctx, from, to).Return([]*ydb.Payout(nil), nil)

	var uploaded []byte
	mockStorage.On("PutReport", ctx, mock.MatchedBy(func(key string) bool {
		return key == "reports/2026-02/cutroom_2026_02_20260310_120000.xlsx"
	}), mock.Anything, xlsxContentType).Run(func(args mock.Arguments) {
		uploaded = args.Get(2).([]byte)
	}).Return(nil)
	mockStorage.On("GenerateReportURL", ctx, mock.Anything, 24*time.Hour).Return("https://s3/report.xlsx", nil)

	resp, err := service.MonthlyReport(ctx, admin, 2026, 2)

	require.NoError(t, err)
	assert.Equal(t, "https://s3/report.xlsx", resp.URL)
	assert.Equal(t, 2, resp.Month)

	f, err := excelize.OpenReader(bytes.NewReader(uploaded))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Projects", "Payments", "Payouts"}, f.GetSheetList())

	title, err := f.GetCellValue("Projects", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Wedding teaser", title)
	fee, _ := f.GetCellValue("Projects", "H2")
	assert.Equal(t, "3499", fee)
	amount, _ := f.GetCellValue("Payments", "E2")
	assert.Equal(t, "4999", amount)

	rows, err := f.GetRows("Payouts")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMonthlyReport_Validation(t *testing.T) {
	service, _, _ := setupReportService()
	ctx := context.Background()

	tests := []struct {
		name        string
		year, month int
	}{
		{"month zero", 2026, 0},
		{"month thirteen", 2026, 13},
		{"future year", 2027, 1},
		{"ancient year", 1999, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.MonthlyReport(ctx, admin, tt.year, tt.month)
			assert.True(t, app_errors.Is(err, app_errors.KindValidation))
		})
	}

	_, err := service.MonthlyReport(ctx, editor, 2026, 2)
	assert.ErrorIs(t, err, app_errors.ErrAccessDenied)
}
