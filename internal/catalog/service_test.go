package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lumiforge/cutroom-backend/internal/config"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/cutroom-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCatalog() (*Service, *ydbmocks.Database) {
	mockDB := new(ydbmocks.Database)
	cfg := &config.Config{EditorFeePercent: 70, AdvancePercent: 50}
	return NewService(mockDB, cfg), mockDB
}

func TestEditorFee_Floors(t *testing.T) {
	assert.Equal(t, int64(1399), EditorFee(1999, 70))
	assert.Equal(t, int64(3499), EditorFee(4999, 70))
	assert.Equal(t, int64(6999), EditorFee(9999, 70))
	assert.Equal(t, int64(2499), AdvanceAmount(4999, 50))
}

func TestService_Quote(t *testing.T) {
	service, mockDB := setupCatalog()
	ctx := context.Background()

	mockDB.On("GetPackage", ctx, models.PackageAdvanced).Return(&ydb.Package{
		PackageType:           models.PackageAdvanced,
		Name:                  "Advanced",
		BasePrice:             4999,
		MaxRevisions:          4,
		EstimatedDeliveryDays: 5,
		IsActive:              true,
	}, nil)

	quote, err := service.Quote(ctx, models.PackageAdvanced)
	require.NoError(t, err)
	assert.Equal(t, int64(4999), quote.TotalAmount)
	assert.Equal(t, int64(3499), quote.EditorFee)
	assert.Equal(t, int64(2499), quote.AdvanceAmount)
	assert.Equal(t, int32(4), quote.MaxRevisions)
	assert.Equal(t, int32(5), quote.DeliveryDays)
}

func TestService_GetActive_Inactive(t *testing.T) {
	service, mockDB := setupCatalog()
	ctx := context.Background()

	mockDB.On("GetPackage", ctx, models.PackageCustom).Return(&ydb.Package{
		PackageType: models.PackageCustom,
		IsActive:    false,
	}, nil)

	_, err := service.GetActive(ctx, models.PackageCustom)
	assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
}

func TestService_Get_UnknownType(t *testing.T) {
	service, mockDB := setupCatalog()

	_, err := service.Get(context.Background(), models.PackageType("premium"))
	assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	mockDB.AssertNotCalled(t, "GetPackage", mock.Anything, mock.Anything)
}

func TestService_Upsert_Validation(t *testing.T) {
	service, _ := setupCatalog()
	ctx := context.Background()

	tests := []struct {
		name string
		pkg  *ydb.Package
	}{
		{"nil", nil},
		{"unknown type", &ydb.Package{PackageType: "gold", Name: "Gold", BasePrice: 1, EstimatedDeliveryDays: 1}},
		{"empty name", &ydb.Package{PackageType: models.PackageBasic, BasePrice: 1, EstimatedDeliveryDays: 1}},
		{"zero price", &ydb.Package{PackageType: models.PackageBasic, Name: "Basic", EstimatedDeliveryDays: 1}},
		{"bad revisions", &ydb.Package{PackageType: models.PackageBasic, Name: "Basic", BasePrice: 1, MaxRevisions: -2, EstimatedDeliveryDays: 1}},
		{"zero delivery", &ydb.Package{PackageType: models.PackageBasic, Name: "Basic", BasePrice: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Upsert(ctx, tt.pkg)
			assert.True(t, app_errors.Is(err, app_errors.KindValidation))
		})
	}
}

func TestService_SeedFromFile_Defaults(t *testing.T) {
	service, mockDB := setupCatalog()
	ctx := context.Background()

	mockDB.On("UpsertPackage", ctx, mock.AnythingOfType("*ydb.Package")).Return(nil).Times(3)

	n, err := service.SeedFromFile(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	mockDB.AssertExpectations(t)
}

func TestService_SeedFromFile_YAML(t *testing.T) {
	service, mockDB := setupCatalog()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "packages.yaml")
	content := `packages:
  - package_type: basic
    name: Basic
    base_price: 1999
    max_revisions: 2
    estimated_delivery_days: 3
    features: [cuts, music]
    is_active: true
  - package_type: custom
    name: Custom
    base_price: 9999
    max_revisions: -1
    estimated_delivery_days: 7
    is_active: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	mockDB.On("UpsertPackage", ctx, mock.MatchedBy(func(p *ydb.Package) bool {
		return p.PackageType == models.PackageBasic && p.BasePrice == 1999 && len(p.Features) == 2
	})).Return(nil).Once()
	mockDB.On("UpsertPackage", ctx, mock.MatchedBy(func(p *ydb.Package) bool {
		return p.PackageType == models.PackageCustom && p.MaxRevisions == models.UnlimitedRevisions
	})).Return(nil).Once()

	n, err := service.SeedFromFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	mockDB.AssertExpectations(t)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packages:\n  - package_type: basic\n    name: ''\n"), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
