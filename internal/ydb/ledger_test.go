package ydb

import (
	"testing"
	"time"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProjectApplyPayment(t *testing.T) {
	tests := []struct {
		name       string
		paid       int64
		amount     int64
		wantErr    error
		wantPaid   int64
		wantStatus models.PaymentStatus
	}{
		{name: "full", paid: 0, amount: 4999, wantPaid: 4999, wantStatus: models.PaymentStatusCompleted},
		{name: "advance", paid: 0, amount: 2499, wantPaid: 2499, wantStatus: models.PaymentStatusPartial},
		{name: "remainder after advance", paid: 2499, amount: 2500, wantPaid: 4999, wantStatus: models.PaymentStatusCompleted},
		{name: "second full payment", paid: 4999, amount: 4999, wantErr: app_errors.ErrPaymentExceedsDue, wantPaid: 4999, wantStatus: models.PaymentStatusCompleted},
		{name: "one over", paid: 2499, amount: 2501, wantErr: app_errors.ErrPaymentExceedsDue, wantPaid: 2499, wantStatus: models.PaymentStatusPartial},
		{name: "zero", paid: 0, amount: 0, wantErr: app_errors.ErrPaymentExceedsDue, wantPaid: 0, wantStatus: models.PaymentStatusPending},
		{name: "negative", paid: 100, amount: -100, wantErr: app_errors.ErrPaymentExceedsDue, wantPaid: 100, wantStatus: models.PaymentStatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := models.PaymentStatusPending
			if tt.paid > 0 && tt.paid < 4999 {
				status = models.PaymentStatusPartial
			} else if tt.paid == 4999 {
				status = models.PaymentStatusCompleted
			}
			p := &Project{TotalAmount: 4999, PaidAmount: tt.paid, PaymentStatus: status}

			err := p.ApplyPayment(tt.amount)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantPaid, p.PaidAmount)
			assert.Equal(t, tt.wantStatus, p.PaymentStatus)
			assert.LessOrEqual(t, p.PaidAmount, p.TotalAmount)
		})
	}
}

func TestProjectApplyRefund(t *testing.T) {
	p := &Project{TotalAmount: 4999, PaidAmount: 4999, PaymentStatus: models.PaymentStatusCompleted}
	p.ApplyRefund(2000)
	assert.Equal(t, int64(2999), p.PaidAmount)
	assert.Equal(t, models.PaymentStatusRefunded, p.PaymentStatus)

	p.ApplyRefund(5000)
	assert.Equal(t, int64(0), p.PaidAmount)
}

func TestCheckRefundable(t *testing.T) {
	completed := &Payment{Amount: 1000, Status: models.PaymentCompleted}

	assert.NoError(t, checkRefundable(completed, 1000))
	assert.NoError(t, checkRefundable(completed, 1))
	assert.ErrorIs(t, checkRefundable(completed, 1001), app_errors.ErrRefundExceedsAmount)
	assert.ErrorIs(t, checkRefundable(completed, 0), app_errors.ErrRefundExceedsAmount)
	assert.ErrorIs(t, checkRefundable(&Payment{Amount: 1000, Status: models.PaymentRefunded}, 10), app_errors.ErrPaymentConflict)
	assert.ErrorIs(t, checkRefundable(&Payment{Amount: 1000, Status: models.PaymentPending}, 10), app_errors.ErrPaymentConflict)
}

func TestCheckPaymentPending(t *testing.T) {
	assert.NoError(t, checkPaymentPending(&Payment{Status: models.PaymentPending}))
	for _, st := range []models.PaymentRecordStatus{models.PaymentCompleted, models.PaymentFailed, models.PaymentRefunded} {
		assert.ErrorIs(t, checkPaymentPending(&Payment{Status: st}), app_errors.ErrPaymentConflict, st)
	}
}

func TestCheckProjectVersion(t *testing.T) {
	version := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := &Project{Status: models.StatusInProgress, UpdatedAt: version}

	tests := []struct {
		name     string
		expected models.ProjectStatus
		version  time.Time
		wantErr  bool
	}{
		{"same status and version", models.StatusInProgress, version, false},
		{"same instant in another zone", models.StatusInProgress, version.In(time.FixedZone("IST", 5*3600+1800)), false},
		{"version check disabled", models.StatusInProgress, time.Time{}, false},
		{"status moved on", models.StatusAssigned, version, true},
		{"stale version", models.StatusInProgress, version.Add(-time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkProjectVersion(current, tt.expected, tt.version)
			if tt.wantErr {
				assert.ErrorIs(t, err, app_errors.ErrStatusConflict)
				assert.True(t, app_errors.Is(err, app_errors.KindConflict))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckPayoutBatch(t *testing.T) {
	eligible := func(id, editorID string) *Project {
		return &Project{
			ProjectID:           id,
			EditorID:            strPtr(editorID),
			Status:              models.StatusCompleted,
			EditorPaymentStatus: models.EditorPaymentProcessing,
		}
	}

	tests := []struct {
		name     string
		projects []*Project
		ids      []string
		wantErr  error
	}{
		{
			name:     "all eligible",
			projects: []*Project{eligible("p1", "editor-1"), eligible("p2", "editor-1")},
			ids:      []string{"p1", "p2"},
		},
		{
			name: "reverted after failed payout",
			projects: []*Project{func() *Project {
				p := eligible("p1", "editor-1")
				p.EditorPaymentStatus = models.EditorPaymentPending
				return p
			}()},
			ids: []string{"p1"},
		},
		{
			name:     "project missing",
			projects: []*Project{eligible("p1", "editor-1")},
			ids:      []string{"p1", "p2"},
			wantErr:  app_errors.ErrPayoutConflict,
		},
		{
			name:     "other editor",
			projects: []*Project{eligible("p1", "editor-2")},
			ids:      []string{"p1"},
			wantErr:  app_errors.ErrPayoutConflict,
		},
		{
			name: "already batched",
			projects: []*Project{func() *Project {
				p := eligible("p1", "editor-1")
				p.PayoutID = strPtr("payout-0")
				return p
			}()},
			ids:     []string{"p1"},
			wantErr: app_errors.ErrPayoutConflict,
		},
		{
			name: "already paid",
			projects: []*Project{func() *Project {
				p := eligible("p1", "editor-1")
				p.EditorPaymentStatus = models.EditorPaymentPaid
				return p
			}()},
			ids:     []string{"p1"},
			wantErr: app_errors.ErrPayoutConflict,
		},
		{
			name: "reopened before commit",
			projects: []*Project{func() *Project {
				p := eligible("p1", "editor-1")
				p.Status = models.StatusCancelled
				return p
			}()},
			ids:     []string{"p1"},
			wantErr: app_errors.ErrPayoutConflict,
		},
		{
			name:    "empty batch",
			wantErr: app_errors.ErrNoEligibleProjects,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPayoutBatch(tt.projects, "editor-1", tt.ids)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckPayoutStatus(t *testing.T) {
	assert.NoError(t, checkPayoutStatus(models.PayoutPending, models.PayoutPending))
	assert.ErrorIs(t, checkPayoutStatus(models.PayoutCompleted, models.PayoutPending), app_errors.ErrPayoutConflict)
}
