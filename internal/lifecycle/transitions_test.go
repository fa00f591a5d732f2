package lifecycle

import (
	"testing"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to models.ProjectStatus
		action   Action
		kind     app_errors.Kind
	}{
		{models.StatusPendingAssignment, models.StatusAssigned, ActionAssign, ""},
		{models.StatusAssigned, models.StatusInProgress, ActionStart, ""},
		{models.StatusInProgress, models.StatusReadyForReview, ActionSubmitDraft, ""},
		{models.StatusReadyForReview, models.StatusRevisionRequested, ActionRequestRevision, ""},
		{models.StatusRevisionRequested, models.StatusReadyForReview, ActionSubmitDraft, ""},
		{models.StatusReadyForReview, models.StatusCompleted, ActionMarkFinal, ""},
		{models.StatusRevisionRequested, models.StatusCompleted, "", app_errors.KindInvalidState},
		{models.StatusPendingAssignment, models.StatusCompleted, "", app_errors.KindInvalidState},
		{models.StatusCompleted, models.StatusCancelled, "", app_errors.KindInvalidState},
		{models.StatusCancelled, models.StatusPendingAssignment, "", app_errors.KindInvalidState},
		{models.StatusAssigned, models.ProjectStatus("archived"), "", app_errors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			action, err := Transition(tt.from, tt.to)
			if tt.kind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.kind, app_errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
		})
	}
}

func TestCancelFromEveryNonTerminalStatus(t *testing.T) {
	for _, s := range models.AllProjectStatuses {
		action, err := Transition(s, models.StatusCancelled)
		if s.Terminal() {
			assert.Error(t, err, s)
			continue
		}
		require.NoError(t, err, s)
		assert.Equal(t, ActionCancel, action)
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		from, to models.ProjectStatus
		kind     app_errors.Kind
	}{
		{"editor starts", models.RoleEditor, models.StatusAssigned, models.StatusInProgress, ""},
		{"editor cannot cancel", models.RoleEditor, models.StatusAssigned, models.StatusCancelled, app_errors.KindForbidden},
		{"editor needs draft upload", models.RoleEditor, models.StatusInProgress, models.StatusReadyForReview, app_errors.KindInvalidState},
		{"customer never", models.RoleCustomer, models.StatusAssigned, models.StatusInProgress, app_errors.KindForbidden},
		{"admin cancels", models.RoleAdmin, models.StatusInProgress, models.StatusCancelled, ""},
		{"admin completes from review", models.RoleAdmin, models.StatusReadyForReview, models.StatusCompleted, ""},
		{"admin cannot skip graph", models.RoleAdmin, models.StatusPendingAssignment, models.StatusCompleted, app_errors.KindInvalidState},
		{"admin assign needs editor", models.RoleAdmin, models.StatusPendingAssignment, models.StatusAssigned, app_errors.KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Authorize(tt.role, tt.from, tt.to)
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, app_errors.KindOf(err))
		})
	}
}

func TestNextAndCan(t *testing.T) {
	next, err := Next(models.StatusRevisionRequested, ActionSubmitDraft)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForReview, next)

	assert.False(t, Can(models.StatusCompleted, ActionMarkFinal))
	assert.True(t, Can(models.StatusReadyForReview, ActionMarkFinal))
}

func TestValidWalk(t *testing.T) {
	assert.True(t, ValidWalk([]models.ProjectStatus{
		models.StatusPendingAssignment,
		models.StatusAssigned,
		models.StatusInProgress,
		models.StatusReadyForReview,
		models.StatusRevisionRequested,
		models.StatusReadyForReview,
		models.StatusCompleted,
	}))
	assert.False(t, ValidWalk([]models.ProjectStatus{
		models.StatusReadyForReview,
		models.StatusRevisionRequested,
		models.StatusCompleted,
	}))
}
