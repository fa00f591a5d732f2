package project

import (
	"context"
	"testing"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/catalog"
	"github.com/lumiforge/cutroom-backend/internal/config"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/lifecycle"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	notifmocks "github.com/lumiforge/cutroom-backend/internal/notification/mocks"
	storagemocks "github.com/lumiforge/cutroom-backend/internal/storage/mocks"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	ydbmocks "github.com/lumiforge/cutroom-backend/internal/ydb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	admin    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	customer = models.Actor{UserID: "customer-1", Role: models.RoleCustomer}
	editor   = models.Actor{UserID: "editor-1", Role: models.RoleEditor}
)

type fixture struct {
	service *Service
	db      *ydbmocks.Database
	sink    *notifmocks.Sink
	storage *storagemocks.StorageProvider
}

func setup() *fixture {
	mockDB := new(ydbmocks.Database)
	sink := new(notifmocks.Sink)
	sink.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	store := new(storagemocks.StorageProvider)

	cfg := &config.Config{EditorFeePercent: 70, AdvancePercent: 50, DueSoonDays: 2}
	service := NewService(mockDB, catalog.NewService(mockDB, cfg), sink, nil, store, cfg)
	service.now = func() time.Time { return fixedNow }
	return &fixture{service: service, db: mockDB, sink: sink, storage: store}
}

func project(status models.ProjectStatus) *ydb.Project {
	editorID := editor.UserID
	p := &ydb.Project{
		ProjectID:           "project-1",
		CustomerID:          customer.UserID,
		Title:               "Wedding highlights",
		PackageType:         models.PackageBasic,
		Status:              status,
		MaxRevisions:        2,
		TotalAmount:         1999,
		EditorFee:           1399,
		EditorPaymentStatus: models.EditorPaymentPending,
		CreatedAt:           fixedNow.Add(-48 * time.Hour),
		UpdatedAt:           fixedNow.Add(-time.Hour),
	}
	if status != models.StatusPendingAssignment {
		p.EditorID = &editorID
	}
	return p
}

func notified(sink *notifmocks.Sink, userID string, nType models.NotificationType) bool {
	for _, call := range sink.Calls {
		ev := call.Arguments.Get(1).(notification.Event)
		if ev.UserID == userID && ev.Type == nType {
			return true
		}
	}
	return false
}

func TestCreate_BasicPackage(t *testing.T) {
	f := setup()
	ctx := context.Background()

	f.db.On("GetPackage", ctx, models.PackageBasic).Return(&ydb.Package{
		PackageType: models.PackageBasic, BasePrice: 1999, MaxRevisions: 2, EstimatedDeliveryDays: 3, IsActive: true,
	}, nil)
	f.db.On("CreateProject", ctx, mock.AnythingOfType("*ydb.Project")).Return(nil)

	p, err := f.service.Create(ctx, customer, models.CreateProjectRequest{
		Title:       "Wedding highlights",
		PackageType: models.PackageBasic,
	})

	require.NoError(t, err)
	assert.Equal(t, int32(2), p.MaxRevisions)
	assert.Equal(t, int64(1999), p.TotalAmount)
	assert.Equal(t, int64(1399), p.EditorFee)
	assert.Equal(t, models.StatusPendingAssignment, p.Status)
	assert.Equal(t, models.PaymentStatusPending, p.PaymentStatus)
	assert.Equal(t, customer.UserID, p.CustomerID)
	assert.Nil(t, p.EditorID)
	f.db.AssertExpectations(t)
}

func TestCreate_AdvancedDeadlineRoundTrip(t *testing.T) {
	f := setup()
	ctx := context.Background()

	f.db.On("GetPackage", ctx, models.PackageAdvanced).Return(&ydb.Package{
		PackageType: models.PackageAdvanced, BasePrice: 4999, MaxRevisions: 4, EstimatedDeliveryDays: 5, IsActive: true,
	}, nil)

	var stored *ydb.Project
	f.db.On("CreateProject", ctx, mock.AnythingOfType("*ydb.Project")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*ydb.Project) }).
		Return(nil)

	created, err := f.service.Create(ctx, customer, models.CreateProjectRequest{Title: "Product launch", PackageType: models.PackageAdvanced})
	require.NoError(t, err)

	f.db.On("GetProject", ctx, created.ProjectID).Return(stored, nil)
	readBack, err := f.service.Get(ctx, customer, created.ProjectID)
	require.NoError(t, err)

	assert.Equal(t, int32(4), readBack.MaxRevisions)
	assert.Equal(t, readBack.CreatedAt.Add(5*24*time.Hour), readBack.Deadline)
	assert.Equal(t, readBack.Deadline, readBack.EstimatedDelivery)
}

func TestCreate_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("editor cannot create", func(t *testing.T) {
		f := setup()
		_, err := f.service.Create(ctx, editor, models.CreateProjectRequest{Title: "x", PackageType: models.PackageBasic})
		assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
	})

	t.Run("missing title", func(t *testing.T) {
		f := setup()
		_, err := f.service.Create(ctx, customer, models.CreateProjectRequest{Title: "  ", PackageType: models.PackageBasic})
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})

	t.Run("inactive package", func(t *testing.T) {
		f := setup()
		f.db.On("GetPackage", ctx, models.PackageCustom).Return(&ydb.Package{PackageType: models.PackageCustom, IsActive: false}, nil)
		_, err := f.service.Create(ctx, customer, models.CreateProjectRequest{Title: "x", PackageType: models.PackageCustom})
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
		f.db.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
	})

	t.Run("missing package", func(t *testing.T) {
		f := setup()
		f.db.On("GetPackage", ctx, models.PackageCustom).Return(nil, app_errors.ErrPackageNotFound)
		_, err := f.service.Create(ctx, customer, models.CreateProjectRequest{Title: "x", PackageType: models.PackageCustom})
		assert.True(t, app_errors.Is(err, app_errors.KindNotFound))
	})
}

func TestAssign_ThenReassignFails(t *testing.T) {
	f := setup()
	ctx := context.Background()
	p := project(models.StatusPendingAssignment)

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("GetEditor", ctx, "editor-1").Return(&ydb.Editor{
		EditorID:              "editor-1",
		ApplicationStatus:     models.ApplicationApproved,
		IsAvailable:           true,
		MaxConcurrentProjects: 3,
	}, nil)
	f.db.On("AssignProjectTx", ctx, p, models.StatusPendingAssignment).Return(nil).Once()

	assigned, err := f.service.Assign(ctx, admin, "project-1", "editor-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, assigned.Status)
	assert.True(t, assigned.AssignedTo("editor-1"))
	require.NotNil(t, assigned.AssignedBy)
	assert.Equal(t, admin.UserID, *assigned.AssignedBy)
	assert.Equal(t, fixedNow, *assigned.AssignedAt)
	assert.True(t, notified(f.sink, "editor-1", models.NotificationProjectAssigned))

	_, err = f.service.Assign(ctx, admin, "project-1", "editor-1")
	assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	f.db.AssertNumberOfCalls(t, "AssignProjectTx", 1)
}

func TestAssign_EditorChecks(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		editor *ydb.Editor
		err    error
		kind   app_errors.Kind
	}{
		{name: "missing", err: app_errors.ErrEditorNotFound, kind: app_errors.KindNotFound},
		{name: "unavailable", editor: &ydb.Editor{ApplicationStatus: models.ApplicationApproved, MaxConcurrentProjects: 3}, kind: app_errors.KindInvalidState},
		{name: "not approved", editor: &ydb.Editor{ApplicationStatus: models.ApplicationPending, IsAvailable: true, MaxConcurrentProjects: 3}, kind: app_errors.KindInvalidState},
		{name: "full", editor: &ydb.Editor{ApplicationStatus: models.ApplicationApproved, IsAvailable: true, CurrentWorkload: 3, MaxConcurrentProjects: 3}, kind: app_errors.KindQuotaExceeded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup()
			f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusPendingAssignment), nil)
			if tc.editor != nil {
				f.db.On("GetEditor", ctx, "editor-1").Return(tc.editor, nil)
			} else {
				f.db.On("GetEditor", ctx, "editor-1").Return(nil, tc.err)
			}

			_, err := f.service.Assign(ctx, admin, "project-1", "editor-1")
			assert.True(t, app_errors.Is(err, tc.kind), "got %v", err)
			f.db.AssertNotCalled(t, "AssignProjectTx", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAssign_OnlyAdmin(t *testing.T) {
	f := setup()
	_, err := f.service.Assign(context.Background(), customer, "project-1", "editor-1")
	assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
}

func TestRequestRevision_QuotaExhausted(t *testing.T) {
	f := setup()
	ctx := context.Background()
	p := project(models.StatusReadyForReview)
	p.RevisionsUsed = 2

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)

	_, err := f.service.RequestRevision(ctx, customer, "project-1", "Shorter intro please")
	assert.ErrorIs(t, err, app_errors.ErrRevisionQuotaExceeded)
	assert.Equal(t, models.StatusReadyForReview, p.Status)
	assert.Equal(t, int32(2), p.RevisionsUsed)
	f.db.AssertNotCalled(t, "UpdateProjectTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestRevision_AppendsRecord(t *testing.T) {
	f := setup()
	ctx := context.Background()
	p := project(models.StatusReadyForReview)
	p.RevisionsUsed = 1
	p.Revisions = []models.Revision{{RevisionNumber: 1, Feedback: "first", RequestedAt: fixedNow.Add(-time.Hour)}}

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("UpdateProjectTx", ctx, p, models.StatusReadyForReview).Return(nil)

	updated, err := f.service.RequestRevision(ctx, customer, "project-1", "Fix the colour grade")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevisionRequested, updated.Status)
	assert.Equal(t, int32(2), updated.RevisionsUsed)
	require.Len(t, updated.Revisions, 2)
	assert.Equal(t, int32(2), updated.Revisions[1].RevisionNumber)
	assert.Equal(t, fixedNow, updated.Revisions[1].RequestedAt)
	assert.True(t, notified(f.sink, "editor-1", models.NotificationRevisionRequested))
}

func TestRequestRevision_Unlimited(t *testing.T) {
	f := setup()
	ctx := context.Background()
	p := project(models.StatusReadyForReview)
	p.MaxRevisions = models.UnlimitedRevisions
	p.RevisionsUsed = 25

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("UpdateProjectTx", ctx, p, models.StatusReadyForReview).Return(nil)

	updated, err := f.service.RequestRevision(ctx, customer, "project-1", "One more pass")
	require.NoError(t, err)
	assert.Equal(t, int32(26), updated.RevisionsUsed)
}

func TestRequestRevision_WrongStateOrActor(t *testing.T) {
	ctx := context.Background()

	t.Run("not ready for review", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
		_, err := f.service.RequestRevision(ctx, customer, "project-1", "feedback")
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})

	t.Run("status checked before quota", func(t *testing.T) {
		f := setup()
		p := project(models.StatusRevisionRequested)
		p.RevisionsUsed = 2
		f.db.On("GetProject", ctx, "project-1").Return(p, nil)
		_, err := f.service.RequestRevision(ctx, customer, "project-1", "feedback")
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})

	t.Run("other customer", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusReadyForReview), nil)
		_, err := f.service.RequestRevision(ctx, models.Actor{UserID: "customer-2", Role: models.RoleCustomer}, "project-1", "feedback")
		assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
	})

	t.Run("empty feedback", func(t *testing.T) {
		f := setup()
		_, err := f.service.RequestRevision(ctx, customer, "project-1", " ")
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})
}

func TestMarkFinal_ReleasesFeeOnce(t *testing.T) {
	f := setup()
	ctx := context.Background()
	p := project(models.StatusReadyForReview)

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("CompleteProjectTx", ctx, p, models.StatusReadyForReview).Return(nil).Once()

	done, err := f.service.MarkFinal(ctx, editor, "project-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, models.EditorPaymentProcessing, done.EditorPaymentStatus)
	assert.Equal(t, fixedNow, *done.CompletedAt)
	assert.Equal(t, fixedNow, *done.ActualDelivery)
	assert.True(t, notified(f.sink, customer.UserID, models.NotificationProjectCompleted))

	_, err = f.service.MarkFinal(ctx, editor, "project-1")
	assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	f.db.AssertNumberOfCalls(t, "CompleteProjectTx", 1)
}

func TestMarkFinal_OtherEditorForbidden(t *testing.T) {
	f := setup()
	ctx := context.Background()
	f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusReadyForReview), nil)

	_, err := f.service.MarkFinal(ctx, models.Actor{UserID: "editor-2", Role: models.RoleEditor}, "project-1")
	assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
}

func TestMarkFinal_ConcurrentChange(t *testing.T) {
	f := setup()
	ctx := context.Background()
	p := project(models.StatusReadyForReview)

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("CompleteProjectTx", ctx, p, models.StatusReadyForReview).Return(app_errors.ErrStatusConflict)

	_, err := f.service.MarkFinal(ctx, editor, "project-1")
	assert.True(t, app_errors.Is(err, app_errors.KindConflict))
	assert.False(t, notified(f.sink, customer.UserID, models.NotificationProjectCompleted))
}

func TestUploadDraft_IncrementsVersion(t *testing.T) {
	f := setup()
	ctx := context.Background()
	uploaded := fixedNow.Add(-time.Minute)
	p := project(models.StatusRevisionRequested)
	p.EditedVideo = &models.EditedVideo{FileRef: models.FileRef{UploadID: "up-1"}, Version: 1}
	p.Revisions = []models.Revision{{RevisionNumber: 1, Feedback: "more music"}}
	p.RevisionsUsed = 1

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("GetUpload", ctx, "up-2").Return(&ydb.Upload{
		UploadID:      "up-2",
		ProjectID:     "project-1",
		Kind:          models.UploadEditedVideo,
		FileName:      "cut-v2.mp4",
		FileSizeBytes: 1024,
		UploadStatus:  ydb.UploadStatusCompleted,
		UploadedAt:    &uploaded,
	}, nil)
	f.db.On("UpdateProjectTx", ctx, p, models.StatusRevisionRequested).Return(nil)

	updated, err := f.service.UploadDraft(ctx, editor, "project-1", "up-2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForReview, updated.Status)
	assert.Equal(t, int32(2), updated.EditedVideo.Version)
	assert.Equal(t, "cut-v2.mp4", updated.EditedVideo.FileName)
	require.NotNil(t, updated.Revisions[0].ResolvedAt)
	assert.True(t, notified(f.sink, customer.UserID, models.NotificationDraftSubmitted))
}

func TestUploadDraft_RejectsForeignUpload(t *testing.T) {
	f := setup()
	ctx := context.Background()
	uploaded := fixedNow
	f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
	f.db.On("GetUpload", ctx, "up-9").Return(&ydb.Upload{
		UploadID: "up-9", ProjectID: "project-2", Kind: models.UploadEditedVideo,
		UploadStatus: ydb.UploadStatusCompleted, UploadedAt: &uploaded,
	}, nil)

	_, err := f.service.UploadDraft(ctx, editor, "project-1", "up-9")
	assert.True(t, app_errors.Is(err, app_errors.KindValidation))
}

func TestUploadDraft_WrongState(t *testing.T) {
	f := setup()
	ctx := context.Background()
	f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusAssigned), nil)

	_, err := f.service.UploadDraft(ctx, editor, "project-1", "up-1")
	assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("editor starts work", func(t *testing.T) {
		f := setup()
		p := project(models.StatusAssigned)
		f.db.On("GetProject", ctx, "project-1").Return(p, nil)
		f.db.On("UpdateProjectTx", ctx, p, models.StatusAssigned).Return(nil)

		updated, err := f.service.Start(ctx, editor, "project-1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, updated.Status)
		assert.Equal(t, fixedNow, *updated.StartedAt)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		f := setup()
		_, err := f.service.UpdateStatus(ctx, customer, "project-1", models.UpdateStatusRequest{Status: models.StatusInProgress})
		assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
	})

	t.Run("admin cannot skip to completed", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusPendingAssignment), nil)
		_, err := f.service.UpdateStatus(ctx, admin, "project-1", models.UpdateStatusRequest{Status: models.StatusCompleted})
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})

	t.Run("editor cannot cancel", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
		_, err := f.service.UpdateStatus(ctx, editor, "project-1", models.UpdateStatusRequest{Status: models.StatusCancelled})
		assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
	})

	t.Run("ready for review requires upload", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
		_, err := f.service.UpdateStatus(ctx, editor, "project-1", models.UpdateStatusRequest{Status: models.StatusReadyForReview})
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})

	t.Run("admin cancels with reason", func(t *testing.T) {
		f := setup()
		p := project(models.StatusInProgress)
		f.db.On("GetProject", ctx, "project-1").Return(p, nil)
		f.db.On("CancelProjectTx", ctx, p, models.StatusInProgress).Return(nil)

		updated, err := f.service.Cancel(ctx, admin, "project-1", "customer request")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, updated.Status)
		assert.Equal(t, "customer request", *updated.CancellationReason)
		assert.True(t, notified(f.sink, "editor-1", models.NotificationProjectCancelled))
	})

	t.Run("cancel needs reason", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
		_, err := f.service.Cancel(ctx, admin, "project-1", "")
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})
}

func TestObservedStatusesFormValidWalk(t *testing.T) {
	f := setup()
	ctx := context.Background()
	uploaded := fixedNow
	p := project(models.StatusPendingAssignment)
	seq := []models.ProjectStatus{p.Status}

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("GetEditor", ctx, "editor-1").Return(&ydb.Editor{ApplicationStatus: models.ApplicationApproved, IsAvailable: true, MaxConcurrentProjects: 3}, nil)
	f.db.On("AssignProjectTx", ctx, p, mock.Anything).Return(nil)
	f.db.On("UpdateProjectTx", ctx, p, mock.Anything).Return(nil)
	f.db.On("CompleteProjectTx", ctx, p, mock.Anything).Return(nil)
	f.db.On("GetUpload", ctx, "up-1").Return(&ydb.Upload{
		UploadID: "up-1", ProjectID: "project-1", Kind: models.UploadEditedVideo,
		UploadStatus: ydb.UploadStatusCompleted, UploadedAt: &uploaded,
	}, nil)

	steps := []func() (*ydb.Project, error){
		func() (*ydb.Project, error) { return f.service.Assign(ctx, admin, "project-1", "editor-1") },
		func() (*ydb.Project, error) { return f.service.Start(ctx, editor, "project-1") },
		func() (*ydb.Project, error) { return f.service.UploadDraft(ctx, editor, "project-1", "up-1") },
		func() (*ydb.Project, error) { return f.service.RequestRevision(ctx, customer, "project-1", "tighter cuts") },
		func() (*ydb.Project, error) { return f.service.MarkFinal(ctx, editor, "project-1") },
		func() (*ydb.Project, error) { return f.service.UploadDraft(ctx, editor, "project-1", "up-1") },
		func() (*ydb.Project, error) { return f.service.MarkFinal(ctx, editor, "project-1") },
	}
	for _, step := range steps {
		if updated, err := step(); err == nil {
			seq = append(seq, updated.Status)
		}
		assert.LessOrEqual(t, p.RevisionsUsed, p.MaxRevisions)
	}

	assert.Equal(t, models.StatusCompleted, seq[len(seq)-1])
	assert.True(t, lifecycle.ValidWalk(seq), "walk %v", seq)
	assert.Equal(t, int32(2), p.EditedVideo.Version)
}

func TestRate(t *testing.T) {
	ctx := context.Background()

	t.Run("rates completed project", func(t *testing.T) {
		f := setup()
		p := project(models.StatusCompleted)
		rating := int32(5)
		rated := *p
		rated.Rating = &rating
		f.db.On("GetProject", ctx, "project-1").Return(p, nil)
		f.db.On("RateProjectTx", ctx, "project-1", int32(5), "great").Return(&rated, nil)

		got, err := f.service.Rate(ctx, customer, "project-1", models.RateProjectRequest{Rating: 5, Feedback: " great "})
		require.NoError(t, err)
		assert.Equal(t, int32(5), *got.Rating)
		assert.True(t, notified(f.sink, "editor-1", models.NotificationRatingReceived))
	})

	t.Run("out of range", func(t *testing.T) {
		f := setup()
		_, err := f.service.Rate(ctx, customer, "project-1", models.RateProjectRequest{Rating: 6})
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})

	t.Run("already rated", func(t *testing.T) {
		f := setup()
		p := project(models.StatusCompleted)
		r := int32(3)
		p.Rating = &r
		f.db.On("GetProject", ctx, "project-1").Return(p, nil)
		_, err := f.service.Rate(ctx, customer, "project-1", models.RateProjectRequest{Rating: 4})
		assert.ErrorIs(t, err, app_errors.ErrAlreadyRated)
	})

	t.Run("not completed", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
		_, err := f.service.Rate(ctx, customer, "project-1", models.RateProjectRequest{Rating: 4})
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})
}

func TestGet_Access(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		actor models.Actor
		ok    bool
	}{
		{"owner", customer, true},
		{"assigned editor", editor, true},
		{"admin", admin, true},
		{"other customer", models.Actor{UserID: "customer-2", Role: models.RoleCustomer}, false},
		{"other editor", models.Actor{UserID: "editor-2", Role: models.RoleEditor}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup()
			f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusInProgress), nil)
			_, err := f.service.Get(ctx, tc.actor, "project-1")
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, app_errors.Is(err, app_errors.KindForbidden))
			}
		})
	}
}

func TestList_ScopedToActor(t *testing.T) {
	f := setup()
	ctx := context.Background()

	f.db.On("ListProjects", ctx, models.ProjectFilter{EditorID: "editor-1", Limit: 20}).Return([]*ydb.Project{project(models.StatusInProgress)}, int64(1), nil)

	resp, err := f.service.List(ctx, editor, models.ProjectFilter{CustomerID: "customer-9"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Len(t, resp.Items, 1)
}

func TestDueSoon_SkipsTerminal(t *testing.T) {
	f := setup()
	ctx := context.Background()

	f.db.On("ListProjectsDueSoon", ctx, fixedNow.Add(48*time.Hour), "editor-1").Return([]*ydb.Project{
		project(models.StatusInProgress),
		project(models.StatusCompleted),
	}, nil)

	projects, err := f.service.DueSoon(ctx, editor, 0)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestStats_FillsAllStatuses(t *testing.T) {
	f := setup()
	ctx := context.Background()

	f.db.On("CountProjectsByStatus", ctx, models.ProjectFilter{CustomerID: "customer-1"}).Return(map[models.ProjectStatus]int64{
		models.StatusInProgress: 2,
		models.StatusCompleted:  3,
	}, nil)

	stats, err := f.service.Stats(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Len(t, stats.ByStatus, len(models.AllProjectStatuses))
	assert.Equal(t, int64(0), stats.ByStatus[models.StatusCancelled])
}

func TestAddRawFootage(t *testing.T) {
	ctx := context.Background()
	uploaded := fixedNow

	t.Run("appends reference", func(t *testing.T) {
		f := setup()
		p := project(models.StatusAssigned)
		f.db.On("GetProject", ctx, "project-1").Return(p, nil)
		f.db.On("GetUpload", ctx, "raw-1").Return(&ydb.Upload{
			UploadID: "raw-1", ProjectID: "project-1", Kind: models.UploadRawFootage, FileName: "a.mov",
			FileSizeBytes: 42, UploadStatus: ydb.UploadStatusCompleted, UploadedAt: &uploaded,
		}, nil)
		f.db.On("UpdateProjectTx", ctx, p, models.StatusAssigned).Return(nil)

		updated, err := f.service.AddRawFootage(ctx, customer, "project-1", "raw-1")
		require.NoError(t, err)
		require.Len(t, updated.RawFootage, 1)
		assert.Equal(t, models.FileRef{UploadID: "raw-1", FileName: "a.mov", SizeBytes: 42, UploadedAt: uploaded}, updated.RawFootage[0])
	})

	t.Run("closed after review", func(t *testing.T) {
		f := setup()
		f.db.On("GetProject", ctx, "project-1").Return(project(models.StatusReadyForReview), nil)
		_, err := f.service.AddRawFootage(ctx, customer, "project-1", "raw-1")
		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
	})
}

func TestDownloadURL_Edited(t *testing.T) {
	f := setup()
	ctx := context.Background()
	p := project(models.StatusReadyForReview)
	p.EditedVideo = &models.EditedVideo{FileRef: models.FileRef{UploadID: "up-3", FileName: "final.mp4"}, Version: 3}

	f.db.On("GetProject", ctx, "project-1").Return(p, nil)
	f.db.On("GetUpload", ctx, "up-3").Return(&ydb.Upload{UploadID: "up-3", StoragePath: "projects/project-1/edited/up-3"}, nil)
	f.storage.On("GeneratePresignedDownloadURL", ctx, "projects/project-1/edited/up-3", "final.mp4", time.Hour).Return("https://s3/final", nil)

	resp, err := f.service.DownloadURL(ctx, customer, "project-1", "edited", "")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/final", resp.URL)
	assert.Equal(t, fixedNow.Add(time.Hour).Unix(), resp.ExpiresAt)
}

func TestQuotaLeft(t *testing.T) {
	assert.Equal(t, int32(1), QuotaLeft(&ydb.Project{MaxRevisions: 2, RevisionsUsed: 1}))
	assert.Equal(t, int32(0), QuotaLeft(&ydb.Project{MaxRevisions: 2, RevisionsUsed: 2}))
	assert.Equal(t, models.UnlimitedRevisions, QuotaLeft(&ydb.Project{MaxRevisions: models.UnlimitedRevisions, RevisionsUsed: 99}))
}
