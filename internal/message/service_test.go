package message

import (
	"context"
	"strings"
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
	admin    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	owner    = models.Actor{UserID: "customer-1", Role: models.RoleCustomer}
	stranger = models.Actor{UserID: "customer-2", Role: models.RoleCustomer}
	assigned = models.Actor{UserID: "editor-1", Role: models.RoleEditor}
	other    = models.Actor{UserID: "editor-2", Role: models.RoleEditor}
)

func setup() (*Service, *ydbmocks.Database, *notifmocks.Sink) {
	mockDB := new(ydbmocks.Database)
	sink := new(notifmocks.Sink)
	sink.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	svc := NewService(mockDB, sink, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, mockDB, sink
}

func project(editorID string) *ydb.Project {
	p := &ydb.Project{
		ProjectID:  "project-1",
		CustomerID: "customer-1",
		Title:      "Wedding highlights",
		Status:     models.StatusInProgress,
	}
	if editorID != "" {
		p.EditorID = &editorID
	}
	return p
}

func TestSend_CustomerToAssignedEditor(t *testing.T) {
	service, mockDB, sink := setup()
	ctx := context.Background()

	mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
	mockDB.On("CreateMessage", ctx, mock.MatchedBy(func(m *ydb.Message) bool {
		return m.SenderID == "customer-1" && m.ReceiverID == "editor-1" &&
			m.MessageType == models.MessageText && m.Content == "Please keep the intro short"
	})).Return(nil)

	m, err := service.Send(ctx, owner, models.SendMessageRequest{ProjectID: "project-1", Content: "  Please keep the intro short "})

	require.NoError(t, err)
	assert.NotEmpty(t, m.MessageID)
	assert.False(t, m.IsRead)

	require.Len(t, sink.Calls, 1)
	event := sink.Calls[0].Arguments.Get(1).(notification.Event)
	assert.Equal(t, "editor-1", event.UserID)
	assert.Equal(t, models.NotificationNewMessage, event.Type)
	assert.Equal(t, "project-1", event.ProjectID)
	assert.Equal(t, "Please keep the intro short", event.Message)
	mockDB.AssertExpectations(t)
}

func TestSend_EditorToCustomer(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()

	mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
	mockDB.On("CreateMessage", ctx, mock.MatchedBy(func(m *ydb.Message) bool {
		return m.SenderID == "editor-1" && m.ReceiverID == "customer-1"
	})).Return(nil)

	_, err := service.Send(ctx, assigned, models.SendMessageRequest{ProjectID: "project-1", ReceiverID: "customer-1", Content: "First cut is ready"})

	require.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestSend_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Actor
		project *ydb.Project
		req     models.SendMessageRequest
		kind    app_errors.Kind
	}{
		{
			name:    "customer of another project",
			actor:   stranger,
			project: project("editor-1"),
			req:     models.SendMessageRequest{ProjectID: "project-1", Content: "hi"},
			kind:    app_errors.KindForbidden,
		},
		{
			name:    "editor not assigned",
			actor:   other,
			project: project("editor-1"),
			req:     models.SendMessageRequest{ProjectID: "project-1", Content: "hi"},
			kind:    app_errors.KindForbidden,
		},
		{
			name:    "admin cannot write into a project thread",
			actor:   admin,
			project: project("editor-1"),
			req:     models.SendMessageRequest{ProjectID: "project-1", Content: "hi"},
			kind:    app_errors.KindForbidden,
		},
		{
			name:    "no editor assigned",
			actor:   owner,
			project: project(""),
			req:     models.SendMessageRequest{ProjectID: "project-1", Content: "hi"},
			kind:    app_errors.KindInvalidState,
		},
		{
			name:    "receiver outside the project",
			actor:   owner,
			project: project("editor-1"),
			req:     models.SendMessageRequest{ProjectID: "project-1", ReceiverID: "editor-2", Content: "hi"},
			kind:    app_errors.KindValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockDB, sink := setup()
			ctx := context.Background()
			mockDB.On("GetProject", ctx, "project-1").Return(tt.project, nil)

			_, err := service.Send(ctx, tt.actor, tt.req)

			require.Error(t, err)
			assert.True(t, app_errors.Is(err, tt.kind), err.Error())
			mockDB.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
			sink.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
		})
	}
}

func TestSend_EmptyContent(t *testing.T) {
	service, mockDB, _ := setup()

	_, err := service.Send(context.Background(), owner, models.SendMessageRequest{ProjectID: "project-1", Content: "   "})

	assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	mockDB.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)
}

func TestSend_WithAttachment(t *testing.T) {
	uploadedAt := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	upload := func(projectID, status string) *ydb.Upload {
		u := &ydb.Upload{
			UploadID:      "upload-1",
			ProjectID:     projectID,
			FileName:      "reference.mp4",
			FileSizeBytes: 1 << 20,
			UploadStatus:  status,
		}
		if status == ydb.UploadStatusCompleted {
			u.UploadedAt = &uploadedAt
		}
		return u
	}

	t.Run("completed upload of the same project", func(t *testing.T) {
		service, mockDB, _ := setup()
		ctx := context.Background()
		mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
		mockDB.On("GetUpload", ctx, "upload-1").Return(upload("project-1", ydb.UploadStatusCompleted), nil)
		mockDB.On("CreateMessage", ctx, mock.AnythingOfType("*ydb.Message")).Return(nil)

		m, err := service.Send(ctx, owner, models.SendMessageRequest{ProjectID: "project-1", Content: "Use this as reference", AttachmentID: "upload-1"})

		require.NoError(t, err)
		assert.Equal(t, models.MessageFile, m.MessageType)
		require.NotNil(t, m.Attachment)
		assert.Equal(t, "reference.mp4", m.Attachment.FileName)
		assert.Equal(t, uploadedAt, m.Attachment.UploadedAt)
	})

	t.Run("upload of another project", func(t *testing.T) {
		service, mockDB, _ := setup()
		ctx := context.Background()
		mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
		mockDB.On("GetUpload", ctx, "upload-1").Return(upload("project-9", ydb.UploadStatusCompleted), nil)

		_, err := service.Send(ctx, owner, models.SendMessageRequest{ProjectID: "project-1", Content: "x", AttachmentID: "upload-1"})

		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
		mockDB.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	})

	t.Run("upload still in progress", func(t *testing.T) {
		service, mockDB, _ := setup()
		ctx := context.Background()
		mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
		mockDB.On("GetUpload", ctx, "upload-1").Return(upload("project-1", ydb.UploadStatusUploading), nil)

		_, err := service.Send(ctx, owner, models.SendMessageRequest{ProjectID: "project-1", Content: "x", AttachmentID: "upload-1"})

		assert.True(t, app_errors.Is(err, app_errors.KindInvalidState))
		mockDB.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	})
}

func TestProjectMessages_MarksIncomingRead(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()

	thread := []*ydb.Message{
		{MessageID: "m1", ProjectID: "project-1", SenderID: "customer-1", ReceiverID: "editor-1"},
		{MessageID: "m2", ProjectID: "project-1", SenderID: "editor-1", ReceiverID: "customer-1", IsRead: true},
	}
	mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
	mockDB.On("ListMessages", ctx, models.MessageFilter{ProjectID: "project-1", Limit: 50}).Return(thread, int64(2), nil)
	mockDB.On("MarkProjectMessagesRead", ctx, "project-1", "editor-1").Return(nil)

	resp, err := service.ProjectMessages(ctx, assigned, "project-1", 0, 0)

	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, int64(2), resp.Total)
	mockDB.AssertExpectations(t)
}

func TestProjectMessages_NothingUnread(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()

	mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
	mockDB.On("ListMessages", ctx, mock.AnythingOfType("models.MessageFilter")).Return(nil, int64(0), nil)

	resp, err := service.ProjectMessages(ctx, admin, "project-1", 500, -1)

	require.NoError(t, err)
	assert.NotNil(t, resp.Items)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 0, resp.Offset)
	mockDB.AssertNotCalled(t, "MarkProjectMessagesRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectMessages_AccessDenied(t *testing.T) {
	for _, actor := range []models.Actor{stranger, other} {
		service, mockDB, _ := setup()
		ctx := context.Background()
		mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)

		_, err := service.ProjectMessages(ctx, actor, "project-1", 20, 0)

		assert.ErrorIs(t, err, app_errors.ErrNotProjectOwner, actor.UserID)
		mockDB.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
	}
}

func TestList_Unread(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()

	mockDB.On("ListMessages", ctx, models.MessageFilter{UserID: "customer-1", UnreadOnly: true, Limit: 20}).
		Return([]*ydb.Message{{MessageID: "m2", ReceiverID: "customer-1"}}, int64(1), nil)

	resp, err := service.List(ctx, owner, true, 20, 0)

	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	mockDB.AssertExpectations(t)
}

func TestUnreadCount(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()
	mockDB.On("CountUnreadMessages", ctx, "customer-1").Return(int64(3), nil)

	resp, err := service.UnreadCount(ctx, "customer-1")

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Count)
}

func TestMarkRead(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()

	mockDB.On("MarkMessageRead", ctx, "editor-1", "m1").Return(nil)
	require.NoError(t, service.MarkRead(ctx, assigned, "m1"))

	mockDB.On("MarkMessageRead", ctx, "customer-1", "m1").Return(app_errors.ErrAccessDenied)
	assert.ErrorIs(t, service.MarkRead(ctx, owner, "m1"), app_errors.ErrAccessDenied)

	assert.True(t, app_errors.Is(service.MarkRead(ctx, owner, ""), app_errors.KindValidation))
}

func TestMarkProjectRead(t *testing.T) {
	service, mockDB, _ := setup()
	ctx := context.Background()

	mockDB.On("GetProject", ctx, "project-1").Return(project("editor-1"), nil)
	mockDB.On("MarkProjectMessagesRead", ctx, "project-1", "customer-1").Return(nil)

	require.NoError(t, service.MarkProjectRead(ctx, owner, "project-1"))
	assert.ErrorIs(t, service.MarkProjectRead(ctx, stranger, "project-1"), app_errors.ErrNotProjectOwner)
	mockDB.AssertNumberOfCalls(t, "MarkProjectMessagesRead", 1)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("я", previewLength+10)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, previewLength+3, len([]rune(got)))
}
