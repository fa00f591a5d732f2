package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_SendMessage(t *testing.T) {
	env := setupTestRouter(t)
	access, _ := env.token(t, "customer-1", models.RoleCustomer)
	editorID := "editor-1"

	env.db.On("GetProject", mock.Anything, "project-1").Return(&ydb.Project{
		ProjectID: "project-1", CustomerID: "customer-1", EditorID: &editorID, Status: models.StatusInProgress,
	}, nil)
	env.db.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m *ydb.Message) bool {
		return m.ReceiverID == "editor-1" && m.SenderID == "customer-1"
	})).Return(nil)

	req := httptest.NewRequest("POST", "/api/v1/messages", strings.NewReader(`{"project_id":"project-1","content":"Colour grade looks great"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m ydb.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "editor-1", m.ReceiverID)
	assert.Equal(t, models.MessageText, m.MessageType)
}

func TestHandler_SendMessage_AdminHasNoPermission(t *testing.T) {
	env := setupTestRouter(t)
	access, _ := env.token(t, "admin-1", models.RoleAdmin)

	req := httptest.NewRequest("POST", "/api/v1/messages", strings.NewReader(`{"project_id":"project-1","content":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env.db.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestHandler_ProjectMessages_Forbidden(t *testing.T) {
	env := setupTestRouter(t)
	access, _ := env.token(t, "customer-2", models.RoleCustomer)

	env.db.On("GetProject", mock.Anything, "project-1").Return(&ydb.Project{
		ProjectID: "project-1", CustomerID: "customer-1", Status: models.StatusInProgress,
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/projects/project-1/messages", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env.db.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestHandler_UnreadMessageCount(t *testing.T) {
	env := setupTestRouter(t)
	access, _ := env.token(t, "editor-1", models.RoleEditor)
	env.db.On("CountUnreadMessages", mock.Anything, "editor-1").Return(int64(4), nil)

	req := httptest.NewRequest("GET", "/api/v1/messages/unread-count", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":4}`, w.Body.String())
}

func TestHandler_AdminUsers(t *testing.T) {
	env := setupTestRouter(t)
	access, _ := env.token(t, "admin-1", models.RoleAdmin)

	env.db.On("ListUsers", mock.Anything, mock.MatchedBy(func(f models.UserFilter) bool {
		return f.Role == models.RoleEditor && f.Active != nil && !*f.Active
	})).Return([]*ydb.User{{UserID: "editor-1", Role: models.RoleEditor, PasswordHash: "bcrypt-hash"}}, int64(1), nil)

	req := httptest.NewRequest("GET", "/api/v1/admin/users?role=editor&active=false", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"editor-1"`)
	assert.NotContains(t, w.Body.String(), "bcrypt-hash")

	req = httptest.NewRequest("GET", "/api/v1/admin/users?active=maybe", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w = httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SuspendOwnAccount(t *testing.T) {
	env := setupTestRouter(t)
	access, _ := env.token(t, "admin-1", models.RoleAdmin)

	req := httptest.NewRequest("PUT", "/api/v1/admin/users/admin-1/suspension", strings.NewReader(`{"suspended":true,"reason":"test"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(app_errors.KindForbidden), decodeError(t, w).Kind)
	env.db.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestHandler_DeleteUserWithProjects(t *testing.T) {
	env := setupTestRouter(t)
	access, _ := env.token(t, "admin-1", models.RoleAdmin)

	env.db.On("GetUserByID", mock.Anything, "customer-1").Return(&ydb.User{UserID: "customer-1", Role: models.RoleCustomer}, nil)
	env.db.On("DeleteUserTx", mock.Anything, "customer-1").Return(app_errors.ErrUserHasProjects)

	req := httptest.NewRequest("DELETE", "/api/v1/admin/users/customer-1", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
