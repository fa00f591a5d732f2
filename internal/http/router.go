package http

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/lumiforge/cutroom-backend/internal/jwt"
	"github.com/lumiforge/cutroom-backend/internal/rbac"
	"github.com/swaggo/swag"
)

// SetupRouter creates and configures HTTP router
func SetupRouter(server *Server, tokens jwt.TokenManager, manager *rbac.RBAC, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	base := []func(http.Handler) http.Handler{RequestIDMiddleware, LoggingMiddleware, AuditMetaMiddleware}
	public := func(h http.HandlerFunc, extra ...func(http.Handler) http.Handler) http.HandlerFunc {
		return chainMiddleware(h, append(append([]func(http.Handler) http.Handler{}, base...), extra...)...)
	}
	// protected проверяет токен и разрешение роли
	protected := func(h http.HandlerFunc, perm rbac.Permission, extra ...func(http.Handler) http.Handler) http.HandlerFunc {
		mw := append([]func(http.Handler) http.Handler{}, base...)
		mw = append(mw, AuthMiddleware(tokens))
		if perm != "" {
			mw = append(mw, RequirePermission(manager, perm))
		}
		return chainMiddleware(h, append(mw, extra...)...)
	}
	withBody := ContentTypeMiddleware

	// Health check endpoint (no auth required)
	mux.HandleFunc("GET /very-secret-health-check", server.Health)

	mux.HandleFunc("GET /openapi.json", serveOpenAPI)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", public(server.Register, withBody))
	mux.HandleFunc("POST /api/v1/auth/login", public(server.Login, withBody))
	mux.HandleFunc("POST /api/v1/auth/refresh", public(server.RefreshToken, withBody))
	mux.HandleFunc("POST /api/v1/auth/logout", protected(server.Logout, "", withBody))
	mux.HandleFunc("GET /api/v1/auth/profile", protected(server.GetProfile, rbac.PermissionUserViewProfile))
	mux.HandleFunc("PUT /api/v1/auth/profile", protected(server.UpdateProfile, rbac.PermissionUserEditProfile, withBody))

	// Catalog
	mux.HandleFunc("GET /api/v1/packages", public(server.ListPackages))
	mux.HandleFunc("GET /api/v1/packages/{type}/quote", public(server.QuotePackage))
	mux.HandleFunc("PUT /api/v1/packages/{type}", protected(server.UpsertPackage, rbac.PermissionCatalogManage, withBody))

	// Projects
	mux.HandleFunc("POST /api/v1/projects", protected(server.CreateProject, rbac.PermissionProjectCreate, withBody))
	mux.HandleFunc("GET /api/v1/projects", protected(server.ListProjects, rbac.PermissionProjectView))
	mux.HandleFunc("GET /api/v1/projects/unassigned", protected(server.ListUnassignedProjects, rbac.PermissionProjectAssign))
	mux.HandleFunc("GET /api/v1/projects/due-soon", protected(server.ListDueSoonProjects, rbac.PermissionProjectView))
	mux.HandleFunc("GET /api/v1/projects/stats", protected(server.ProjectStats, rbac.PermissionProjectView))
	mux.HandleFunc("GET /api/v1/projects/{id}", protected(server.GetProject, rbac.PermissionProjectView))
	mux.HandleFunc("GET /api/v1/projects/{id}/ws", protected(server.ProjectStream, rbac.PermissionProjectView))
	mux.HandleFunc("GET /api/v1/projects/{id}/download", protected(server.ProjectDownloadURL, rbac.PermissionProjectView))
	mux.HandleFunc("POST /api/v1/projects/{id}/assign", protected(server.AssignEditor, rbac.PermissionProjectAssign, withBody))
	mux.HandleFunc("PUT /api/v1/projects/{id}/status", protected(server.UpdateProjectStatus, rbac.PermissionProjectTransition, withBody))
	mux.HandleFunc("POST /api/v1/projects/{id}/start", protected(server.StartProject, rbac.PermissionProjectTransition))
	mux.HandleFunc("POST /api/v1/projects/{id}/cancel", protected(server.CancelProject, rbac.PermissionProjectView, withBody))
	mux.HandleFunc("POST /api/v1/projects/{id}/raw-footage", protected(server.AddRawFootage, rbac.PermissionUploadRaw, withBody))
	mux.HandleFunc("POST /api/v1/projects/{id}/draft", protected(server.UploadDraft, rbac.PermissionProjectDraft, withBody))
	mux.HandleFunc("POST /api/v1/projects/{id}/final", protected(server.MarkFinal, rbac.PermissionProjectDraft))
	mux.HandleFunc("POST /api/v1/projects/{id}/revisions", protected(server.RequestRevision, rbac.PermissionProjectRevise, withBody))
	mux.HandleFunc("POST /api/v1/projects/{id}/rating", protected(server.RateProject, rbac.PermissionProjectRate, withBody))

	// Uploads
	mux.HandleFunc("POST /api/v1/uploads/initiate", protected(server.InitiateMultipartUpload, "", withBody))
	mux.HandleFunc("POST /api/v1/uploads/urls", protected(server.GetPartUploadURLs, "", withBody))
	mux.HandleFunc("POST /api/v1/uploads/complete", protected(server.CompleteMultipartUpload, "", withBody))
	mux.HandleFunc("DELETE /api/v1/uploads/{id}", protected(server.AbortUpload, ""))

	// Payments
	mux.HandleFunc("POST /api/v1/payments", protected(server.InitiatePayment, rbac.PermissionPaymentInitiate, withBody))
	mux.HandleFunc("GET /api/v1/payments", protected(server.ListPayments, rbac.PermissionPaymentView))
	mux.HandleFunc("GET /api/v1/payments/stats", protected(server.PaymentStats, rbac.PermissionPaymentView))
	mux.HandleFunc("POST /api/v1/payments/verify", protected(server.VerifyPayment, rbac.PermissionPaymentVerify, withBody))
	mux.HandleFunc("GET /api/v1/payments/{id}", protected(server.GetPayment, rbac.PermissionPaymentView))
	mux.HandleFunc("POST /api/v1/payments/{id}/fail", protected(server.FailPayment, rbac.PermissionPaymentVerify, withBody))
	mux.HandleFunc("POST /api/v1/payments/{id}/refund", protected(server.RefundPayment, rbac.PermissionPaymentRefund, withBody))

	// Payouts
	mux.HandleFunc("POST /api/v1/payouts", protected(server.CreatePayout, rbac.PermissionPayoutManage, withBody))
	mux.HandleFunc("GET /api/v1/payouts", protected(server.ListPayouts, rbac.PermissionPayoutView))
	mux.HandleFunc("GET /api/v1/payouts/pending", protected(server.PendingEarnings, rbac.PermissionPayoutView))
	mux.HandleFunc("GET /api/v1/payouts/{id}", protected(server.GetPayout, rbac.PermissionPayoutView))
	mux.HandleFunc("PUT /api/v1/payouts/{id}/status", protected(server.UpdatePayoutStatus, rbac.PermissionPayoutManage, withBody))

	// Editors
	mux.HandleFunc("GET /api/v1/editors", protected(server.ListEditors, ""))
	mux.HandleFunc("PUT /api/v1/editors/me/availability", protected(server.SetAvailability, rbac.PermissionEditorSelf, withBody))
	mux.HandleFunc("PUT /api/v1/editors/me/payout-account", protected(server.UpdatePayoutAccount, rbac.PermissionEditorSelf, withBody))
	mux.HandleFunc("GET /api/v1/editors/{id}", protected(server.GetEditor, ""))
	mux.HandleFunc("POST /api/v1/editors/{id}/approve", protected(server.ApproveEditor, rbac.PermissionEditorReview))
	mux.HandleFunc("POST /api/v1/editors/{id}/reject", protected(server.RejectEditor, rbac.PermissionEditorReview, withBody))

	// Messages
	mux.HandleFunc("POST /api/v1/messages", protected(server.SendMessage, rbac.PermissionMessageSend, withBody))
	mux.HandleFunc("GET /api/v1/messages", protected(server.ListMessages, rbac.PermissionMessageView))
	mux.HandleFunc("GET /api/v1/messages/unread-count", protected(server.UnreadMessageCount, rbac.PermissionMessageView))
	mux.HandleFunc("POST /api/v1/messages/{id}/read", protected(server.MarkMessageRead, rbac.PermissionMessageView))
	mux.HandleFunc("GET /api/v1/projects/{id}/messages", protected(server.ProjectMessages, rbac.PermissionMessageView))
	mux.HandleFunc("POST /api/v1/projects/{id}/messages/read-all", protected(server.MarkProjectMessagesRead, rbac.PermissionMessageView))

	// Notifications
	mux.HandleFunc("GET /api/v1/notifications", protected(server.ListNotifications, ""))
	mux.HandleFunc("GET /api/v1/notifications/unread-count", protected(server.UnreadCount, ""))
	mux.HandleFunc("POST /api/v1/notifications/read-all", protected(server.MarkAllNotificationsRead, ""))
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", protected(server.MarkNotificationRead, ""))

	// Admin
	mux.HandleFunc("GET /api/v1/admin/dashboard", protected(server.Dashboard, rbac.PermissionReportView))
	mux.HandleFunc("GET /api/v1/admin/reports/monthly", protected(server.MonthlyReport, rbac.PermissionReportView))
	mux.HandleFunc("GET /api/v1/admin/audit-logs", protected(server.GetAuditLogs, rbac.PermissionAdminViewLogs))
	mux.HandleFunc("GET /api/v1/admin/users", protected(server.ListUsers, rbac.PermissionUserManage))
	mux.HandleFunc("GET /api/v1/admin/users/{id}", protected(server.GetUser, rbac.PermissionUserManage))
	mux.HandleFunc("PUT /api/v1/admin/users/{id}/suspension", protected(server.SetUserSuspension, rbac.PermissionUserManage, withBody))
	mux.HandleFunc("DELETE /api/v1/admin/users/{id}", protected(server.DeleteUser, rbac.PermissionUserManage))
	mux.HandleFunc("PUT /api/v1/admin/editors/{id}", protected(server.AdminUpdateEditor, rbac.PermissionEditorManage, withBody))

	return CORSMiddleware(allowedOrigins)(mux)
}

// serveOpenAPI отдает docs/swagger.json, а если файла нет, описание,
// зарегистрированное пакетом docs через swag
func serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile("docs/swagger.json")
	if err != nil {
		doc, docErr := swag.ReadDoc()
		if docErr != nil {
			http.Error(w, "OpenAPI documentation not found", http.StatusNotFound)
			return
		}
		data = []byte(doc)
	}

	var jsonData interface{}
	if err := json.Unmarshal(data, &jsonData); err != nil {
		http.Error(w, "Invalid OpenAPI documentation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// chainMiddleware applies multiple middleware to a handler function
func chainMiddleware(handler http.HandlerFunc, middleware ...func(http.Handler) http.Handler) http.HandlerFunc {
	h := http.Handler(handler)
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}
