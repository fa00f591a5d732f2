package http

import (
	"net/http"

	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Notification Handlers

// ListNotifications handles the caller's inbox
// @Summary		List notifications
// @Tags		notifications
// @Produce	json
// @Security	BearerAuth
// @Param		unread	query	bool	false	"Only unread"
// @Param		limit	query	int		false	"Page size"	default(20)
// @Param		offset	query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Notification]
// @Router		/notifications [get]
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.notificationService.List(r.Context(), models.NotificationFilter{
		UserID:     actor.UserID,
		UnreadOnly: queryBool(r, "unread"),
		Limit:      queryInt(r, "limit", 20),
		Offset:     queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// UnreadCount handles the unread badge counter
// @Summary		Unread notifications count
// @Tags		notifications
// @Produce	json
// @Security	BearerAuth
// @Success	200	{object}	models.UnreadCountResponse
// @Router		/notifications/unread-count [get]
func (s *Server) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.notificationService.UnreadCount(r.Context(), actor.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// MarkNotificationRead handles marking one notification as read
// @Summary		Mark notification read
// @Tags		notifications
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Notification ID"
// @Success	200	{object}	models.MessageResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	if err := s.notificationService.MarkRead(r.Context(), actor.UserID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Notification marked as read"})
}

// MarkAllNotificationsRead handles clearing the inbox
// @Summary		Mark all notifications read
// @Tags		notifications
// @Produce	json
// @Security	BearerAuth
// @Success	200	{object}	models.MessageResponse
// @Router		/notifications/read-all [post]
func (s *Server) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	if err := s.notificationService.MarkAllRead(r.Context(), actor.UserID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "All notifications marked as read"})
}

// Upload Handlers

// InitiateMultipartUpload handles starting a video upload
// @Summary		Initiate multipart upload
// @Description	Start an S3 multipart upload for raw footage or an edited video
// @Tags		uploads
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.InitiateMultipartUploadRequest	true	"Upload"
// @Success	201	{object}	models.InitiateMultipartUploadResponse
// @Failure	400	{object}	models.ErrorResponse
// @Router		/uploads/initiate [post]
func (s *Server) InitiateMultipartUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.InitiateMultipartUploadRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.uploadService.Initiate(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, resp)
}

// GetPartUploadURLs handles presigning part URLs
// @Summary		Get part upload URLs
// @Tags		uploads
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.GetPartUploadURLsRequest	true	"Parts"
// @Success	200	{object}	models.GetPartUploadURLsResponse
// @Failure	400	{object}	models.ErrorResponse
// @Router		/uploads/urls [post]
func (s *Server) GetPartUploadURLs(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.GetPartUploadURLsRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.uploadService.PartURLs(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// CompleteMultipartUpload handles finishing a video upload
// @Summary		Complete multipart upload
// @Description	Assemble parts and verify the video signature and actual size
// @Tags		uploads
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.CompleteMultipartUploadRequest	true	"Completed parts"
// @Success	200	{object}	models.CompleteMultipartUploadResponse
// @Failure	400	{object}	models.ErrorResponse
// @Router		/uploads/complete [post]
func (s *Server) CompleteMultipartUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.CompleteMultipartUploadRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.uploadService.Complete(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// AbortUpload handles cancelling an unfinished upload
// @Summary		Abort upload
// @Tags		uploads
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Upload ID"
// @Success	200	{object}	models.MessageResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/uploads/{id} [delete]
func (s *Server) AbortUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	if err := s.uploadService.Abort(r.Context(), actor, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Upload aborted"})
}

// Admin Handlers

// Dashboard handles admin counters
// @Summary		Admin dashboard
// @Tags		admin
// @Produce	json
// @Security	BearerAuth
// @Success	200	{object}	models.Dashboard
// @Failure	403	{object}	models.ErrorResponse
// @Router		/admin/dashboard [get]
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	d, err := s.reportService.Dashboard(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, d)
}

// MonthlyReport handles the xlsx export
// @Summary		Monthly report
// @Description	Build an xlsx workbook with projects, payments and payouts for the month and return a download link
// @Tags		admin
// @Produce	json
// @Security	BearerAuth
// @Param		year	query	int	true	"Year"
// @Param		month	query	int	true	"Month 1..12"
// @Success	200	{object}	models.ReportResponse
// @Failure	400	{object}	models.ErrorResponse
// @Router		/admin/reports/monthly [get]
func (s *Server) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.reportService.MonthlyReport(r.Context(), actor, queryInt(r, "year", 0), queryInt(r, "month", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// GetAuditLogs handles the audit trail
// @Summary		Audit logs
// @Tags		admin
// @Produce	json
// @Security	BearerAuth
// @Param		user_id		query	string	false	"Actor"
// @Param		entity_id	query	string	false	"Entity"
// @Param		action_type	query	string	false	"Action"
// @Param		result		query	string	false	"success or failure"
// @Param		from		query	string	false	"RFC3339 lower bound"
// @Param		to			query	string	false	"RFC3339 upper bound"
// @Param		limit		query	int		false	"Page size"	default(20)
// @Param		offset		query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.GetAuditLogsResponse
// @Failure	403	{object}	models.ErrorResponse
// @Router		/admin/audit-logs [get]
func (s *Server) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.auditService.GetLogs(r.Context(), models.GetAuditLogsRequest{
		UserID:     q.Get("user_id"),
		EntityID:   q.Get("entity_id"),
		ActionType: q.Get("action_type"),
		Result:     q.Get("result"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Limit:      queryInt(r, "limit", 20),
		Offset:     queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}
