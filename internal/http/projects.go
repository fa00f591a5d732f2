package http

import (
	"net/http"

	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Project Handlers

// CreateProject handles project creation by a customer
// @Summary		Create project
// @Description	Create a project in pending_payment status. Price, revision quota and deadline come from the package catalog
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.CreateProjectRequest	true	"Project brief"
// @Success	201	{object}	ydb.Project
// @Failure	400	{object}	models.ErrorResponse
// @Failure	403	{object}	models.ErrorResponse
// @Router		/projects [post]
func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.Create(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, p)
}

// ListProjects handles listing projects visible to the caller
// @Summary		List projects
// @Description	Customers see their own projects, editors see assigned ones, admins may filter by customer or editor
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Param		status		query	string	false	"Project status"
// @Param		customer_id	query	string	false	"Customer filter (admin only)"
// @Param		editor_id	query	string	false	"Editor filter (admin only)"
// @Param		limit		query	int		false	"Page size"	default(20)
// @Param		offset		query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Project]
// @Failure	400	{object}	models.ErrorResponse
// @Router		/projects [get]
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.ProjectFilter{
		CustomerID: q.Get("customer_id"),
		EditorID:   q.Get("editor_id"),
		Status:     models.ProjectStatus(q.Get("status")),
		Limit:      queryInt(r, "limit", 20),
		Offset:     queryInt(r, "offset", 0),
	}

	resp, err := s.projectService.List(r.Context(), actor, filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// ListUnassignedProjects handles the assignment queue
// @Summary		Assignment queue
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Param		limit	query	int	false	"Page size"	default(20)
// @Param		offset	query	int	false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Project]
// @Failure	403	{object}	models.ErrorResponse
// @Router		/projects/unassigned [get]
func (s *Server) ListUnassignedProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.projectService.ListUnassigned(r.Context(), actor, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// ListDueSoonProjects handles projects whose deadline is close
// @Summary		Projects due soon
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Param		days	query	int	false	"Horizon in days"
// @Success	200	{array}		ydb.Project
// @Failure	403	{object}	models.ErrorResponse
// @Router		/projects/due-soon [get]
func (s *Server) ListDueSoonProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	projects, err := s.projectService.DueSoon(r.Context(), actor, queryInt(r, "days", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []*ydb.Project{}
	}

	s.writeJSON(w, http.StatusOK, projects)
}

// ProjectStats handles per-status project counters
// @Summary		Project statistics
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Success	200	{object}	models.ProjectStats
// @Router		/projects/stats [get]
func (s *Server) ProjectStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	stats, err := s.projectService.Stats(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// GetProject handles getting a single project
// @Summary		Get project
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Project ID"
// @Success	200	{object}	ydb.Project
// @Failure	403	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/projects/{id} [get]
func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	p, err := s.projectService.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// AssignEditor handles editor assignment
// @Summary		Assign editor
// @Description	Admin assigns an approved, available editor with spare capacity. Project moves to assigned
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Project ID"
// @Param		request	body	models.AssignEditorRequest	true	"Editor"
// @Success	200	{object}	ydb.Project
// @Failure	409	{object}	models.ErrorResponse
// @Failure	422	{object}	models.ErrorResponse
// @Router		/projects/{id}/assign [post]
func (s *Server) AssignEditor(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.AssignEditorRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.Assign(r.Context(), actor, r.PathValue("id"), req.EditorID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// UpdateProjectStatus handles a generic status transition
// @Summary		Change project status
// @Description	Apply a transition from the lifecycle table. The caller role must be allowed for the edge
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Project ID"
// @Param		request	body	models.UpdateStatusRequest	true	"Target status"
// @Success	200	{object}	ydb.Project
// @Failure	403	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/projects/{id}/status [put]
func (s *Server) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.UpdateStatus(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// StartProject handles the assigned editor starting work
// @Summary		Start work
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Project ID"
// @Success	200	{object}	ydb.Project
// @Failure	409	{object}	models.ErrorResponse
// @Router		/projects/{id}/start [post]
func (s *Server) StartProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	p, err := s.projectService.Start(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// CancelProject handles cancellation
// @Summary		Cancel project
// @Description	Customers may cancel before work starts, admins at any non-terminal stage
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Project ID"
// @Param		request	body	models.UpdateStatusRequest	true	"Cancellation reason"
// @Success	200	{object}	ydb.Project
// @Failure	400	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/projects/{id}/cancel [post]
func (s *Server) CancelProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.Cancel(r.Context(), actor, r.PathValue("id"), req.CancellationReason)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// AddRawFootage handles attaching a completed upload as raw footage
// @Summary		Attach raw footage
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string					true	"Project ID"
// @Param		request	body	models.FileRefRequest	true	"Completed upload"
// @Success	200	{object}	ydb.Project
// @Failure	409	{object}	models.ErrorResponse
// @Router		/projects/{id}/raw-footage [post]
func (s *Server) AddRawFootage(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.FileRefRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.AddRawFootage(r.Context(), actor, r.PathValue("id"), req.UploadID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// UploadDraft handles the editor delivering a draft
// @Summary		Deliver draft
// @Description	Attach an edited video and move the project to draft_submitted
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string					true	"Project ID"
// @Param		request	body	models.FileRefRequest	true	"Completed upload"
// @Success	200	{object}	ydb.Project
// @Failure	409	{object}	models.ErrorResponse
// @Router		/projects/{id}/draft [post]
func (s *Server) UploadDraft(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.FileRefRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.UploadDraft(r.Context(), actor, r.PathValue("id"), req.UploadID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// MarkFinal handles the editor finalizing the delivery
// @Summary		Mark final
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Project ID"
// @Success	200	{object}	ydb.Project
// @Failure	409	{object}	models.ErrorResponse
// @Router		/projects/{id}/final [post]
func (s *Server) MarkFinal(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	p, err := s.projectService.MarkFinal(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// RequestRevision handles a customer revision request
// @Summary		Request revision
// @Description	Append feedback to the revision ledger. Fails with 422 once the package quota is used up
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string							true	"Project ID"
// @Param		request	body	models.RequestRevisionRequest	true	"Feedback"
// @Success	200	{object}	ydb.Project
// @Failure	409	{object}	models.ErrorResponse
// @Failure	422	{object}	models.ErrorResponse
// @Router		/projects/{id}/revisions [post]
func (s *Server) RequestRevision(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.RequestRevisionRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.RequestRevision(r.Context(), actor, r.PathValue("id"), req.Feedback)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// RateProject handles the one-time customer rating
// @Summary		Rate project
// @Tags		projects
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Project ID"
// @Param		request	body	models.RateProjectRequest	true	"Rating 1..5"
// @Success	200	{object}	ydb.Project
// @Failure	400	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/projects/{id}/rating [post]
func (s *Server) RateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.RateProjectRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	p, err := s.projectService.Rate(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

// ProjectDownloadURL handles presigned download links
// @Summary		Download link
// @Tags		projects
// @Produce	json
// @Security	BearerAuth
// @Param		id			path	string	true	"Project ID"
// @Param		which		query	string	false	"edited or raw"	default(edited)
// @Param		upload_id	query	string	false	"Raw footage upload"
// @Success	200	{object}	models.DownloadURLResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/projects/{id}/download [get]
func (s *Server) ProjectDownloadURL(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	resp, err := s.projectService.DownloadURL(r.Context(), actor, r.PathValue("id"), q.Get("which"), q.Get("upload_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}
