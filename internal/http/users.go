package http

import (
	"net/http"
	"strconv"

	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Admin User Handlers

// ListUsers handles the account directory
// @Summary		List users
// @Tags		admin
// @Produce	json
// @Security	BearerAuth
// @Param		role	query	string	false	"customer, editor or admin"
// @Param		active	query	bool	false	"Filter by active flag"
// @Param		limit	query	int		false	"Page size"	default(20)
// @Param		offset	query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[models.UserInfo]
// @Failure	400	{object}	models.ErrorResponse
// @Failure	403	{object}	models.ErrorResponse
// @Router		/admin/users [get]
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	filter := models.UserFilter{
		Role:   models.Role(r.URL.Query().Get("role")),
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		filter.Active = &active
	}

	resp, err := s.authService.ListUsers(r.Context(), actor, filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// GetUser handles reading one account with its role profile
// @Summary		Get user
// @Tags		admin
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"User ID"
// @Success	200	{object}	models.Account
// @Failure	404	{object}	models.ErrorResponse
// @Router		/admin/users/{id} [get]
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	account, err := s.authService.GetUser(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, account)
}

// SetUserSuspension handles suspending or reactivating an account
// @Summary		Suspend or reactivate user
// @Description	Suspension revokes refresh tokens and stops an editor from receiving projects. Issued access tokens stay valid until they expire
// @Tags		admin
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"User ID"
// @Param		request	body	models.SuspendUserRequest	true	"Suspension"
// @Success	200	{object}	models.UserInfo
// @Failure	400	{object}	models.ErrorResponse
// @Failure	403	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/admin/users/{id}/suspension [put]
func (s *Server) SetUserSuspension(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.SuspendUserRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	info, err := s.authService.SetSuspended(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, info)
}

// DeleteUser handles removing an account without projects
// @Summary		Delete user
// @Description	Accounts with project history cannot be deleted and should be suspended instead
// @Tags		admin
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"User ID"
// @Success	200	{object}	models.MessageResponse
// @Failure	403	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/admin/users/{id} [delete]
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	if err := s.authService.DeleteUser(r.Context(), actor, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "User deleted"})
}

// AdminUpdateEditor handles an admin edit of an editor profile
// @Summary		Update editor profile
// @Tags		admin
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Editor user ID"
// @Param		request	body	models.UpdateEditorRequest	true	"Fields to change"
// @Success	200	{object}	ydb.Editor
// @Failure	400	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/admin/editors/{id} [put]
func (s *Server) AdminUpdateEditor(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.UpdateEditorRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	e, err := s.editorService.AdminUpdate(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, e)
}
