package http

import (
	"net/http"

	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Editor Handlers

// ListEditors handles the editor directory
// @Summary		List editors
// @Tags		editors
// @Produce	json
// @Security	BearerAuth
// @Param		application_status	query	string	false	"pending, approved or rejected"
// @Param		available			query	bool	false	"Only available editors"
// @Param		limit				query	int		false	"Page size"	default(20)
// @Param		offset				query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Editor]
// @Failure	403	{object}	models.ErrorResponse
// @Router		/editors [get]
func (s *Server) ListEditors(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.editorService.List(r.Context(), actor, models.EditorFilter{
		ApplicationStatus: models.ApplicationStatus(r.URL.Query().Get("application_status")),
		AvailableOnly:     queryBool(r, "available"),
		Limit:             queryInt(r, "limit", 20),
		Offset:            queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// GetEditor handles getting an editor profile
// @Summary		Get editor
// @Tags		editors
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Editor user ID"
// @Success	200	{object}	ydb.Editor
// @Failure	404	{object}	models.ErrorResponse
// @Router		/editors/{id} [get]
func (s *Server) GetEditor(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	e, err := s.editorService.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, e)
}

// ApproveEditor handles approving an editor application
// @Summary		Approve editor
// @Tags		editors
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Editor user ID"
// @Success	200	{object}	ydb.Editor
// @Failure	409	{object}	models.ErrorResponse
// @Router		/editors/{id}/approve [post]
func (s *Server) ApproveEditor(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	e, err := s.editorService.Approve(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, e)
}

// RejectEditor handles rejecting an editor application
// @Summary		Reject editor
// @Tags		editors
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string						true	"Editor user ID"
// @Param		request	body	models.RejectEditorRequest	true	"Reason"
// @Success	200	{object}	ydb.Editor
// @Failure	409	{object}	models.ErrorResponse
// @Router		/editors/{id}/reject [post]
func (s *Server) RejectEditor(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.RejectEditorRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	e, err := s.editorService.Reject(r.Context(), actor, r.PathValue("id"), req.Reason)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, e)
}

// SetAvailability handles the editor toggling availability
// @Summary		Set availability
// @Tags		editors
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.AvailabilityRequest	true	"Availability"
// @Success	200	{object}	ydb.Editor
// @Router		/editors/me/availability [put]
func (s *Server) SetAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.AvailabilityRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	e, err := s.editorService.SetAvailability(r.Context(), actor, req.IsAvailable)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, e)
}

// UpdatePayoutAccount handles the editor's payout details
// @Summary		Update payout account
// @Tags		editors
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.PayoutAccountRequest	true	"Payout account"
// @Success	200	{object}	ydb.Editor
// @Failure	400	{object}	models.ErrorResponse
// @Router		/editors/me/payout-account [put]
func (s *Server) UpdatePayoutAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.PayoutAccountRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	e, err := s.editorService.UpdatePayoutAccount(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, e)
}

// Catalog Handlers

// ListPackages handles the public package catalog
// @Summary		List packages
// @Tags		catalog
// @Produce	json
// @Param		all	query	bool	false	"Include inactive packages"
// @Success	200	{array}	ydb.Package
// @Router		/packages [get]
func (s *Server) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := s.catalogService.List(r.Context(), !queryBool(r, "all"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if pkgs == nil {
		pkgs = []*ydb.Package{}
	}

	s.writeJSON(w, http.StatusOK, pkgs)
}

// QuotePackage handles price breakdown for a package
// @Summary		Package quote
// @Tags		catalog
// @Produce	json
// @Param		type	path	string	true	"Package type"
// @Success	200	{object}	models.PackageQuote
// @Failure	404	{object}	models.ErrorResponse
// @Router		/packages/{type}/quote [get]
func (s *Server) QuotePackage(w http.ResponseWriter, r *http.Request) {
	quote, err := s.catalogService.Quote(r.Context(), models.PackageType(r.PathValue("type")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, quote)
}

// UpsertPackage handles admin catalog edits
// @Summary		Create or update package
// @Tags		catalog
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		type	path	string		true	"Package type"
// @Param		request	body	ydb.Package	true	"Package"
// @Success	200	{object}	ydb.Package
// @Failure	400	{object}	models.ErrorResponse
// @Router		/packages/{type} [put]
func (s *Server) UpsertPackage(w http.ResponseWriter, r *http.Request) {
	var pkg ydb.Package
	if err := s.validateRequest(r, &pkg); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}
	pkg.PackageType = models.PackageType(r.PathValue("type"))

	if err := s.catalogService.Upsert(r.Context(), &pkg); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, &pkg)
}
