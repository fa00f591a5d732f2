package http

import (
	"net/http"

	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Message Handlers

// SendMessage handles a message between the project owner and the assigned editor
// @Summary		Send project message
// @Description	Send a message to the other participant of a project. receiver_id defaults to the counterparty
// @Tags		messages
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.SendMessageRequest	true	"Message"
// @Success	201	{object}	ydb.Message
// @Failure	400	{object}	models.ErrorResponse
// @Failure	403	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Router		/messages [post]
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	m, err := s.messageService.Send(r.Context(), actor, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, m)
}

// ListMessages handles the caller's messages across projects
// @Summary		List my messages
// @Tags		messages
// @Produce	json
// @Security	BearerAuth
// @Param		unread	query	bool	false	"Only unread incoming messages"
// @Param		limit	query	int		false	"Page size"	default(50)
// @Param		offset	query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Message]
// @Router		/messages [get]
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.messageService.List(r.Context(), actor, queryBool(r, "unread"), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// UnreadMessageCount handles the unread messages badge
// @Summary		Unread messages count
// @Tags		messages
// @Produce	json
// @Security	BearerAuth
// @Success	200	{object}	models.UnreadCountResponse
// @Router		/messages/unread-count [get]
func (s *Server) UnreadMessageCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.messageService.UnreadCount(r.Context(), actor.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// MarkMessageRead handles marking one incoming message as read
// @Summary		Mark message read
// @Tags		messages
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Message ID"
// @Success	200	{object}	models.MessageResponse
// @Failure	403	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/messages/{id}/read [post]
func (s *Server) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	if err := s.messageService.MarkRead(r.Context(), actor, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Message marked as read"})
}

// ProjectMessages handles the conversation of one project
// @Summary		List project messages
// @Description	Oldest first. Incoming messages of the caller are marked as read
// @Tags		messages
// @Produce	json
// @Security	BearerAuth
// @Param		id		path	string	true	"Project ID"
// @Param		limit	query	int		false	"Page size"	default(50)
// @Param		offset	query	int		false	"Offset"	default(0)
// @Success	200	{object}	models.ListResponse[ydb.Message]
// @Failure	403	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/projects/{id}/messages [get]
func (s *Server) ProjectMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.messageService.ProjectMessages(r.Context(), actor, r.PathValue("id"), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// MarkProjectMessagesRead handles clearing unread messages of a project
// @Summary		Mark project messages read
// @Tags		messages
// @Produce	json
// @Security	BearerAuth
// @Param		id	path	string	true	"Project ID"
// @Success	200	{object}	models.MessageResponse
// @Failure	403	{object}	models.ErrorResponse
// @Router		/projects/{id}/messages/read-all [post]
func (s *Server) MarkProjectMessagesRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	if err := s.messageService.MarkProjectRead(r.Context(), actor, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Project messages marked as read"})
}
