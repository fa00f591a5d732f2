package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lumiforge/cutroom-backend/internal/audit"
	"github.com/lumiforge/cutroom-backend/internal/auth"
	"github.com/lumiforge/cutroom-backend/internal/catalog"
	"github.com/lumiforge/cutroom-backend/internal/editor"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/message"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/payment"
	"github.com/lumiforge/cutroom-backend/internal/payout"
	"github.com/lumiforge/cutroom-backend/internal/project"
	"github.com/lumiforge/cutroom-backend/internal/report"
	"github.com/lumiforge/cutroom-backend/internal/upload"
)

// Services collects everything the HTTP layer calls into
type Services struct {
	Auth          *auth.Service
	Projects      *project.Service
	Payments      *payment.Service
	Payouts       *payout.Service
	Editors       *editor.Service
	Catalog       *catalog.Service
	Notifications *notification.Service
	Messages      *message.Service
	Uploads       *upload.Service
	Reports       *report.Service
	Audit         *audit.Service
}

// Server represents HTTP server
type Server struct {
	authService         *auth.Service
	projectService      *project.Service
	paymentService      *payment.Service
	payoutService       *payout.Service
	editorService       *editor.Service
	catalogService      *catalog.Service
	notificationService *notification.Service
	messageService      *message.Service
	uploadService       *upload.Service
	reportService       *report.Service
	auditService        *audit.Service
}

// NewServer creates a new HTTP server
func NewServer(svc Services) *Server {
	return &Server{
		authService:         svc.Auth,
		projectService:      svc.Projects,
		paymentService:      svc.Payments,
		payoutService:       svc.Payouts,
		editorService:       svc.Editors,
		catalogService:      svc.Catalog,
		notificationService: svc.Notifications,
		messageService:      svc.Messages,
		uploadService:       svc.Uploads,
		reportService:       svc.Reports,
		auditService:        svc.Audit,
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// statusForKind maps an error kind to the HTTP status returned to the client
func statusForKind(kind app_errors.Kind) int {
	switch kind {
	case app_errors.KindNotFound:
		return http.StatusNotFound
	case app_errors.KindForbidden:
		return http.StatusForbidden
	case app_errors.KindInvalidState, app_errors.KindConflict:
		return http.StatusConflict
	case app_errors.KindQuotaExceeded:
		return http.StatusUnprocessableEntity
	case app_errors.KindValidation:
		return http.StatusBadRequest
	case app_errors.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError translates a service error into a response.
// Unclassified errors are logged and hidden from the client
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := app_errors.KindOf(err)
	status := statusForKind(kind)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Request failed", "error", err)
		message = "internal server error"
	}
	s.writeJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
		Kind:    string(kind),
	})
}

// validateRequest validates and decodes a request struct
func (s *Server) validateRequest(r *http.Request, req interface{}) error {
	return json.NewDecoder(r.Body).Decode(req)
}

// actor returns the authenticated participant or writes 401
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	claims, ok := GetUserClaims(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "User not authenticated")
		return models.Actor{}, false
	}
	return claims.Actor(), true
}

// queryInt reads an integer query parameter, falling back to def when absent or malformed
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// Health handles liveness probe
// @Summary		Health check
// @Tags		system
// @Produce	json
// @Success	200	{object}	models.MessageResponse
// @Router		/very-secret-health-check [get]
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "ok"})
}

// Auth Handlers

// Register handles account registration
// @Summary		Register a new account
// @Description	Register a customer or submit an editor application. Admin accounts cannot be self-registered
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		models.RegisterRequest	true	"Registration request"
// @Success	201	{object}	models.RegisterResponse
// @Failure	400	{object}	models.ErrorResponse
// @Failure	403	{object}	models.ErrorResponse
// @Failure	409	{object}	models.ErrorResponse
// @Failure	500	{object}	models.ErrorResponse
// @Router		/auth/register [post]
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.Register(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, resp)
}

// Login handles user login
// @Summary		Login
// @Description	Authenticate with email and password and receive a token pair
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		models.LoginRequest	true	"Login request"
// @Success	200	{object}	models.LoginResponse
// @Failure	400	{object}	models.ErrorResponse
// @Failure	401	{object}	models.ErrorResponse
// @Failure	403	{object}	models.ErrorResponse
// @Router		/auth/login [post]
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.Login(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// RefreshToken handles token refresh
// @Summary		Refresh tokens
// @Description	Exchange a refresh token for a new token pair. The old refresh token is revoked
// @Tags		auth
// @Accept		json
// @Produce	json
// @Param		request	body		models.RefreshTokenRequest	true	"Refresh request"
// @Success	200	{object}	models.RefreshTokenResponse
// @Failure	400	{object}	models.ErrorResponse
// @Failure	401	{object}	models.ErrorResponse
// @Router		/auth/refresh [post]
func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.RefreshToken(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// Logout handles user logout
// @Summary		Logout
// @Description	Revoke the refresh token
// @Tags		auth
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.LogoutRequest	true	"Logout request"
// @Success	200	{object}	models.MessageResponse
// @Failure	400	{object}	models.ErrorResponse
// @Failure	401	{object}	models.ErrorResponse
// @Router		/auth/logout [post]
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.Logout(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// GetProfile handles getting the current account
// @Summary		Get profile
// @Description	Get the authenticated account with its role-specific profile
// @Tags		auth
// @Produce	json
// @Security	BearerAuth
// @Success	200	{object}	models.Account
// @Failure	401	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/auth/profile [get]
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	resp, err := s.authService.GetProfile(r.Context(), actor.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// UpdateProfile handles profile update
// @Summary		Update profile
// @Tags		auth
// @Accept		json
// @Produce	json
// @Security	BearerAuth
// @Param		request	body		models.UpdateProfileRequest	true	"Profile fields"
// @Success	200	{object}	models.Account
// @Failure	400	{object}	models.ErrorResponse
// @Failure	401	{object}	models.ErrorResponse
// @Router		/auth/profile [put]
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := s.validateRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	resp, err := s.authService.UpdateProfile(r.Context(), actor.UserID, &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}
