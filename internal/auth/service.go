package auth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumiforge/cutroom-backend/internal/audit"
	"github.com/lumiforge/cutroom-backend/internal/config"
	"github.com/lumiforge/cutroom-backend/internal/editor"
	"github.com/lumiforge/cutroom-backend/internal/email"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	jwtmanager "github.com/lumiforge/cutroom-backend/internal/jwt"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/rbac"
	"github.com/lumiforge/cutroom-backend/internal/validation"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

const minPasswordLength = 8

// Mailer отправка приветственного письма
type Mailer interface {
	IsConfigured() bool
	SendWelcomeEmail(ctx context.Context, toEmail, fullName string, editorApplicant bool) (*email.EmailMessage, error)
}

// Service реализует бизнес-логику аутентификации
type Service struct {
	db             ydb.Database
	jwtManager     jwtmanager.TokenManager
	rbac           *rbac.RBAC
	email          Mailer
	audit          audit.Recorder
	notifier       notification.Sink
	editorCapacity int32
}

// NewService создает новый auth сервис. notifier может быть nil
func NewService(db ydb.Database, jwtManager jwtmanager.TokenManager, rbacManager *rbac.RBAC, emailClient Mailer, recorder audit.Recorder, notifier notification.Sink, cfg *config.Config) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	capacity := int32(cfg.DefaultEditorCapacity)
	if capacity <= 0 {
		capacity = 3
	}
	return &Service{
		db:             db,
		jwtManager:     jwtManager,
		rbac:           rbacManager,
		email:          emailClient,
		audit:          recorder,
		notifier:       notifier,
		editorCapacity: capacity,
	}
}

// Register регистрирует заказчика или заявку монтажера. Администраторы
// через API не регистрируются
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &ydb.User{
		UserID:       uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	}

	message := "Registration successful."
	switch req.Role {
	case models.RoleCustomer:
		profile, err := json.Marshal(models.CustomerProfile{CompanyName: req.CompanyName, Phone: req.Phone})
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile: %w", err)
		}
		user.ProfileData = string(profile)
		if err := s.db.CreateUser(ctx, user); err != nil {
			return nil, s.registrationError(err)
		}
	case models.RoleEditor:
		applicant := &ydb.Editor{
			Specializations:       req.Specializations,
			Bio:                   strings.TrimSpace(req.Bio),
			PortfolioURL:          strings.TrimSpace(req.PortfolioURL),
			ApplicationStatus:     models.ApplicationPending,
			MaxConcurrentProjects: s.editorCapacity,
		}
		if err := s.db.RegisterEditorTx(ctx, user, applicant); err != nil {
			return nil, s.registrationError(err)
		}
		message = "Registration successful. Your editor application is pending review."
	}

	logger.FromContext(ctx).Info("User registered", "user_id", user.UserID, "role", user.Role)
	s.record(ctx, user.UserID, user.Role, models.AuditRegisterSuccess, user.UserID, nil)

	if s.email != nil && s.email.IsConfigured() {
		if _, err := s.email.SendWelcomeEmail(ctx, user.Email, user.FullName, user.Role == models.RoleEditor); err != nil {
			logger.FromContext(ctx).Warn("Failed to send welcome email", "user_id", user.UserID, "error", err)
		}
	}

	return &models.RegisterResponse{UserID: user.UserID, Message: message}, nil
}

func (s *Service) registrationError(err error) error {
	if errors.Is(err, app_errors.ErrEmailAlreadyExists) {
		return app_errors.ErrEmailAlreadyExists
	}
	return fmt.Errorf("failed to create user: %w", err)
}

func validateRegistration(req *models.RegisterRequest) error {
	if err := validation.ValidateEmail(req.Email, "email"); err != nil {
		return app_errors.Validation("%s", err.Error())
	}
	if len(req.Password) < minPasswordLength {
		return app_errors.Validation("password must be at least %d characters", minPasswordLength)
	}
	if req.FullName == "" {
		return app_errors.Validation("full_name is required")
	}
	for field, value := range map[string]string{"full_name": req.FullName, "company_name": req.CompanyName, "bio": req.Bio} {
		if err := validation.ValidateXSS(value, field); err != nil {
			return app_errors.Validation("%s", err.Error())
		}
		if err := validation.ValidateUnicodeSecurity(value, field); err != nil {
			return app_errors.Validation("%s", err.Error())
		}
	}
	switch req.Role {
	case models.RoleCustomer:
	case models.RoleEditor:
		if req.PortfolioURL != "" {
			u, err := url.Parse(strings.TrimSpace(req.PortfolioURL))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return app_errors.Validation("portfolio_url must be an http(s) link")
			}
		}
	case models.RoleAdmin:
		return app_errors.Forbidden("admin accounts cannot be self-registered")
	default:
		return app_errors.Validation("role must be customer or editor")
	}
	return nil
}

// EnsureAdmin создает первичного администратора, если его еще нет
func (s *Service) EnsureAdmin(ctx context.Context, emailAddr, password string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return nil
	}
	if _, err := s.db.GetUserByEmail(ctx, emailAddr); err == nil {
		return nil
	} else if !errors.Is(err, app_errors.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	profile, _ := json.Marshal(models.AdminProfile{Department: "operations"})
	user := &ydb.User{
		UserID:       uuid.New().String(),
		Email:        emailAddr,
		PasswordHash: string(passwordHash),
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
		ProfileData:  string(profile),
		IsActive:     true,
	}
	if err := s.db.CreateUser(ctx, user); err != nil && !errors.Is(err, app_errors.ErrEmailAlreadyExists) {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	logger.FromContext(ctx).Info("Admin account provisioned", "user_id", user.UserID)
	return nil
}

// Login выполняет вход пользователя
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.db.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			return nil, app_errors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, app_errors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, app_errors.ErrUserDeactivated
	}

	accessToken, refreshToken, err := s.jwtManager.GenerateTokenPair(user.UserID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	s.storeRefreshToken(ctx, user.UserID, refreshToken)

	s.record(ctx, user.UserID, user.Role, models.AuditLoginSuccess, user.UserID, nil)

	info := userInfo(user)
	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.jwtManager.GetTokenExpiry(jwtmanager.TokenTypeAccess)).Unix(),
		User:         &info,
	}, nil
}

// RefreshToken ротирует пару токенов. Старый refresh токен отзывается
func (s *Service) RefreshToken(ctx context.Context, req *models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	claims, err := s.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwtmanager.TokenTypeRefresh {
		return nil, app_errors.ErrInvalidRefreshToken
	}

	tokenHash := s.hashToken(req.RefreshToken)
	tokenRecord, err := s.db.GetRefreshToken(ctx, tokenHash)
	if err != nil || tokenRecord == nil || tokenRecord.IsRevoked || time.Now().After(tokenRecord.ExpiresAt) {
		return nil, app_errors.ErrInvalidRefreshToken
	}

	// роль и активность берутся из базы, а не из старого токена
	user, err := s.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, app_errors.ErrInvalidRefreshToken
	}
	if !user.IsActive {
		return nil, app_errors.ErrUserDeactivated
	}

	accessToken, refreshToken, err := s.jwtManager.GenerateTokenPair(user.UserID, user.Email, user.Role)
	if err != nil {
		return nil, app_errors.ErrFailedToGenerateNewTokens
	}

	if err := s.db.RevokeRefreshToken(ctx, tokenHash); err != nil {
		logger.FromContext(ctx).Warn("Failed to revoke rotated refresh token", "user_id", user.UserID, "error", err)
	}
	s.storeRefreshToken(ctx, user.UserID, refreshToken)

	return &models.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.jwtManager.GetTokenExpiry(jwtmanager.TokenTypeAccess)).Unix(),
	}, nil
}

// Logout выполняет выход пользователя
func (s *Service) Logout(ctx context.Context, req *models.LogoutRequest) (*models.MessageResponse, error) {
	tokenHash := s.hashToken(req.RefreshToken)
	if err := s.db.RevokeRefreshToken(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return &models.MessageResponse{Message: "Logout successful"}, nil
}

// GetProfile учетная запись с профилем, соответствующим роли
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Account, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if user.Role == models.RoleEditor {
		e, err := s.db.GetEditor(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		profile = editor.ToProfile(e)
	} else {
		profile, err = models.DecodeProfile(user.Role, user.ProfileData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		if admin, ok := profile.(models.AdminProfile); ok && len(admin.Permissions) == 0 && s.rbac != nil {
			for _, p := range s.rbac.GetRolePermissions(models.RoleAdmin) {
				admin.Permissions = append(admin.Permissions, string(p))
			}
			profile = admin
		}
	}

	return &models.Account{UserInfo: userInfo(user), Profile: profile}, nil
}

// UpdateProfile меняет имя и контакты заказчика
func (s *Service) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.Account, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, app_errors.Validation("full_name is required")
	}
	for field, value := range map[string]string{"full_name": fullName, "company_name": req.CompanyName, "phone": req.Phone} {
		if err := validation.ValidateXSS(value, field); err != nil {
			return nil, app_errors.Validation("%s", err.Error())
		}
	}

	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FullName = fullName
	if user.Role == models.RoleCustomer {
		data, err := json.Marshal(models.CustomerProfile{
			CompanyName: strings.TrimSpace(req.CompanyName),
			Phone:       strings.TrimSpace(req.Phone),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile: %w", err)
		}
		user.ProfileData = string(data)
	}
	user.UpdatedAt = time.Now()
	if err := s.db.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *Service) storeRefreshToken(ctx context.Context, userID, refreshToken string) {
	now := time.Now()
	record := &ydb.RefreshToken{
		TokenID:   uuid.New().String(),
		UserID:    userID,
		TokenHash: s.hashToken(refreshToken),
		ExpiresAt: now.Add(s.jwtManager.GetTokenExpiry(jwtmanager.TokenTypeRefresh)),
		CreatedAt: now,
	}
	if err := s.db.CreateRefreshToken(ctx, record); err != nil {
		logger.FromContext(ctx).Error("Failed to save refresh token", "user_id", userID, "error", err)
	}
}

func (s *Service) record(ctx context.Context, userID string, role models.Role, action models.AuditActionType, entityID string, details map[string]interface{}) {
	if err := s.audit.LogAction(ctx, audit.Entry{
		UserID:   userID,
		Role:     role,
		Action:   action,
		EntityID: entityID,
		Details:  details,
	}); err != nil {
		logger.FromContext(ctx).Warn("Failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

// hashToken хеширует токен для хранения в базе
func (s *Service) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", hash)
}

// ValidateToken валидирует access токен и возвращает claims
func (s *Service) ValidateToken(tokenString string) (*jwtmanager.Claims, error) {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwtmanager.TokenTypeAccess {
		return nil, app_errors.ErrInvalidToken
	}
	return claims, nil
}

func userInfo(user *ydb.User) models.UserInfo {
	return models.UserInfo{
		UserID:    user.UserID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Unix(),
		UpdatedAt: user.UpdatedAt.Unix(),
	}
}
