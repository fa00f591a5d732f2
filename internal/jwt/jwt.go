package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lumiforge/cutroom-backend/internal/config"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims представляет структуру claims в JWT токене
type Claims struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	TokenType string      `json:"token_type"`
	jwt.RegisteredClaims
}

// Actor участник запроса по данным токена
func (c *Claims) Actor() models.Actor {
	return models.Actor{UserID: c.UserID, Role: c.Role}
}

// JWTManager управляет JWT токенами
type JWTManager struct {
	secretKey     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewJWTManager создает новый JWT менеджер
func NewJWTManager(cfg *config.Config) *JWTManager {
	if cfg.JWTSecretKey == "" {
		return nil
	}
	return &JWTManager{
		secretKey:     cfg.JWTSecretKey,
		accessExpiry:  time.Hour * 24,     // 24 часа
		refreshExpiry: time.Hour * 24 * 7, // 7 дней
		now:           time.Now,
	}
}

// GenerateTokenPair генерирует пару access и refresh токенов
func (j *JWTManager) GenerateTokenPair(userID, email string, role models.Role) (string, string, error) {
	accessToken, err := j.generateToken(userID, email, role, TokenTypeAccess, j.accessExpiry)
	if err != nil {
		return "", "", app_errors.ErrFailedToGenerateAccessToken
	}

	refreshToken, err := j.generateToken(userID, email, role, TokenTypeRefresh, j.refreshExpiry)
	if err != nil {
		return "", "", app_errors.ErrFailedToGenerateRefreshToken
	}

	return accessToken, refreshToken, nil
}

// generateToken генерирует JWT токен с указанным сроком действия
func (j *JWTManager) generateToken(userID, email string, role models.Role, tokenType string, expiry time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ValidateToken валидирует JWT токен и возвращает claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, app_errors.ErrUnexpectedSigningMethod
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		return nil, app_errors.ErrFailedToParseToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, app_errors.ErrInvalidToken
	}

	return claims, nil
}

// RefreshAccessToken генерирует новый access токен из refresh токена
func (j *JWTManager) RefreshAccessToken(refreshTokenString string) (string, error) {
	claims, err := j.ValidateToken(refreshTokenString)
	if err != nil || claims.TokenType != TokenTypeRefresh {
		return "", app_errors.ErrInvalidRefreshToken
	}

	accessToken, err := j.generateToken(claims.UserID, claims.Email, claims.Role, TokenTypeAccess, j.accessExpiry)
	if err != nil {
		return "", app_errors.ErrFailedToGenerateNewTokens
	}

	return accessToken, nil
}

// GetTokenExpiry возвращает время истечения токена
func (j *JWTManager) GetTokenExpiry(tokenType string) time.Duration {
	switch tokenType {
	case TokenTypeAccess:
		return j.accessExpiry
	case TokenTypeRefresh:
		return j.refreshExpiry
	default:
		return j.accessExpiry
	}
}

// ExtractTokenFromHeader извлекает токен из Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", app_errors.ErrAuthHeaderEmpty
	}

	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
		return "", app_errors.ErrAuthHeaderWrongFormat
	}

	return authHeader[len(bearerPrefix):], nil
}
