package jwt

import (
	"time"

	"github.com/lumiforge/cutroom-backend/internal/models"
)

type TokenManager interface {
	GenerateTokenPair(userID, email string, role models.Role) (string, string, error)
	ValidateToken(tokenString string) (*Claims, error)
	RefreshAccessToken(refreshTokenString string) (string, error)
	GetTokenExpiry(tokenType string) time.Duration
}
