package mocks

import (
	"time"

	"github.com/lumiforge/cutroom-backend/internal/jwt"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/stretchr/testify/mock"
)

// TokenManager мок интерфейса jwt.TokenManager
type TokenManager struct {
	mock.Mock
}

var _ jwt.TokenManager = (*TokenManager)(nil)

func (m *TokenManager) GenerateTokenPair(userID, email string, role models.Role) (string, string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *TokenManager) ValidateToken(tokenString string) (*jwt.Claims, error) {
	args := m.Called(tokenString)
	var r0 *jwt.Claims
	if v := args.Get(0); v != nil {
		r0 = v.(*jwt.Claims)
	}
	return r0, args.Error(1)
}

func (m *TokenManager) RefreshAccessToken(refreshTokenString string) (string, error) {
	args := m.Called(refreshTokenString)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) GetTokenExpiry(tokenType string) time.Duration {
	args := m.Called(tokenType)
	return args.Get(0).(time.Duration)
}
