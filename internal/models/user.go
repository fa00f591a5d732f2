package models

import (
	"encoding/json"
	"fmt"
)

// Profile ролевая часть учетной записи. Реализации: AdminProfile, EditorProfile, CustomerProfile
type Profile interface {
	Role() Role
	isProfile()
}

// AdminProfile данные администратора
type AdminProfile struct {
	Department  string   `json:"department,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

func (AdminProfile) Role() Role { return RoleAdmin }
func (AdminProfile) isProfile() {}

// EditorProfile данные монтажера
type EditorProfile struct {
	Specializations       []string          `json:"specializations"`
	Bio                   string            `json:"bio,omitempty"`
	PortfolioURL          string            `json:"portfolio_url,omitempty"`
	ApplicationStatus     ApplicationStatus `json:"application_status"`
	IsVerified            bool              `json:"is_verified"`
	IsAvailable           bool              `json:"is_available"`
	MaxConcurrentProjects int32             `json:"max_concurrent_projects"`
	CurrentWorkload       int32             `json:"current_workload"`
	AverageRating         float64           `json:"average_rating"`
	TotalReviews          int64             `json:"total_reviews"`
	TotalEarnings         int64             `json:"total_earnings"`
	PendingEarnings       int64             `json:"pending_earnings"`
	PayoutMethod          PayoutMethod      `json:"payout_method,omitempty"`
	HasPayoutAccount      bool              `json:"has_payout_account"`
}

func (EditorProfile) Role() Role { return RoleEditor }
func (EditorProfile) isProfile() {}

// CustomerProfile данные заказчика
type CustomerProfile struct {
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

func (CustomerProfile) Role() Role { return RoleCustomer }
func (CustomerProfile) isProfile() {}

// DecodeProfile восстанавливает профиль администратора или заказчика из сохраненного JSON.
// Профиль монтажера хранится в отдельной таблице и собирается сервисом editor.
func DecodeProfile(role Role, data string) (Profile, error) {
	if data == "" {
		data = "{}"
	}
	switch role {
	case RoleAdmin:
		var p AdminProfile
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("decode admin profile: %w", err)
		}
		return p, nil
	case RoleCustomer:
		var p CustomerProfile
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("decode customer profile: %w", err)
		}
		return p, nil
	case RoleEditor:
		return EditorProfile{}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// Account учетная запись: общая часть плюс профиль, помеченный ролью
// @Description	User account with role-tagged profile
type Account struct {
	UserInfo
	Profile Profile `json:"-"`
}

func (a Account) MarshalJSON() ([]byte, error) {
	type envelope struct {
		UserInfo
		Profile Profile `json:"profile"`
	}
	return json.Marshal(envelope{UserInfo: a.UserInfo, Profile: a.Profile})
}

// UserInfo represents user information
// @Description	User profile information
type UserInfo struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// UserFilter фильтр списка пользователей для администратора
type UserFilter struct {
	Role   Role
	Active *bool
	Limit  int
	Offset int
}

// SuspendUserRequest блокировка или разблокировка учетной записи
// @Description	Account suspension toggle
type SuspendUserRequest struct {
	Suspended bool   `json:"suspended"`
	Reason    string `json:"reason,omitempty"`
}

// Actor аутентифицированный инициатор операции
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsEditor() bool   { return a.Role == RoleEditor }
func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }
