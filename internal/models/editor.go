package models

// RejectEditorRequest отклонение заявки монтажера
// @Description	Editor application rejection
type RejectEditorRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AvailabilityRequest смена доступности монтажера
// @Description	Editor availability toggle
type AvailabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

// UpdateEditorRequest правка профиля монтажера администратором. Пустые поля не меняются
// @Description	Admin editor profile update
type UpdateEditorRequest struct {
	Bio                   *string   `json:"bio,omitempty"`
	PortfolioURL          *string   `json:"portfolio_url,omitempty"`
	Specializations       *[]string `json:"specializations,omitempty"`
	IsAvailable           *bool     `json:"is_available,omitempty"`
	MaxConcurrentProjects *int32    `json:"max_concurrent_projects,omitempty"`
}

// EditorFilter фильтр списка монтажеров
type EditorFilter struct {
	ApplicationStatus ApplicationStatus
	AvailableOnly     bool
	Limit             int
	Offset            int
}

// NotificationFilter фильтр списка уведомлений
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// UnreadCountResponse число непрочитанных уведомлений
// @Description	Unread notifications count
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// Dashboard сводка для администратора
// @Description	Admin dashboard rollup
type Dashboard struct {
	ProjectsByStatus map[ProjectStatus]int64     `json:"projects_by_status"`
	Revenue          int64                       `json:"revenue"`
	Refunds          int64                       `json:"refunds"`
	PendingPayouts   int64                       `json:"pending_payouts"`
	EditorsByStatus  map[ApplicationStatus]int64 `json:"editors_by_status"`
	GeneratedAt      int64                       `json:"generated_at"`
}

// ReportResponse ссылка на месячный отчет
// @Description	Monthly report download link
type ReportResponse struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}
