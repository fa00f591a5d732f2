package rbac

import (
	"sort"

	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Permission представляет разрешение в системе
type Permission string

const (
	// Проекты
	PermissionProjectCreate     Permission = "project:create"
	PermissionProjectView       Permission = "project:view"
	PermissionProjectAssign     Permission = "project:assign"
	PermissionProjectTransition Permission = "project:transition"
	PermissionProjectDraft      Permission = "project:draft"
	PermissionProjectRevise     Permission = "project:revise"
	PermissionProjectRate       Permission = "project:rate"

	// Загрузки
	PermissionUploadRaw   Permission = "upload:raw"
	PermissionUploadDraft Permission = "upload:draft"

	// Платежи
	PermissionPaymentInitiate Permission = "payment:initiate"
	PermissionPaymentVerify   Permission = "payment:verify"
	PermissionPaymentView     Permission = "payment:view"
	PermissionPaymentRefund   Permission = "payment:refund"

	// Выплаты
	PermissionPayoutView   Permission = "payout:view"
	PermissionPayoutManage Permission = "payout:manage"

	// Монтажеры
	PermissionEditorSelf   Permission = "editor:self"
	PermissionEditorReview Permission = "editor:review"
	PermissionEditorManage Permission = "editor:manage"

	PermissionMessageSend Permission = "message:send"
	PermissionMessageView Permission = "message:view"

	// Пользовательские разрешения
	PermissionUserViewProfile Permission = "user:view_profile"
	PermissionUserEditProfile Permission = "user:edit_profile"
	PermissionUserManage      Permission = "user:manage"

	// Административные разрешения
	PermissionCatalogManage Permission = "catalog:manage"
	PermissionReportView    Permission = "report:view"
	PermissionAdminViewLogs Permission = "admin:view_logs"
)

// Role совпадает с ролью учетной записи
type Role = models.Role

const (
	RoleAdmin    = models.RoleAdmin
	RoleEditor   = models.RoleEditor
	RoleCustomer = models.RoleCustomer
)

// RBAC управляет ролями и разрешениями
type RBAC struct {
	rolePermissions map[Role][]Permission
}

// NewRBAC создает новый RBAC менеджер
func NewRBAC() *RBAC {
	rbac := &RBAC{
		rolePermissions: make(map[Role][]Permission),
	}

	rbac.initializeRolePermissions()

	return rbac
}

// initializeRolePermissions инициализирует разрешения для каждой роли.
// Проверки владения проектом выполняют сервисы, здесь только грубый фильтр маршрутов
func (r *RBAC) initializeRolePermissions() {
	r.rolePermissions[RoleAdmin] = []Permission{
		PermissionProjectView,
		PermissionProjectAssign,
		PermissionProjectTransition,
		PermissionPaymentVerify,
		PermissionPaymentView,
		PermissionPaymentRefund,
		PermissionPayoutView,
		PermissionPayoutManage,
		PermissionEditorReview,
		PermissionEditorManage,
		PermissionMessageView,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
		PermissionCatalogManage,
		PermissionReportView,
		PermissionAdminViewLogs,
		PermissionUserManage,
	}

	r.rolePermissions[RoleEditor] = []Permission{
		PermissionProjectView,
		PermissionProjectTransition,
		PermissionProjectDraft,
		PermissionUploadDraft,
		PermissionPayoutView,
		PermissionEditorSelf,
		PermissionMessageSend,
		PermissionMessageView,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
	}

	r.rolePermissions[RoleCustomer] = []Permission{
		PermissionProjectCreate,
		PermissionProjectView,
		PermissionProjectRevise,
		PermissionProjectRate,
		PermissionUploadRaw,
		PermissionPaymentInitiate,
		PermissionPaymentVerify,
		PermissionPaymentView,
		PermissionMessageSend,
		PermissionMessageView,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
	}
}

// CheckPermissionWithRole проверяет разрешение для указанной роли
func (r *RBAC) CheckPermissionWithRole(role Role, permission Permission) bool {
	return r.hasPermission(role, permission)
}

// Require возвращает Forbidden, если у роли нет разрешения
func (r *RBAC) Require(role Role, permission Permission) error {
	if !r.hasPermission(role, permission) {
		return app_errors.Forbidden("role %s lacks permission %s", role, permission)
	}
	return nil
}

// hasPermission проверяет, имеет ли роль указанное разрешение
func (r *RBAC) hasPermission(role Role, permission Permission) bool {
	permissions, exists := r.rolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// GetRolePermissions возвращает все разрешения для роли
func (r *RBAC) GetRolePermissions(role Role) []Permission {
	permissions, exists := r.rolePermissions[role]
	if !exists {
		return []Permission{}
	}

	result := make([]Permission, len(permissions))
	copy(result, permissions)
	return result
}

// GetAllRoles возвращает все доступные роли
func (r *RBAC) GetAllRoles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleCustomer}
}

// GetAllPermissions возвращает все доступные разрешения в алфавитном порядке
func (r *RBAC) GetAllPermissions() []Permission {
	allPermissions := make(map[Permission]bool)

	for _, permissions := range r.rolePermissions {
		for _, permission := range permissions {
			allPermissions[permission] = true
		}
	}

	result := make([]Permission, 0, len(allPermissions))
	for permission := range allPermissions {
		result = append(result, permission)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	return result
}

// IsValidRole проверяет, является ли роль валидной
func (r *RBAC) IsValidRole(role Role) bool {
	_, exists := r.rolePermissions[role]
	return exists
}

// IsValidPermission проверяет, является ли разрешение валидным
func (r *RBAC) IsValidPermission(permission Permission) bool {
	for _, permissions := range r.rolePermissions {
		for _, p := range permissions {
			if p == permission {
				return true
			}
		}
	}
	return false
}
