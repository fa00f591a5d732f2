package lifecycle

import (
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
)

// Action действие, переводящее проект по ребру графа статусов
type Action string

const (
	ActionAssign          Action = "assign"
	ActionStart           Action = "start"
	ActionSubmitDraft     Action = "submit_draft"
	ActionRequestRevision Action = "request_revision"
	ActionMarkFinal       Action = "mark_final"
	ActionCancel          Action = "cancel"
)

// transitions единственная таблица допустимых переходов: from -> to -> action.
// Отмена добавляется для всех нетерминальных статусов в init.
var transitions = map[models.ProjectStatus]map[models.ProjectStatus]Action{
	models.StatusPendingAssignment: {
		models.StatusAssigned: ActionAssign,
	},
	models.StatusAssigned: {
		models.StatusInProgress: ActionStart,
	},
	models.StatusInProgress: {
		models.StatusReadyForReview: ActionSubmitDraft,
	},
	models.StatusReadyForReview: {
		models.StatusRevisionRequested: ActionRequestRevision,
		models.StatusCompleted:         ActionMarkFinal,
	},
	models.StatusRevisionRequested: {
		models.StatusReadyForReview: ActionSubmitDraft,
	},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// actionRoles кто может инициировать действие. Проверка владения проектом делается в сервисе
var actionRoles = map[Action][]models.Role{
	ActionAssign:          {models.RoleAdmin},
	ActionStart:           {models.RoleEditor, models.RoleAdmin},
	ActionSubmitDraft:     {models.RoleEditor},
	ActionRequestRevision: {models.RoleCustomer},
	ActionMarkFinal:       {models.RoleEditor, models.RoleAdmin},
	ActionCancel:          {models.RoleAdmin},
}

// dedicated действия, которые нельзя выполнить через общий UpdateStatus:
// им нужны данные (монтажер, файл, комментарий), которых нет в запросе смены статуса
var dedicated = map[Action]bool{
	ActionAssign:          true,
	ActionSubmitDraft:     true,
	ActionRequestRevision: true,
}

func init() {
	for from, edges := range transitions {
		if !from.Terminal() {
			edges[models.StatusCancelled] = ActionCancel
		}
	}
}

// Transition возвращает действие для перехода from -> to или InvalidState
func Transition(from, to models.ProjectStatus) (Action, error) {
	if !to.Valid() {
		return "", app_errors.Validation("unknown project status %q", to)
	}
	edges, ok := transitions[from]
	if !ok {
		return "", app_errors.InvalidState("project is in unknown status %q", from)
	}
	action, ok := edges[to]
	if !ok {
		return "", app_errors.InvalidState("transition from %s to %s is not allowed", from, to)
	}
	return action, nil
}

// Next возвращает статус, в который переводит действие из from
func Next(from models.ProjectStatus, action Action) (models.ProjectStatus, error) {
	for to, a := range transitions[from] {
		if a == action {
			return to, nil
		}
	}
	return "", app_errors.InvalidState("%s is not allowed while project is %s", action, from)
}

// Can проверяет, что действие допустимо из статуса from
func Can(from models.ProjectStatus, action Action) bool {
	_, err := Next(from, action)
	return err == nil
}

// Allowed проверяет, разрешено ли роли выполнять действие
func Allowed(role models.Role, action Action) bool {
	for _, r := range actionRoles[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize проверяет переход для общего UpdateStatus: ребро графа, роль и то,
// что действие не требует отдельной операции
func Authorize(role models.Role, from, to models.ProjectStatus) (Action, error) {
	if role == models.RoleCustomer {
		return "", app_errors.Forbidden("customers cannot change project status directly")
	}
	action, err := Transition(from, to)
	if err != nil {
		return "", err
	}
	if !Allowed(role, action) {
		return "", app_errors.Forbidden("role %s cannot perform %s", role, action)
	}
	if dedicated[action] {
		return "", app_errors.InvalidState("%s must go through its dedicated operation", action)
	}
	return action, nil
}

// ValidWalk проверяет, что последовательность статусов проходит по ребрам графа
func ValidWalk(seq []models.ProjectStatus) bool {
	for i := 1; i < len(seq); i++ {
		if _, err := Transition(seq[i-1], seq[i]); err != nil {
			return false
		}
	}
	return true
}
