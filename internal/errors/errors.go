package errors

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку для вызывающей стороны
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindInvalidState  Kind = "invalid_state"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindValidation    Kind = "validation_error"
	KindConflict      Kind = "conflict"
	KindUnauthorized  Kind = "unauthorized"
	KindInternal      Kind = "internal"
)

// AppError ошибка бизнес-логики с типом и сообщением для пользователя
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать sentinel-ошибки по типу и сообщению
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New создает ошибку указанного типа
func New(kind Kind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap оборачивает ошибку инфраструктуры с указанным типом
func Wrap(kind Kind, err error, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(format string, args ...interface{}) *AppError {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *AppError {
	return New(KindForbidden, format, args...)
}

func InvalidState(format string, args ...interface{}) *AppError {
	return New(KindInvalidState, format, args...)
}

func QuotaExceeded(format string, args ...interface{}) *AppError {
	return New(KindQuotaExceeded, format, args...)
}

func Validation(format string, args ...interface{}) *AppError {
	return New(KindValidation, format, args...)
}

func Conflict(format string, args ...interface{}) *AppError {
	return New(KindConflict, format, args...)
}

func Unauthorized(format string, args ...interface{}) *AppError {
	return New(KindUnauthorized, format, args...)
}

// KindOf возвращает тип ошибки; для неклассифицированных ошибок KindInternal
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is проверяет, что ошибка относится к указанному типу
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message возвращает сообщение для пользователя
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
