package validation

import (
	"regexp"
	"strings"
)

// EmailRegex содержит регулярное выражение для валидации email
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail проверяет валидность email адреса
func IsValidEmail(email string) bool {
	if email == "" || len(email) > 254 || !EmailRegex.MatchString(email) {
		return false
	}

	local, domain, _ := strings.Cut(strings.ToLower(email), "@")
	if len(local) > 64 || len(domain) > 253 {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	if strings.HasPrefix(domain, "-") || strings.HasPrefix(domain, ".") || strings.Contains(domain, "..") {
		return false
	}
	return true
}

// ValidateEmail выполняет валидацию email и возвращает ошибку
func ValidateEmail(email string, fieldName string) error {
	if !IsValidEmail(email) {
		return ValidationError{
			Field:   fieldName,
			Message: "is not a valid email address",
		}
	}
	return nil
}
