package validation

import (
	"fmt"
	"strings"
)

const (
	// MaxTitleLength предел названий проектов и пакетов
	MaxTitleLength = 200
	// MaxNoteLength предел описаний, инструкций, отзывов и причин
	MaxNoteLength = 5000
)

// SanitizeText обрезает пробелы, удаляет невидимые символы и проверяет
// длину в рунах, XSS и Unicode-атаки. Пустое значение допустимо, если required=false
func SanitizeText(value, field string, required bool, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if required {
			return "", ValidationError{Field: field, Message: "is required"}
		}
		return "", nil
	}

	sanitized := SanitizeUnicode(trimmed)
	if maxLen > 0 && len([]rune(sanitized)) > maxLen {
		return "", ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", maxLen)}
	}
	if err := ValidateXSS(sanitized, field); err != nil {
		return "", err
	}
	if err := ValidateUnicodeSecurity(sanitized, field); err != nil {
		return "", err
	}
	return sanitized, nil
}

// Title обязательное короткое поле
func Title(value, field string) (string, error) {
	return SanitizeText(value, field, true, MaxTitleLength)
}

// Note необязательный свободный текст
func Note(value, field string) (string, error) {
	return SanitizeText(value, field, false, MaxNoteLength)
}

// RequiredNote обязательный свободный текст: отзыв по правкам, причина отмены или возврата
func RequiredNote(value, field string) (string, error) {
	return SanitizeText(value, field, true, MaxNoteLength)
}
