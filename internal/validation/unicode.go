package validation

import (
	"strings"
	"unicode"
)

// isDangerousUnicode управляющие символы, переопределение направления текста,
// символы нулевой ширины, селекторы вариантов, BOM
func isDangerousUnicode(r rune) bool {
	switch {
	case unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t':
		return true
	case r >= 0x202A && r <= 0x202E, r >= 0x2066 && r <= 0x2069:
		return true
	case r >= 0x200B && r <= 0x200F:
		return true
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xFFF9 && r <= 0xFFFB:
		return true
	case r == 0xFEFF:
		return true
	}
	return false
}

// ContainsUnicodeAttack проверяет наличие Unicode-атак в строке
func ContainsUnicodeAttack(input string) bool {
	for _, r := range input {
		if isDangerousUnicode(r) {
			return true
		}
	}
	return hasMixedLatinCyrillicWords(input)
}

// ValidateUnicodeSecurity выполняет валидацию Unicode-атак и возвращает ошибку
func ValidateUnicodeSecurity(input string, fieldName string) error {
	if ContainsUnicodeAttack(input) {
		return ValidationError{
			Field:   fieldName,
			Message: "contains potentially dangerous Unicode characters",
		}
	}
	return nil
}

// SanitizeUnicode очищает строку от опасных Unicode-символов
func SanitizeUnicode(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !isDangerousUnicode(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hasMixedLatinCyrillicWords гомограф: слово из латиницы с кириллическими двойниками букв.
// Кириллица и латиница в разных словах допустимы
func hasMixedLatinCyrillicWords(input string) bool {
	for _, word := range strings.Fields(input) {
		var latin, homograph bool
		for _, r := range word {
			if unicode.Is(unicode.Latin, r) {
				latin = true
			}
			if unicode.Is(unicode.Cyrillic, r) && strings.ContainsRune("аАсСеЕоОрРхХуУіІјЈӏ", r) {
				homograph = true
			}
		}
		if latin && homograph {
			return true
		}
	}
	return false
}
