package validation

import (
	"regexp"
	"strings"
)

// xssMarkers подстроки, после которых текст из брифа или отзыва нельзя
// безопасно показать в письме или кабинете
var xssMarkers = []string{
	"<script", "</script>", "javascript:", "vbscript:",
	"<iframe", "<object", "<embed", "<svg", "<img",
	"document.cookie", "document.write", "window.location",
}

var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)<[a-z][^>]*\son\w+\s*=`),
	regexp.MustCompile(`(?i)(eval|expression)\s*\(`),
	regexp.MustCompile(`(?i)<style[^>]*>.*?</style>`),
	regexp.MustCompile(`(?i)<(form|link|meta)[^>]*>`),
	regexp.MustCompile(`(?i)(alert|confirm|prompt)\s*\(`),
}

// ContainsXSS проверяет наличие XSS-атак в строке
func ContainsXSS(input string) bool {
	if input == "" {
		return false
	}

	lower := strings.ToLower(input)
	for _, marker := range xssMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, re := range xssPatterns {
		if re.MatchString(input) {
			return true
		}
	}
	return false
}

// ValidateXSS выполняет валидацию XSS и возвращает ошибку
func ValidateXSS(input string, fieldName string) error {
	if ContainsXSS(input) {
		return ValidationError{
			Field:   fieldName,
			Message: "contains potentially dangerous content (XSS)",
		}
	}
	return nil
}
