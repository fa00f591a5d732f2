package validation

import (
	"regexp"
	"strings"
)

// unsafeFilenamePatterns пути, скрытые файлы, символы, запрещенные в Windows,
// исполняемые расширения и зарезервированные имена устройств
var unsafeFilenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[/\\]`),
	regexp.MustCompile(`\.\.`),
	regexp.MustCompile(`^\.`),
	regexp.MustCompile(`\.$`),
	regexp.MustCompile(`^\s|\s$`),
	regexp.MustCompile(`[<>:"|?*]`),
	regexp.MustCompile(`(?i)\.(exe|bat|cmd|com|pif|scr|vbs|js|jar|sh|ps1|php|asp|aspx|jsp|py|rb|pl)$`),
	regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[1-9]|lpt[1-9])(\.[^.]*)?$`),
}

// IsValidFilename проверяет имя загружаемого файла. Кириллица и пробелы внутри имени допустимы
func IsValidFilename(filename string) bool {
	if filename == "" || len(filename) > 255 {
		return false
	}
	for _, re := range unsafeFilenamePatterns {
		if re.MatchString(filename) {
			return false
		}
	}
	return !ContainsUnicodeAttack(filename)
}

// ValidateFilename выполняет валидацию имени файла и возвращает ошибку
func ValidateFilename(filename string, fieldName string) error {
	if !IsValidFilename(filename) {
		return ValidationError{
			Field:   fieldName,
			Message: "is not a valid filename",
		}
	}
	return nil
}

// SanitizeFilename заменяет недопустимые символы подчеркиванием, для Content-Disposition
func SanitizeFilename(filename string) string {
	filename = SanitizeUnicode(strings.TrimSpace(filename))
	filename = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\<>:"|?*`, r) {
			return '_'
		}
		return r
	}, filename)
	for strings.Contains(filename, "..") {
		filename = strings.ReplaceAll(filename, "..", "_")
	}
	filename = strings.Trim(filename, ". ")
	if len(filename) > 255 {
		filename = filename[:255]
	}
	if filename == "" {
		return "file"
	}
	return filename
}
