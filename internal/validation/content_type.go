package validation

import (
	"mime"
	"path/filepath"
	"strings"
)

// VideoContentTypes контейнеры, принимаемые для исходников и черновиков
var VideoContentTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
	"video/x-msvideo":  true,
	"video/x-m4v":      true,
}

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
}

// NormalizeContentType нижний регистр без параметров после ';'
func NormalizeContentType(contentType string) string {
	main, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(main))
}

// IsVideoContentType проверяет, является ли Content-Type поддерживаемым видео
func IsVideoContentType(contentType string) bool {
	return VideoContentTypes[NormalizeContentType(contentType)]
}

// ValidateVideoContentType выполняет валидацию Content-Type видео и возвращает ошибку
func ValidateVideoContentType(contentType string, fieldName string) error {
	if !IsVideoContentType(contentType) {
		return ValidationError{
			Field:   fieldName,
			Message: "is not a supported video type",
		}
	}
	return nil
}

// GetContentTypeFromExtension определяет Content-Type по расширению файла
func GetContentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}
	if ct, ok := videoExtensions[ext]; ok {
		return ct
	}
	return NormalizeContentType(mime.TypeByExtension(ext))
}
