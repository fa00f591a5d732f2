package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// S3/Storage configuration
	S3Endpoint              string
	AWSAccessKeyID          string
	AWSSecretAccessKey      string
	CRObjStoreBucket        string
	CRObjStoreReportsBucket string

	// YDB configuration
	CRYDBEndpoint         string
	CRYDBDatabasePath     string
	CRYDBAutoCreateTables int

	// Telegram configuration
	TelegramBotToken    string
	TelegramAdminChatID string

	// JWT configuration
	JWTSecretKey string

	// Первичный администратор
	AdminEmail    string
	AdminPassword string

	// Email/Postbox configuration
	SESEndpoint        string
	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
	EmailFrom          string
	AppURL             string

	// Очередь уведомлений
	RedisAddr          string
	RedisPassword      string
	WorkerConcurrency  int
	NotificationsAsync bool

	// Политики маркетплейса
	PackageCatalogFile    string
	EditorFeePercent      int
	AdvancePercent        int
	DueSoonDays           int
	DefaultEditorCapacity int
	RazorpayKeySecret     string
	StripeWebhookSecret   string
	CORSAllowedOrigins    []string
	LogLevel              string

	// HTTP configuration
	HTTPPort string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	s3Endpoint := getEnv("S3_ENDPOINT", "https://storage.yandexcloud.net")
	if s3Endpoint == "" {
		s3Endpoint = "https://storage.yandexcloud.net"
	}
	if !strings.HasPrefix(s3Endpoint, "http://") && !strings.HasPrefix(s3Endpoint, "https://") {
		s3Endpoint = "https://" + s3Endpoint
		log.Printf("WARN: S3_ENDPOINT was missing a protocol scheme. Prepending 'https://'. New endpoint: %s", s3Endpoint)
	}

	return &Config{
		S3Endpoint:              s3Endpoint,
		AWSAccessKeyID:          getEnv("CR_SA_KEY_ID", ""),
		AWSSecretAccessKey:      getEnv("CR_SA_KEY", ""),
		CRObjStoreBucket:        getEnv("CR_OBJSTORE_BUCKET", "cutroom-footage"),
		CRObjStoreReportsBucket: getEnv("CR_OBJSTORE_REPORTS_BUCKET", "cutroom-reports"),

		CRYDBEndpoint:         getEnv("CR_YDB_ENDPOINT", ""),
		CRYDBDatabasePath:     getEnv("CR_YDB_DATABASE_PATH", ""),
		CRYDBAutoCreateTables: getEnvInt("CR_YDB_AUTO_CREATE_TABLES", 0, 0, 1),

		TelegramBotToken:    getOptionalEnv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID: getOptionalEnv("TELEGRAM_CHAT_ID"),

		JWTSecretKey: getEnv("CR_JWT_SECRET_KEY", ""),

		AdminEmail:    getOptionalEnv("CR_ADMIN_EMAIL"),
		AdminPassword: getOptionalEnv("CR_ADMIN_PASSWORD"),

		SESEndpoint:        getOptionalEnv("CR_POSTBOX_ENDPOINT"),
		SESRegion:          getEnv("CR_POSTBOX_REGION", "ru-central1"),
		SESAccessKeyID:     getOptionalEnv("CR_POSTBOX_ACCESS_KEY_ID"),
		SESSecretAccessKey: getOptionalEnv("CR_POSTBOX_SECRET_ACCESS_KEY"),
		EmailFrom:          getOptionalEnv("CR_EMAIL_FROM"),
		AppURL:             getEnv("CR_APP_URL", "https://app.cutroom.io"),

		RedisAddr:          getEnv("CR_REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getOptionalEnv("CR_REDIS_PASSWORD"),
		WorkerConcurrency:  getEnvInt("CR_WORKER_CONCURRENCY", 5, 1, 64),
		NotificationsAsync: getEnvAsBool("CR_NOTIFICATIONS_ASYNC", true),

		PackageCatalogFile:    getEnv("CR_PACKAGE_CATALOG_FILE", "configs/packages.yaml"),
		EditorFeePercent:      getEnvInt("CR_EDITOR_FEE_PERCENT", 70, 0, 100),
		AdvancePercent:        getEnvInt("CR_ADVANCE_PERCENT", 50, 1, 100),
		DueSoonDays:           getEnvInt("CR_DUE_SOON_DAYS", 2, 1, 30),
		DefaultEditorCapacity: getEnvInt("CR_DEFAULT_EDITOR_CAPACITY", 3, 1, 20),
		RazorpayKeySecret:     getOptionalEnv("CR_RAZORPAY_KEY_SECRET"),
		StripeWebhookSecret:   getOptionalEnv("CR_STRIPE_WEBHOOK_SECRET"),
		CORSAllowedOrigins:    getEnvList("CR_CORS_ALLOWED_ORIGINS", []string{"https://app.cutroom.io"}),
		LogLevel:              getEnv("CR_LOG_LEVEL", "info"),

		HTTPPort: getEnv("CR_HTTP_PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if fallback == "" {
		log.Fatalf("FATAL: Environment variable %s is not set.", key)
	}
	return fallback
}

// getOptionalEnv для интеграций, которые отключаются при пустом значении
func getOptionalEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, fallback, min, max int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			if n < min {
				return min
			}
			if n > max {
				return max
			}
			return n
		}
		log.Printf("WARN: %s=%q is not an integer, using default %d", key, v, fallback)
	}

	if fallback < min {
		return min
	}
	if fallback > max {
		return max
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
