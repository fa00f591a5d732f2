package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lumiforge/cutroom-backend/internal/audit"
	"github.com/lumiforge/cutroom-backend/internal/auth"
	"github.com/lumiforge/cutroom-backend/internal/catalog"
	"github.com/lumiforge/cutroom-backend/internal/config"
	"github.com/lumiforge/cutroom-backend/internal/editor"
	"github.com/lumiforge/cutroom-backend/internal/email"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/gateway"
	httpserver "github.com/lumiforge/cutroom-backend/internal/http"
	"github.com/lumiforge/cutroom-backend/internal/jwt"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/message"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/payment"
	"github.com/lumiforge/cutroom-backend/internal/payout"
	"github.com/lumiforge/cutroom-backend/internal/project"
	"github.com/lumiforge/cutroom-backend/internal/rbac"
	"github.com/lumiforge/cutroom-backend/internal/report"
	"github.com/lumiforge/cutroom-backend/internal/storage"
	"github.com/lumiforge/cutroom-backend/internal/telegram"
	"github.com/lumiforge/cutroom-backend/internal/upload"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Initialize настраивает все зависимости и возвращает готовый HTTP роутер
func Initialize(ctx context.Context) (http.Handler, error) {
	// Загрузка конфигурации
	cfg := config.Load()

	// Инициализация Telegram клиента и логгера
	tgClient := telegram.NewClient(cfg)
	log := logger.New(tgClient, logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	// Инициализация YDB
	db, err := ydb.NewYDBClient(ctx, cfg)
	if err != nil {
		slog.Error("YDB connection failed", "error", err)
		return nil, app_errors.ErrFailedToConnectYDB
	}

	// Инициализация JWT менеджера
	jwtManager := jwt.NewJWTManager(cfg)
	if jwtManager == nil {
		return nil, app_errors.ErrJWTSecretKeyNotConfigured
	}

	rbacManager := rbac.NewRBAC()
	emailClient := email.NewClient(cfg)

	// Инициализация S3 клиента
	storageClient, err := storage.NewClient(ctx, cfg)
	if err != nil {
		slog.Error("Storage client init failed", "error", err)
		return nil, app_errors.ErrFailedToInitStorageClient
	}

	// Доставка уведомлений: через asynq, если включена, иначе сразу в процессе запроса
	var delivery notification.Enqueuer
	if cfg.NotificationsAsync && cfg.RedisAddr != "" {
		delivery = notification.NewQueue(cfg)
		slog.Info("Notification delivery via queue", "redis_addr", cfg.RedisAddr)
	} else {
		delivery = notification.NewWorker(db, emailClient, tgClient, log)
		slog.Info("Notification delivery inline")
	}
	notificationService := notification.NewService(db, delivery)

	// Инициализация сервисов
	auditService := audit.NewService(db)
	catalogService := catalog.NewService(db, cfg)
	authService := auth.NewService(db, jwtManager, rbacManager, emailClient, auditService, notificationService, cfg)

	if err := seedCatalog(ctx, catalogService, cfg); err != nil {
		return nil, err
	}
	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		slog.Error("Admin provisioning failed", "error", err)
		return nil, err
	}

	server := httpserver.NewServer(httpserver.Services{
		Auth:          authService,
		Projects:      project.NewService(db, catalogService, notificationService, auditService, storageClient, cfg),
		Payments:      payment.NewService(db, catalogService, gateway.NewSignatures(cfg), notificationService, auditService),
		Payouts:       payout.NewService(db, notificationService, auditService),
		Editors:       editor.NewService(db, notificationService, auditService),
		Catalog:       catalogService,
		Notifications: notificationService,
		Messages:      message.NewService(db, notificationService, auditService),
		Uploads:       upload.NewService(db, storageClient),
		Reports:       report.NewService(db, storageClient, auditService),
		Audit:         auditService,
	})

	router := httpserver.SetupRouter(server, jwtManager, rbacManager, cfg.CORSAllowedOrigins)

	slog.Info("Application initialized successfully")
	return router, nil
}

// seedCatalog заполняет пустой каталог пакетов из файла или значениями по умолчанию
func seedCatalog(ctx context.Context, catalogService *catalog.Service, cfg *config.Config) error {
	existing, err := catalogService.List(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	n, err := catalogService.SeedFromFile(ctx, cfg.PackageCatalogFile)
	if err != nil {
		slog.Error("Package catalog seed failed", "file", cfg.PackageCatalogFile, "error", err)
		return err
	}
	slog.Info("Package catalog seeded", "packages", n)
	return nil
}
