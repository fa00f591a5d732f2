package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/lumiforge/cutroom-backend/internal/bootstrap"
	"github.com/lumiforge/cutroom-backend/internal/config"

	_ "github.com/lumiforge/cutroom-backend/docs"
)

// @title			Cutroom API
// @version		1.0
// @description	Marketplace API connecting customers with video editors: projects, revisions, payments and payouts
// @termsOfService	https://cutroom.io/terms

// @contact.name	Cutroom Support
// @contact.email	support@cutroom.io

// @host		localhost:8080
// @BasePath	/api/v1

// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description					Bearer token for authentication

var (
	apiHandler http.Handler
	initOnce   sync.Once
	initErr    error
)

// getHandler обеспечивает ленивую инициализацию приложения (Singleton)
func getHandler(ctx context.Context) (http.Handler, error) {
	initOnce.Do(func() {
		apiHandler, initErr = bootstrap.Initialize(ctx)
	})
	return apiHandler, initErr
}

// EntryPoint - точка входа для Yandex Cloud Functions (HttpTrigger)
func EntryPoint(w http.ResponseWriter, r *http.Request) {
	handler, err := getHandler(r.Context())
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		http.Error(w, "Internal Server Error: Initialization failed", http.StatusInternalServerError)
		return
	}
	handler.ServeHTTP(w, r)
}

// main - точка входа для локального запуска
func main() {
	ctx := context.Background()

	handler, err := getHandler(ctx)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize application: %v", err)
	}

	// конфиг уже загружен внутри bootstrap, здесь нужен только порт
	cfg := config.Load()
	port := cfg.HTTPPort
	if port == "" {
		port = "8080"
	}

	slog.Info("Starting server", "port", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
