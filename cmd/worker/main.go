package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lumiforge/cutroom-backend/internal/config"
	"github.com/lumiforge/cutroom-backend/internal/email"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/lumiforge/cutroom-backend/internal/telegram"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

// Воркер доставки уведомлений из очереди asynq
func main() {
	ctx := context.Background()

	cfg := config.Load()

	tgClient := telegram.NewClient(cfg)
	log := logger.New(tgClient, logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	db, err := ydb.NewYDBClient(ctx, cfg)
	if err != nil {
		slog.Error("Failed to connect to YDB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	worker := notification.NewWorker(db, email.NewClient(cfg), tgClient, log.With("component", "notification-worker"))
	srv := notification.NewServer(cfg)

	slog.Info("Starting notification worker", "redis_addr", cfg.RedisAddr, "concurrency", cfg.WorkerConcurrency)
	if err := srv.Run(worker.Mux()); err != nil {
		slog.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
}
