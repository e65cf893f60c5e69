package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_bot/internal/bot"
	"todo_bot/internal/config"
	"todo_bot/internal/db"
	opshttp "todo_bot/internal/http"
	"todo_bot/internal/logger"
	"todo_bot/internal/ratelimit"
	"todo_bot/internal/repository"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	provider := db.NewProvider(cfg.DatabaseURL, cfg.DBConnectRetries, cfg.DBConnectDelay)
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := provider.InitSchema(ctx); err != nil {
		logger.Warn("could not ensure tasks table, operations may fail", "error", err)
	}
	cancel()

	limiter := ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		cfg.RateLimit, cfg.RateWindow)

	tasks := repository.NewTaskRepository(provider)

	b, err := bot.New(cfg.BotToken, tasks, limiter)
	if err != nil {
		logger.Fatal("creating bot", "error", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: opshttp.NewRouter(provider),
	}
	go func() {
		logger.Info("ops server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ops server", "error", err)
		}
	}()

	go b.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	b.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown", "error", err)
	}

	logger.Info("bye")
}
