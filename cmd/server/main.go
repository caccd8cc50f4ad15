package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-vacancy-swipe/internal/app"
	"go-vacancy-swipe/internal/config"
	"go-vacancy-swipe/internal/logging"
)

// Webhook deployment: Telegram pushes updates to POST /webhook/telegram.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	cfg.Mode = config.ModeWebhook
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid webhook config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to start", "err", err)
	}
	defer a.Close()

	logger.Info("Server listening", "port", cfg.Server.Port)
	if err := a.Run(ctx); err != nil {
		logger.Error("❌ Server stopped with error", "err", err)
	}
}
