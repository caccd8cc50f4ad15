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

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
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

	logger.Info("🚀 Starting vacancy swipe bot", "mode", cfg.Mode)
	if err := a.Run(ctx); err != nil {
		logger.Error("❌ Bot stopped with error", "err", err)
		return
	}
	logger.Info("🏁 Bot stopped")
}
