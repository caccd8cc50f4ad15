package main

import (
	"fmt"
	"log"

	"go-vacancy-swipe/internal/config"
)

func mask(s string) string {
	if len(s) <= 6 {
		return "***"
	}
	return s[:6] + "..."
}

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Telegram Token: %s\n", mask(cfg.TelegramToken))
	fmt.Printf("   Admin ID: %d\n", cfg.AdminID)
	fmt.Printf("   Mode: %s (port %s)\n", cfg.Mode, cfg.Server.Port)
	fmt.Printf("   Groq model: %s, key set: %t\n", cfg.AI.Model, cfg.AI.APIKey != "")
	fmt.Printf("   Max links: %d, request delay: %s\n", cfg.Scraper.MaxLinks, cfg.Scraper.RequestDelay)
	fmt.Printf("   Postgres: %t, Redis: %t\n", cfg.Storage.DatabaseURL != "", cfg.Redis.URL != "")
	fmt.Printf("   Cookies Path: %s\n", cfg.Browser.CookiesPath)
}
