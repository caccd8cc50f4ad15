package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"go-vacancy-swipe/internal/database"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		_ = godotenv.Load("../../.env")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set. Please check your .env file.")
	}

	fmt.Println("Attempting to connect to PostgreSQL and apply migrations...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, dbURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to the database. Error: %v", err)
	}
	defer repo.Close()

	if err := repo.Ping(ctx); err != nil {
		log.Fatalf("❌ Ping failed: %v", err)
	}

	fmt.Println("✅ Connected, schema is up to date")
}
