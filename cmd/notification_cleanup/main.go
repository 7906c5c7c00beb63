package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"hrdesk/internal/config"
	"hrdesk/internal/database"
	"hrdesk/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv_load_failed error=%q", err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-cfg.NotificationRetention)
	deleted, err := repository.NewNotificationRepository(db).DeleteReadBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("cleanup notifications failed: %v", err)
	}

	log.Printf("notification cleanup completed: deleted=%d cutoff=%s", deleted, cutoff.UTC().Format(time.RFC3339))
}
