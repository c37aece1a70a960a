// server/cmd/api/main.go
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"food-rescue-api-server/config"
	"food-rescue-api-server/internal/api/routes"
	"food-rescue-api-server/internal/auth"
	"food-rescue-api-server/internal/database"
	"food-rescue-api-server/internal/geocode"
	"food-rescue-api-server/internal/notify"
	"food-rescue-api-server/internal/s3"
	"food-rescue-api-server/internal/socket"
	"food-rescue-api-server/internal/store"
)

func main() {
	// .env is optional; config falls back to config.yaml plus env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	auth.SetSecret(cfg.JWT.Secret)

	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	st := store.NewMongo(db)
	hub := socket.NewHub()
	notifier := notify.New(cfg.Notify.EmailWebhookURL, hub)

	var uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	} else {
		log.Println("S3 bucket not configured, photo upload disabled")
	}

	var geocoder *geocode.Client
	if cfg.Geocode.BaseURL != "" {
		geocoder = geocode.New(cfg.Geocode.BaseURL)
	}

	router := routes.SetupRouter(st, hub, uploader, geocoder, notifier)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
