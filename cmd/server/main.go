package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/router"
	"github.com/openboard/backend/pkg/config"
	"github.com/openboard/backend/pkg/storage"
	"github.com/openboard/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure database connection is closed when main exits

	// Initialize media storage
	ctx := context.Background()
	uploader, err := storage.InitFirebaseStorage(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	router.SetupRoutes(e, db, uploader, cfg)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
