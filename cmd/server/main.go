package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pawnbook/internal/adapters/http/middleware"
	"pawnbook/internal/adapters/http/routes"
	"pawnbook/internal/adapters/persistence/kv"
	"pawnbook/internal/adapters/persistence/models"
	"pawnbook/internal/adapters/persistence/store"
	"pawnbook/internal/config"
	"pawnbook/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// @title PawnBook API
// @version 1.0
// @description Pawn shop record keeping API: customers, bills, ornaments, accounts and the transaction ledger.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Structured logger
	var logger *zap.Logger
	if cfg.IsDev() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("❌ Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database (operator accounts and sessions)
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the first admin operator
	if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed: %v", err)
	}

	// Open the ledger entity store
	medium, err := openMedium(cfg, logger)
	if err != nil {
		log.Fatalf("❌ Failed to open storage medium: %v", err)
	}

	st, err := store.Open(context.Background(), medium, store.Config{
		Prefix: cfg.Storage.Prefix,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to load ledger collections: %v", err)
	}
	log.Printf("✅ Ledger store loaded [DRIVER: %s]", cfg.Storage.Driver)

	// Image uploads
	media, err := services.NewMediaService(cfg.Cloudinary.URL, cfg.Cloudinary.Folder, logger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize media service: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PawnBook API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, st, media, cfg, logger)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// openMedium builds the configured key-value medium for the entity store.
func openMedium(cfg *config.Config, logger *zap.Logger) (kv.Store, error) {
	if cfg.Storage.Driver == "redis" {
		return kv.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	}
	return kv.NewFileStore(cfg.Storage.DataDir)
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
