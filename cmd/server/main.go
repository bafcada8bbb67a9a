// cmd/server/main.go
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"querygate/api"
	"querygate/api/handlers"
	"querygate/config"
	"querygate/internal/logger"
	"querygate/internal/pagination"
	"querygate/internal/storage"
)

var customLog = logger.NewLogger()

func main() {
	customLog.Println("Starting querygate server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	settings, err := config.LoadSettings(filepath.Join(cfg.ConfigDir, "settings.yaml"))
	if err != nil {
		customLog.Fatalf("Failed to load settings: %v", err)
		os.Exit(1)
	}

	protector, err := config.NewProtector([]byte(cfg.TokenSecret))
	if err != nil {
		customLog.Fatalf("Failed to initialize secrets protector: %v", err)
		os.Exit(1)
	}

	store := config.NewStore(cfg.ConfigDir)
	snapshot, err := store.LoadSnapshot(settings, protector)
	if err != nil {
		customLog.Fatalf("Failed to load configuration snapshot: %v", err)
		os.Exit(1)
	}

	// 2. Validate: schema mismatches are fatal at startup.
	if err := config.ValidateStartup(settings, snapshot); err != nil {
		customLog.Fatalf("Startup validation failed: %v", err)
		os.Exit(1)
	}

	// 3. Initialize the backing store connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := storage.Connect(ctx, settings.Database.Driver, settings.Database.DSN)
	if err != nil {
		customLog.Fatalf("Failed to connect to data source: %v", err)
		os.Exit(1)
	}
	defer func() {
		customLog.Println("Closing data source connection...")
		if err := db.Close(); err != nil {
			customLog.Printf("Error closing data source: %v", err)
		}
	}()

	executor := storage.NewExecutor(db, settings.Database.CommandTimeout())
	codec, err := pagination.NewTokenCodec([]byte(cfg.TokenSecret))
	if err != nil {
		customLog.Fatalf("Failed to initialize token codec: %v", err)
		os.Exit(1)
	}

	// 4. Setup Router (passing dependencies)
	handler := handlers.NewQueryHandler(snapshot, executor, codec, settings.Service.ValidateRows)
	router := api.SetupRouter(settings, snapshot, handler)

	// 5. Start Server
	customLog.Printf("Server listening on %s", settings.Service.ListenAddr)
	if err := router.Run(settings.Service.ListenAddr); err != nil {
		customLog.Fatalf("Failed to start server: %v", err)
	}
}
