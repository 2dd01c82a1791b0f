package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"yieldvault/api"
	"yieldvault/config"
	"yieldvault/database"
	"yieldvault/events"
	"yieldvault/repository"
	"yieldvault/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting yieldvault...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	settlementProcessor := service.NewSettlementProcessor(uowFactory)
	accrualProcessor := service.NewAccrualProcessor(uowFactory)
	reconciler := service.NewStatusReconciler(uowFactory, settlementProcessor)
	settingsService := service.NewSettingsService(uowFactory)

	// Initialize HTTP server
	server := api.NewServer(accrualProcessor, settlementProcessor, reconciler, settingsService, uowFactory)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Printf("Server is running in %s mode...", cfg.Environment)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
