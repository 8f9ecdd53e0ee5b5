package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alexmabud/flowdash-backend/internal/api"
	"github.com/alexmabud/flowdash-backend/internal/config"
	"github.com/alexmabud/flowdash-backend/internal/database"
	"github.com/alexmabud/flowdash-backend/internal/repository"
	"github.com/alexmabud/flowdash-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Run schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	obligationRepo := repository.NewObligationRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	bankBalanceRepo := repository.NewBankBalanceRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	obligationService := service.NewObligationService(db, obligationRepo, movementRepo)
	settlementService := service.NewSettlementService(db, obligationRepo, movementRepo, snapshotRepo, bankBalanceRepo)
	treasuryService := service.NewTreasuryService(db, snapshotRepo, bankBalanceRepo, movementRepo)
	movementService := service.NewMovementService(movementRepo)
	maintenanceService := service.NewMaintenanceService(obligationRepo)

	// Roll the cash snapshot forward daily
	var scheduler *cron.Cron
	if cfg.Snapshot.CronSpec != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Snapshot.CronSpec, func() {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			if _, err := treasuryService.EnsureSnapshot(context.Background(), today); err != nil {
				log.Printf("Failed to roll snapshot forward: %v", err)
			}
		}); err != nil {
			log.Fatalf("Failed to schedule snapshot job: %v", err)
		}
		scheduler.Start()
	}

	// Create router
	router := api.NewRouter(systemService, obligationService, settlementService, treasuryService, movementService, maintenanceService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
