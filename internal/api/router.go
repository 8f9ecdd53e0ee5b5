package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alexmabud/flowdash-backend/internal/api/handlers"
	custommiddleware "github.com/alexmabud/flowdash-backend/internal/api/middleware"
	"github.com/alexmabud/flowdash-backend/internal/config"
	"github.com/alexmabud/flowdash-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	obligationService *service.ObligationService,
	settlementService *service.SettlementService,
	treasuryService *service.TreasuryService,
	movementService *service.MovementService,
	maintenanceService *service.MaintenanceService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(custommiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/obligation", func(r chi.Router) {
			obligationHandler := handlers.NewObligationHandler(obligationService)
			r.Post("/boleto", obligationHandler.ScheduleBoleto)
			r.Post("/loan", obligationHandler.ScheduleLoan)
			r.Post("/card-purchase", obligationHandler.CardPurchase)
			r.Post("/adjustment", obligationHandler.Adjustment)
			r.Get("/open", obligationHandler.ListOpen)
		})

		r.Route("/settlement", func(r chi.Router) {
			settlementHandler := handlers.NewSettlementHandler(settlementService)
			r.Post("/payment", settlementHandler.ApplyPayment)
		})

		r.Route("/treasury", func(r chi.Router) {
			treasuryHandler := handlers.NewTreasuryHandler(treasuryService)
			r.Post("/secondary-transfer", treasuryHandler.SecondaryTransfer)
			r.Post("/deposit", treasuryHandler.Deposit)
			r.Post("/bank-transfer", treasuryHandler.BankTransfer)
			r.Get("/snapshot", treasuryHandler.Snapshot)
			r.Get("/bank-balances", treasuryHandler.BankBalances)
		})

		r.Route("/movement", func(r chi.Router) {
			movementHandler := handlers.NewMovementHandler(movementService)
			r.Get("/", movementHandler.List)
		})

		r.Route("/maintenance", func(r chi.Router) {
			maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
			r.Post("/recompute-statuses", maintenanceHandler.RecomputeStatuses)
		})
	})

	return r
}
