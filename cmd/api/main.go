package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/bakehouse/bakehouse-backend/internal/modules/auth"
	"github.com/bakehouse/bakehouse-backend/internal/modules/harvest"
	"github.com/bakehouse/bakehouse-backend/internal/modules/inventory"
	"github.com/bakehouse/bakehouse-backend/internal/modules/invoice"
	"github.com/bakehouse/bakehouse-backend/internal/modules/notification"
	"github.com/bakehouse/bakehouse-backend/internal/modules/order"
	"github.com/bakehouse/bakehouse-backend/internal/modules/settings"
	"github.com/bakehouse/bakehouse-backend/internal/modules/sweep"
	"github.com/bakehouse/bakehouse-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	jwtKey := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtKey) == 0 {
		log.Fatal("JWT_SECRET is required")
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Phase 1: Identity ───────────────────────────────────
	mw := auth.NewMiddleware(jwtKey)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService, mw.Authenticate, mw.RequireAdmin).RegisterRoutes(router)

	authService := auth.NewService(userRepo, jwtKey)
	auth.NewHandler(authService, mw).RegisterRoutes(router)

	// ── Phase 2: Settings & Inventory ───────────────────────
	settingsRepo := settings.NewPostgresRepository(db)
	settingsService := settings.NewService(settingsRepo)
	settings.NewHandler(settingsService, mw).RegisterRoutes(router)

	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo)
	inventory.NewHandler(inventoryService, mw).RegisterRoutes(router)

	// ── Phase 3: Notifications ──────────────────────────────
	notificationRepo := notification.NewPostgresRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notification.NewHandler(notificationService, mw).RegisterRoutes(router)
	notifier := notification.NewTrigger(notificationService, logger)

	// ── Phase 4: Order Management ───────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, notifier, logger)
	order.NewHandler(orderService, mw).RegisterRoutes(router)

	// ── Phase 5: Overdue Sweeps ─────────────────────────────
	sweepService := sweep.NewService(orderRepo, settingsService, logger)
	sweep.NewHandler(sweepService, mw).RegisterRoutes(router)

	// ── Phase 6: Invoices ───────────────────────────────────
	invoiceRepo := invoice.NewPostgresRepository(db)
	invoiceService := invoice.NewService(invoiceRepo)
	invoice.NewHandler(invoiceService, mw).RegisterRoutes(router)

	// ── Phase 7: Email Harvesting ───────────────────────────
	mailSource := harvest.NewGmailSource(os.Getenv("GMAIL_ACCESS_TOKEN"))
	harvestRepo := harvest.NewPostgresRepository(db)
	harvestService := harvest.NewService(mailSource, orderService, invoiceService, harvestRepo, logger)
	harvest.NewHandler(harvestService, mw).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Bakehouse API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
