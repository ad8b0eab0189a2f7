package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "realty-booking-engine/internal/api/http"
	"realty-booking-engine/internal/clock"
	"realty-booking-engine/internal/config"
	"realty-booking-engine/internal/logger"
	"realty-booking-engine/internal/repository/postgres"
	"realty-booking-engine/internal/security"
	"realty-booking-engine/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Realty Booking Engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	// Initialize Services
	emailService := service.NewEmailService(
		cfg.SMTP.Host,
		fmt.Sprintf("%d", cfg.SMTP.Port),
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	clk := clock.System()
	locks := service.NewLockTable()

	bookingService := service.NewBookingService(
		store.AppointmentRepository,
		store.ListingRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailService,
		clk,
		locks,
	)

	paymentService := service.NewPaymentService(
		store.PaymentRepository,
		store.AppointmentRepository,
		store.UserRepository,
		emailService,
		clk,
		locks,
	)

	refundService := service.NewRefundService(
		store.RefundRequestRepository,
		store.PaymentRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailService,
		clk,
		locks,
	)

	authService := service.NewAuthService(store.UserRepository, tokenManager)
	notificationService := service.NewNotificationService(store.NotificationRepository)

	// Initialize HTTP handlers and router
	handlers := httpapi.Handlers{
		Auth:         httpapi.NewAuthHandler(authService),
		Booking:      httpapi.NewBookingHandler(bookingService, clk),
		Payment:      httpapi.NewPaymentHandler(paymentService),
		Refund:       httpapi.NewRefundHandler(refundService),
		Notification: httpapi.NewNotificationHandler(notificationService),
	}
	router := httpapi.NewRouter(handlers, tokenManager, db)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server stopped", "error", err)
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
