package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"fees-backend/internal/auth"
	"fees-backend/internal/cache"
	"fees-backend/internal/config"
	"fees-backend/internal/database"
	"fees-backend/internal/db"
	"fees-backend/internal/handlers"
	"fees-backend/internal/health"
	h "fees-backend/internal/http"
	"fees-backend/internal/middleware"
	"fees-backend/internal/notify"
	"fees-backend/internal/repositories"
	"fees-backend/internal/services"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password); err != nil {
		log.Printf("[Cache] redis unavailable, continuing without cache: %v", err)
	}

	// Repositories
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool, invoiceRepo)
	orderRepo := repositories.NewPaymentOrderRepository(pool)
	notificationLogRepo := repositories.NewNotificationLogRepository(pool)
	studentRepo := repositories.NewStudentRepository(pool)

	// Guardian messaging providers
	smsProvider := notify.NewFast2SMSProvider(cfg.SMS.APIKey, cfg.SMS.Route, cfg.SMS.SenderID)
	whatsappProvider := notify.NewAiSensyProvider(cfg.WhatsApp.APIKey, cfg.WhatsApp.CampaignName)
	sender := notify.NewService(smsProvider, whatsappProvider)

	// Services
	invoiceService := services.NewInvoiceService(invoiceRepo)
	paymentService := services.NewPaymentService(paymentRepo, invoiceRepo)
	receiptService := services.NewReceiptService(paymentRepo, invoiceRepo, studentRepo)

	gatewayCfg := services.GatewayConfig{
		Enabled:          cfg.Gateway.Enabled,
		Provider:         cfg.Gateway.Provider,
		KeyID:            cfg.Gateway.KeyID,
		KeySecret:        cfg.Gateway.KeySecret,
		WebhookSecret:    cfg.Gateway.WebhookSecret,
		Currency:         cfg.Gateway.Currency,
		SkipVerification: cfg.Gateway.SkipVerification,
	}
	gatewayClient := services.NewRazorpayGateway(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	gatewayService := services.NewGatewayService(gatewayCfg, gatewayClient, orderRepo, paymentRepo, invoiceRepo)

	escalationService := services.NewEscalationService(invoiceRepo, notificationLogRepo, studentRepo, sender, cache.NewRuns())

	// Middleware and handlers
	jwtManager := auth.NewJWTManager(cfg)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	corsMiddleware := middleware.NewCORS(cfg)
	healthChecker := health.NewChecker(pool)

	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, paymentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, receiptService)
	gatewayHandler := handlers.NewGatewayHandler(gatewayService)
	defaulterHandler := handlers.NewDefaulterHandler(escalationService, receiptService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		invoiceHandler,
		paymentHandler,
		gatewayHandler,
		defaulterHandler,
		healthHandler,
		authMiddleware,
	)

	if cfg.Escalation.SchedulerEnabled {
		services.StartScheduler(escalationService, gatewayService, cfg.Escalation.Tenants, cfg.Escalation.RunHour)
	}

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.APILogging(
				corsMiddleware(router))))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Fee billing engine listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
