package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fees-backend/internal/handlers"
	"fees-backend/internal/middleware"
)

func NewRouter(
	invoiceHandler *handlers.InvoiceHandler,
	paymentHandler *handlers.PaymentHandler,
	gatewayHandler *handlers.GatewayHandler,
	defaulterHandler *handlers.DefaulterHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes - no authentication. The checkout status feeds the fee
	// portal's pay button, and the webhook authenticates via its own HMAC.
	r.HandleFunc("/api/checkout/status", gatewayHandler.CheckoutStatus).Methods("GET")
	r.HandleFunc("/api/checkout/webhook", gatewayHandler.Webhook).Methods("POST")

	// Protected API routes - Invoices
	invoicesAPI := r.PathPrefix("/api/invoices").Subrouter()
	invoicesAPI.Use(authMiddleware.Authenticate)
	invoicesAPI.HandleFunc("", invoiceHandler.ListInvoices).Methods("GET")
	invoicesAPI.HandleFunc("", invoiceHandler.CreateInvoice).Methods("POST")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.GetInvoice).Methods("GET")
	invoicesAPI.HandleFunc("/{id}/cancel", invoiceHandler.CancelInvoice).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/payments", invoiceHandler.ListInvoicePayments).Methods("GET")
	invoicesAPI.HandleFunc("/{id}/reminders", defaulterHandler.ReminderHistory).Methods("GET")

	// Protected API routes - Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", paymentHandler.RecordPayment).Methods("POST")
	paymentsAPI.HandleFunc("/{id}", paymentHandler.GetPayment).Methods("GET")
	paymentsAPI.HandleFunc("/{id}/receipt", paymentHandler.DownloadReceipt).Methods("GET")

	// Protected API routes - Online checkout
	checkoutAPI := r.PathPrefix("/api/checkout").Subrouter()
	checkoutAPI.Use(authMiddleware.Authenticate)
	checkoutAPI.HandleFunc("/order", gatewayHandler.CreateOrder).Methods("POST")
	checkoutAPI.HandleFunc("/verify", gatewayHandler.VerifyPayment).Methods("POST")

	// Protected API routes - Defaulters
	defaultersAPI := r.PathPrefix("/api/defaulters").Subrouter()
	defaultersAPI.Use(authMiddleware.Authenticate)
	defaultersAPI.HandleFunc("", defaulterHandler.ListDefaulters).Methods("GET")
	defaultersAPI.HandleFunc("/process", defaulterHandler.ProcessDefaulters).Methods("POST")
	defaultersAPI.HandleFunc("/last-run", defaulterHandler.LastRun).Methods("GET")
	defaultersAPI.HandleFunc("/report", defaulterHandler.DownloadReport).Methods("GET")

	// Health endpoint (no auth required - for Kubernetes probes)
	r.HandleFunc("/healthz", healthHandler.Health).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
