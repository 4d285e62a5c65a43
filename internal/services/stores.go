package services

import (
	"context"
	"time"

	"fees-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them in production; tests use in-memory fakes.

type InvoiceStore interface {
	Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error)
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, filter *models.InvoiceFilter) ([]*models.Invoice, error)
	Cancel(ctx context.Context, id string) (*models.Invoice, error)
	ApplyPayment(ctx context.Context, invoiceID string, amount int64) (*models.Invoice, error)
	ListDefaulters(ctx context.Context, tenantID string, asOf time.Time) ([]*models.DefaulterRecord, error)
}

type PaymentStore interface {
	GenerateReceiptNumber(ctx context.Context) (string, error)
	CreateCompleted(ctx context.Context, payment *models.Payment) (*models.Invoice, error)
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	SetProviderOrder(ctx context.Context, orderID, providerOrderID string) error
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.PaymentOrder, error)
	MarkCaptured(ctx context.Context, providerOrderID, providerPaymentID, signature string) (*models.PaymentOrder, error)
	MarkFailed(ctx context.Context, providerOrderID, reason string) error
	MarkFailedByID(ctx context.Context, orderID, reason string) error
	LinkPayment(ctx context.Context, orderID, paymentID string) error
	HasCapturedForInvoice(ctx context.Context, invoiceID string) (bool, error)
	ListUnreconciled(ctx context.Context) ([]*models.PaymentOrder, error)
}

type NotificationLogStore interface {
	Create(ctx context.Context, logEntry *models.NotificationLog) error
	ListByInvoice(ctx context.Context, invoiceID string, limit int) ([]*models.NotificationLog, error)
}

// StudentDirectory resolves a student id to the contact slice the engine
// needs. The full student record is another subsystem's concern.
type StudentDirectory interface {
	Get(ctx context.Context, id string) (*models.Student, error)
}
