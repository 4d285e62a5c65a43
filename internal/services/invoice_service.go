package services

import (
	"context"
	"fmt"

	"fees-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// InvoiceService is the invoice ledger's front door: invoice lifecycle plus
// the single balance-mutating operation, ApplyPayment.
type InvoiceService struct {
	invoices InvoiceStore
	validate *validator.Validate
}

func NewInvoiceService(invoices InvoiceStore) *InvoiceService {
	return &InvoiceService{
		invoices: invoices,
		validate: validator.New(),
	}
}

func (s *InvoiceService) Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid invoice request: %w", err)
	}
	return s.invoices.Create(ctx, req)
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

func (s *InvoiceService) List(ctx context.Context, filter *models.InvoiceFilter) ([]*models.Invoice, error) {
	return s.invoices.List(ctx, filter)
}

// Cancel is a status transition, never a delete
func (s *InvoiceService) Cancel(ctx context.Context, id string) (*models.Invoice, error) {
	return s.invoices.Cancel(ctx, id)
}

// ApplyPayment mutates the ledger for one invoice. Every payment path,
// manual or gateway, terminates here or in the transactional equivalent.
func (s *InvoiceService) ApplyPayment(ctx context.Context, invoiceID string, amount int64) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	return s.invoices.ApplyPayment(ctx, invoiceID, amount)
}
