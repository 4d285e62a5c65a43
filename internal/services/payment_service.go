package services

import (
	"context"
	"fmt"
	"log"

	"fees-backend/internal/metrics"
	"fees-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// PaymentService records manually received payments (cash, cheque, bank
// transfer, UPI) against invoices.
type PaymentService struct {
	payments PaymentStore
	invoices InvoiceStore
	validate *validator.Validate
}

func NewPaymentService(payments PaymentStore, invoices InvoiceStore) *PaymentService {
	return &PaymentService{
		payments: payments,
		invoices: invoices,
		validate: validator.New(),
	}
}

// RecordPayment validates the invoice, allocates a receipt number and writes
// the payment together with its ledger effect. The store guarantees the
// payment row and the invoice mutation commit together or not at all.
func (s *PaymentService) RecordPayment(ctx context.Context, req *models.RecordPaymentRequest, receivedBy string) (*models.Payment, *models.Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, nil, fmt.Errorf("invalid payment request: %w", err)
	}

	// Fast-fail before allocating a receipt number. The transactional apply
	// re-checks under the row lock, so a race here only costs a number.
	inv, err := s.invoices.GetByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv.IsClosed() {
		return nil, nil, models.ErrInvoiceClosed
	}

	receiptNumber, err := s.payments.GenerateReceiptNumber(ctx)
	if err != nil {
		return nil, nil, err
	}

	payment := &models.Payment{
		ReceiptNumber:  receiptNumber,
		InvoiceID:      req.InvoiceID,
		Amount:         req.Amount,
		Method:         req.Method,
		Status:         models.PaymentStatusPending,
		TransactionRef: req.TransactionRef,
		Notes:          req.Notes,
		ReceivedBy:     receivedBy,
	}

	updated, err := s.payments.CreateCompleted(ctx, payment)
	if err != nil {
		return nil, nil, err
	}

	metrics.PaymentsAppliedTotal.WithLabelValues(string(payment.Method)).Inc()
	metrics.PaymentAmountTotal.WithLabelValues(string(payment.Method)).Add(float64(payment.Amount))
	log.Printf("[Recorder] receipt %s: applied %d paise to invoice %s (balance %d)",
		payment.ReceiptNumber, payment.Amount, updated.ID, updated.BalanceAmount)

	return payment, updated, nil
}

func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *PaymentService) ListForInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	if _, err := s.invoices.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.payments.ListByInvoice(ctx, invoiceID)
}
