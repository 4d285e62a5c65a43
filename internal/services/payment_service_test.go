package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fees-backend/internal/models"
)

func seedInvoice(invoices *memInvoiceStore, id string, total int64) *models.Invoice {
	return invoices.add(&models.Invoice{
		ID:            id,
		InvoiceNumber: "INV-000042",
		TenantID:      "tenant-1",
		StudentID:     "11111111-1111-1111-1111-111111111111",
		TotalAmount:   total,
		Status:        models.InvoiceStatusPending,
		IssueDate:     time.Now().AddDate(0, 0, -30),
		DueDate:       time.Now().AddDate(0, 0, -10),
	})
}

const invoiceUUID = "22222222-2222-2222-2222-222222222222"

func TestRecordPaymentLifecycle(t *testing.T) {
	invoices := newMemInvoiceStore()
	payments := newMemPaymentStore(invoices)
	svc := NewPaymentService(payments, invoices)
	seedInvoice(invoices, invoiceUUID, 50000)

	ctx := context.Background()

	// First instalment: 20000 cash out of 50000
	p1, inv, err := svc.RecordPayment(ctx, &models.RecordPaymentRequest{
		InvoiceID: invoiceUUID,
		Amount:    20000,
		Method:    models.PaymentMethodCash,
	}, "user-1")
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if p1.ReceiptNumber == "" {
		t.Error("expected a receipt number on the first payment")
	}
	if inv.Status != models.InvoiceStatusPartial {
		t.Errorf("expected partial status, got %s", inv.Status)
	}
	if inv.BalanceAmount != 30000 {
		t.Errorf("expected balance 30000, got %d", inv.BalanceAmount)
	}

	// Second instalment settles the invoice exactly
	_, inv, err = svc.RecordPayment(ctx, &models.RecordPaymentRequest{
		InvoiceID: invoiceUUID,
		Amount:    30000,
		Method:    models.PaymentMethodUPI,
	}, "user-1")
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if inv.Status != models.InvoiceStatusPaid {
		t.Errorf("expected paid status, got %s", inv.Status)
	}
	if inv.PaidAmount != inv.TotalAmount {
		t.Errorf("paid %d does not equal total %d", inv.PaidAmount, inv.TotalAmount)
	}

	// A third payment must be rejected: the invoice is closed
	_, _, err = svc.RecordPayment(ctx, &models.RecordPaymentRequest{
		InvoiceID: invoiceUUID,
		Amount:    100,
		Method:    models.PaymentMethodCash,
	}, "user-1")
	if !errors.Is(err, models.ErrInvoiceClosed) {
		t.Errorf("expected ErrInvoiceClosed, got %v", err)
	}

	history, err := svc.ListForInvoice(ctx, invoiceUUID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected 2 payments in history, got %d", len(history))
	}
	var sum int64
	for _, p := range history {
		sum += p.Amount
	}
	if sum != 50000 {
		t.Errorf("payment sum %d does not equal total 50000", sum)
	}
}

func TestRecordPaymentOverpaymentRejected(t *testing.T) {
	invoices := newMemInvoiceStore()
	payments := newMemPaymentStore(invoices)
	svc := NewPaymentService(payments, invoices)
	seedInvoice(invoices, invoiceUUID, 10000)

	_, _, err := svc.RecordPayment(context.Background(), &models.RecordPaymentRequest{
		InvoiceID: invoiceUUID,
		Amount:    10001,
		Method:    models.PaymentMethodCash,
	}, "user-1")
	if !errors.Is(err, models.ErrOverpayment) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}

	// The rejected attempt must leave the ledger untouched
	inv, _ := invoices.GetByID(context.Background(), invoiceUUID)
	if inv.PaidAmount != 0 || inv.Status != models.InvoiceStatusPending {
		t.Errorf("ledger mutated on rejected payment: paid=%d status=%s", inv.PaidAmount, inv.Status)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	invoices := newMemInvoiceStore()
	payments := newMemPaymentStore(invoices)
	svc := NewPaymentService(payments, invoices)
	seedInvoice(invoices, invoiceUUID, 10000)

	cases := []struct {
		name string
		req  *models.RecordPaymentRequest
	}{
		{"zero amount", &models.RecordPaymentRequest{InvoiceID: invoiceUUID, Amount: 0, Method: models.PaymentMethodCash}},
		{"negative amount", &models.RecordPaymentRequest{InvoiceID: invoiceUUID, Amount: -500, Method: models.PaymentMethodCash}},
		{"online method reserved for gateway", &models.RecordPaymentRequest{InvoiceID: invoiceUUID, Amount: 100, Method: models.PaymentMethodOnline}},
		{"missing invoice", &models.RecordPaymentRequest{Amount: 100, Method: models.PaymentMethodCash}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.RecordPayment(context.Background(), tc.req, "user-1"); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestRecordPaymentUnknownInvoice(t *testing.T) {
	invoices := newMemInvoiceStore()
	svc := NewPaymentService(newMemPaymentStore(invoices), invoices)

	_, _, err := svc.RecordPayment(context.Background(), &models.RecordPaymentRequest{
		InvoiceID: invoiceUUID,
		Amount:    100,
		Method:    models.PaymentMethodCash,
	}, "user-1")
	if !errors.Is(err, models.ErrInvoiceNotFound) {
		t.Errorf("expected ErrInvoiceNotFound, got %v", err)
	}
}
