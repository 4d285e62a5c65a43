package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fees-backend/internal/models"
)

func TestCreateInvoiceValidation(t *testing.T) {
	svc := NewInvoiceService(newMemInvoiceStore())
	due := time.Now().AddDate(0, 0, 15)

	inv, err := svc.Create(context.Background(), &models.CreateInvoiceRequest{
		TenantID:    "tenant-1",
		StudentID:   "stu-1",
		TotalAmount: 50000,
		DueDate:     due,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if inv.Status != models.InvoiceStatusPending {
		t.Errorf("expected pending invoice, got %s", inv.Status)
	}
	if inv.BalanceAmount != 50000 {
		t.Errorf("expected balance 50000, got %d", inv.BalanceAmount)
	}
	if inv.InvoiceNumber == "" {
		t.Error("expected an allocated invoice number")
	}

	bad := []*models.CreateInvoiceRequest{
		{TenantID: "tenant-1", StudentID: "stu-1", TotalAmount: 0, DueDate: due},
		{TenantID: "tenant-1", StudentID: "stu-1", TotalAmount: -100, DueDate: due},
		{TenantID: "tenant-1", TotalAmount: 100, DueDate: due},
		{StudentID: "stu-1", TotalAmount: 100, DueDate: due},
	}
	for i, req := range bad {
		if _, err := svc.Create(context.Background(), req); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCancelInvoice(t *testing.T) {
	store := newMemInvoiceStore()
	svc := NewInvoiceService(store)
	ctx := context.Background()

	open := seedInvoice(store, "inv-open", 10000)
	inv, err := svc.Cancel(ctx, open.ID)
	if err != nil {
		t.Fatalf("cancel of open invoice failed: %v", err)
	}
	if inv.Status != models.InvoiceStatusCancelled {
		t.Errorf("expected cancelled, got %s", inv.Status)
	}

	// An invoice with money against it cannot be voided
	partial := store.add(&models.Invoice{
		ID:          "inv-partial",
		TenantID:    "tenant-1",
		TotalAmount: 10000,
		PaidAmount:  4000,
		Status:      models.InvoiceStatusPartial,
	})
	if _, err := svc.Cancel(ctx, partial.ID); err == nil {
		t.Error("expected cancel of partially paid invoice to fail")
	}

	if _, err := svc.Cancel(ctx, "inv-missing"); !errors.Is(err, models.ErrInvoiceNotFound) {
		t.Errorf("expected ErrInvoiceNotFound, got %v", err)
	}
}

func TestApplyPaymentGuards(t *testing.T) {
	store := newMemInvoiceStore()
	svc := NewInvoiceService(store)
	ctx := context.Background()
	seedInvoice(store, "inv-1", 10000)

	if _, err := svc.ApplyPayment(ctx, "inv-1", 0); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.ApplyPayment(ctx, "inv-1", -50); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("negative amount: expected ErrInvalidAmount, got %v", err)
	}

	inv, err := svc.ApplyPayment(ctx, "inv-1", 10000)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if inv.Status != models.InvoiceStatusPaid || inv.BalanceAmount != 0 {
		t.Errorf("expected settled invoice, got status=%s balance=%d", inv.Status, inv.BalanceAmount)
	}

	// Cancelled invoices never accept payments
	cancelled := store.add(&models.Invoice{
		ID:          "inv-cxl",
		TenantID:    "tenant-1",
		TotalAmount: 10000,
		Status:      models.InvoiceStatusCancelled,
	})
	if _, err := svc.ApplyPayment(ctx, cancelled.ID, 100); !errors.Is(err, models.ErrInvoiceClosed) {
		t.Errorf("expected ErrInvoiceClosed, got %v", err)
	}
}
