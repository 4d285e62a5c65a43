package models

import (
	"testing"
	"time"
)

func TestStatusForPaid(t *testing.T) {
	cases := []struct {
		paid, total int64
		want        InvoiceStatus
	}{
		{0, 50000, InvoiceStatusPending},
		{1, 50000, InvoiceStatusPartial},
		{49999, 50000, InvoiceStatusPartial},
		{50000, 50000, InvoiceStatusPaid},
	}
	for _, tc := range cases {
		if got := StatusForPaid(tc.paid, tc.total); got != tc.want {
			t.Errorf("StatusForPaid(%d, %d) = %s, want %s", tc.paid, tc.total, got, tc.want)
		}
	}
}

func TestInvoiceIsClosed(t *testing.T) {
	for _, tc := range []struct {
		status InvoiceStatus
		want   bool
	}{
		{InvoiceStatusDraft, false},
		{InvoiceStatusPending, false},
		{InvoiceStatusPartial, false},
		{InvoiceStatusPaid, true},
		{InvoiceStatusCancelled, true},
	} {
		inv := &Invoice{Status: tc.status}
		if got := inv.IsClosed(); got != tc.want {
			t.Errorf("IsClosed with %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestInvoiceIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -5)
	future := now.AddDate(0, 0, 5)

	cases := []struct {
		name string
		inv  Invoice
		want bool
	}{
		{"pending past due", Invoice{Status: InvoiceStatusPending, DueDate: past}, true},
		{"partial past due", Invoice{Status: InvoiceStatusPartial, DueDate: past}, true},
		{"pending not yet due", Invoice{Status: InvoiceStatusPending, DueDate: future}, false},
		{"paid is never overdue", Invoice{Status: InvoiceStatusPaid, DueDate: past}, false},
		{"cancelled is never overdue", Invoice{Status: InvoiceStatusCancelled, DueDate: past}, false},
		{"draft is never overdue", Invoice{Status: InvoiceStatusDraft, DueDate: past}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.inv.IsOverdue(now); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
