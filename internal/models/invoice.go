package models

import "time"

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice represents a billable obligation for one student.
// TotalAmount is fixed at creation; PaidAmount only ever grows through
// the ledger's ApplyPayment. All amounts are in paise.
type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	TenantID      string        `json:"tenant_id"`
	StudentID     string        `json:"student_id"`
	TotalAmount   int64         `json:"total_amount"`
	PaidAmount    int64         `json:"paid_amount"`
	BalanceAmount int64         `json:"balance_amount"`
	Status        InvoiceStatus `json:"status"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       time.Time     `json:"due_date"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsClosed reports whether the invoice can no longer accept payments
func (i *Invoice) IsClosed() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// IsOverdue is a pure function of (status, due date, now). Overdue-ness is
// never stored; it is recomputed so it cannot drift from the due date.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled || i.Status == InvoiceStatusDraft {
		return false
	}
	return now.After(i.DueDate)
}

// StatusForPaid returns the status an invoice holds once its cumulative
// paid amount reaches the given value.
func StatusForPaid(paid, total int64) InvoiceStatus {
	switch {
	case paid >= total:
		return InvoiceStatusPaid
	case paid > 0:
		return InvoiceStatusPartial
	default:
		return InvoiceStatusPending
	}
}

// CreateInvoiceRequest represents the request to create an invoice
type CreateInvoiceRequest struct {
	TenantID      string    `json:"tenant_id" validate:"required"`
	StudentID     string    `json:"student_id" validate:"required"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalAmount   int64     `json:"total_amount" validate:"required,gt=0"`
	DueDate       time.Time `json:"due_date" validate:"required"`
	IssueDate     time.Time `json:"issue_date"`
	Draft         bool      `json:"draft"`
}

// InvoiceFilter is used for listing invoices
type InvoiceFilter struct {
	TenantID  string        `json:"tenant_id"`
	StudentID string        `json:"student_id"`
	Status    InvoiceStatus `json:"status"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
}
