package models

import "time"

// PaymentStatus represents the state of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentMethod is how the funds were received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodOnline       PaymentMethod = "online"
)

// Payment is a single recorded settlement against one invoice. A completed
// payment is immutable; corrections are new records, never in-place edits.
type Payment struct {
	ID             string        `json:"id"`
	ReceiptNumber  string        `json:"receipt_number"`
	InvoiceID      string        `json:"invoice_id"`
	TenantID       string        `json:"tenant_id"`
	Amount         int64         `json:"amount"`
	Method         PaymentMethod `json:"method"`
	Status         PaymentStatus `json:"status"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	ReceivedBy     string        `json:"received_by"`
	PaymentDate    time.Time     `json:"payment_date"`
	CreatedAt      time.Time     `json:"created_at"`
}

// RecordPaymentRequest is the manual payment recording request
type RecordPaymentRequest struct {
	InvoiceID      string        `json:"invoice_id" validate:"required,uuid"`
	Amount         int64         `json:"amount" validate:"required,gt=0"`
	Method         PaymentMethod `json:"method" validate:"required,oneof=cash upi bank_transfer cheque card"`
	TransactionRef string        `json:"transaction_ref"`
	Notes          string        `json:"notes"`
}

// PaymentFilter is used for listing payments
type PaymentFilter struct {
	InvoiceID string        `json:"invoice_id"`
	TenantID  string        `json:"tenant_id"`
	Status    PaymentStatus `json:"status"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
}
