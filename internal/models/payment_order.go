package models

import "time"

// PaymentOrderStatus represents the state of an online checkout attempt
type PaymentOrderStatus string

const (
	OrderStatusPending  PaymentOrderStatus = "pending"
	OrderStatusCreated  PaymentOrderStatus = "created"
	OrderStatusCaptured PaymentOrderStatus = "captured"
	OrderStatusFailed   PaymentOrderStatus = "failed"
)

// Failure reasons recorded on a failed order
const (
	FailureSignatureInvalid = "signature_invalid"
	FailureGatewayDeclined  = "gateway_declined"
)

// PaymentOrder is a single attempt to pay an invoice through the online
// gateway. Orders are never deleted; they are the audit trail for the
// attempt. Captured is terminal and applies the ledger effect exactly once.
type PaymentOrder struct {
	ID                string             `json:"id"`
	InvoiceID         string             `json:"invoice_id"`
	TenantID          string             `json:"tenant_id"`
	StudentID         string             `json:"student_id"`
	Amount            int64              `json:"amount"`
	Currency          string             `json:"currency"`
	Provider          string             `json:"provider"`
	ProviderOrderID   string             `json:"provider_order_id"`
	ProviderPaymentID string             `json:"provider_payment_id,omitempty"`
	ProviderSignature string             `json:"-"` // never exposed in JSON
	Status            PaymentOrderStatus `json:"status"`
	AttemptCount      int                `json:"attempt_count"`
	FailureReason     string             `json:"failure_reason,omitempty"`
	PaymentID         string             `json:"payment_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	PaidAt            *time.Time         `json:"paid_at,omitempty"`
}

// CreateOrderRequest initiates an online checkout for an invoice
type CreateOrderRequest struct {
	InvoiceID   string `json:"invoice_id" validate:"required,uuid"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description"`
}

// CreateOrderResponse carries what the payer's checkout flow needs.
// KeyID is the public key material; the secret never leaves the server.
type CreateOrderResponse struct {
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"key_id"`
}

// VerifyPaymentRequest is the gateway callback payload
type VerifyPaymentRequest struct {
	ProviderOrderID   string `json:"razorpay_order_id" validate:"required"`
	ProviderPaymentID string `json:"razorpay_payment_id" validate:"required"`
	ProviderSignature string `json:"razorpay_signature" validate:"required"`
}

// CaptureResult is returned by verify-and-capture. Duplicate deliveries for
// an already-captured order get the same result without a second ledger hit.
type CaptureResult struct {
	Order     *PaymentOrder `json:"order"`
	Duplicate bool          `json:"duplicate"`
}

// CheckoutStatusResponse tells the frontend whether online payment is on
type CheckoutStatusResponse struct {
	Enabled  bool   `json:"enabled"`
	KeyID    string `json:"key_id,omitempty"`
	Currency string `json:"currency,omitempty"`
}
