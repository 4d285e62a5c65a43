package models

import "errors"

// Failure taxonomy for the billing core. Handlers map these to HTTP codes;
// none of them are retryable by the caller except ErrGatewayUnavailable.
var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvoiceClosed   = errors.New("invoice is not open for payment")
	ErrOverpayment     = errors.New("payment exceeds invoice balance")
	ErrInvalidAmount   = errors.New("payment amount must be greater than zero")
	ErrPaymentNotFound = errors.New("payment not found")

	ErrOrderNotFound    = errors.New("payment order not found")
	ErrOrderTerminal    = errors.New("payment order already in a terminal state")
	ErrAlreadyPaid      = errors.New("invoice already settled by a captured order")
	ErrSignatureInvalid = errors.New("payment signature verification failed")

	ErrStudentNotFound    = errors.New("student not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
