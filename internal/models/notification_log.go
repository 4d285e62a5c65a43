package models

import "time"

// NotificationLog records one outbound reminder delivery attempt
type NotificationLog struct {
	ID                int              `json:"id"`
	TenantID          string           `json:"tenant_id"`
	InvoiceID         string           `json:"invoice_id"`
	StudentID         string           `json:"student_id"`
	Channel           string           `json:"channel"` // sms, whatsapp
	Recipient         string           `json:"recipient"`
	Tier              EscalationAction `json:"tier"`
	Message           string           `json:"message"`
	ProviderMessageID string           `json:"provider_message_id,omitempty"`
	Status            string           `json:"status"` // sent, failed
	FailureReason     string           `json:"failure_reason,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}
