package models

import "time"

// EscalationAction is the tier-classified outcome for one defaulter record
type EscalationAction string

const (
	ActionNone        EscalationAction = "none"
	ActionReminder    EscalationAction = "reminder"
	ActionWarning     EscalationAction = "warning"
	ActionFinalNotice EscalationAction = "final_notice"
	ActionEscalate    EscalationAction = "escalate"
)

// DefaulterRecord is a computed view over one overdue invoice. It is never
// persisted as its own entity; each scan rebuilds it from the ledger.
type DefaulterRecord struct {
	TenantID         string     `json:"tenant_id"`
	InvoiceID        string     `json:"invoice_id"`
	InvoiceNumber    string     `json:"invoice_number"`
	StudentID        string     `json:"student_id"`
	AmountDue        int64      `json:"amount_due"`
	DueDate          time.Time  `json:"due_date"`
	DaysOverdue      int        `json:"days_overdue"`
	LastReminderDate *time.Time `json:"last_reminder_date,omitempty"`
	ReminderCount    int        `json:"reminder_count"`
}

// EscalationSummary is the aggregate result of one defaulter processing run
type EscalationSummary struct {
	TenantID        string    `json:"tenant_id"`
	ProcessedDate   time.Time `json:"processed_date"`
	TotalDefaulters int       `json:"total_defaulters"`
	RemindersSent   int       `json:"reminders_sent"`
	Escalations     int       `json:"escalations"`
}

// ProcessDefaultersRequest triggers a scan for one tenant
type ProcessDefaultersRequest struct {
	TenantID string `json:"tenant_id" validate:"required"`
}
