package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fees-backend/internal/metrics"
	"fees-backend/internal/models"
	"fees-backend/internal/notify"
	"fees-backend/internal/timeutil"
)

// Escalation tiers by days overdue, most severe first
const (
	escalateAfterDays    = 60
	finalNoticeAfterDays = 30
	warningAfterDays     = 15
	reminderAfterDays    = 7

	// Minimum days between two contacts for the same invoice
	reminderDebounceDays = 3
)

// RunCache remembers the latest processing run per tenant
type RunCache interface {
	StoreRun(ctx context.Context, summary *models.EscalationSummary)
	LastRun(ctx context.Context, tenantID string) (*models.EscalationSummary, bool)
}

// EscalationService scans overdue invoices and escalates guardian contact
// as debts age. It only ever reads the ledger; the one thing it writes is
// the notification log that drives its own debounce.
type EscalationService struct {
	invoices InvoiceStore
	logs     NotificationLogStore
	students StudentDirectory
	sender   notify.Sender
	runCache RunCache
	now      func() time.Time
}

func NewEscalationService(invoices InvoiceStore, logs NotificationLogStore, students StudentDirectory, sender notify.Sender, runCache RunCache) *EscalationService {
	return &EscalationService{
		invoices: invoices,
		logs:     logs,
		students: students,
		sender:   sender,
		runCache: runCache,
		now:      timeutil.Now,
	}
}

// IdentifyDefaulters rebuilds the defaulter view for one tenant. Fresh on
// every call; nothing is cached between runs.
func (s *EscalationService) IdentifyDefaulters(ctx context.Context, tenantID string) ([]*models.DefaulterRecord, error) {
	return s.invoices.ListDefaulters(ctx, tenantID, s.now())
}

// DetermineAction classifies one defaulter record. The debounce rule is
// checked before tier classification: a reminder in the last 3 days forces
// None no matter how old the debt is.
func DetermineAction(rec *models.DefaulterRecord, now time.Time) models.EscalationAction {
	if rec.LastReminderDate != nil && timeutil.DaysBetween(*rec.LastReminderDate, now) < reminderDebounceDays {
		return models.ActionNone
	}

	switch {
	case rec.DaysOverdue >= escalateAfterDays:
		return models.ActionEscalate
	case rec.DaysOverdue >= finalNoticeAfterDays:
		return models.ActionFinalNotice
	case rec.DaysOverdue >= warningAfterDays:
		return models.ActionWarning
	case rec.DaysOverdue >= reminderAfterDays:
		return models.ActionReminder
	default:
		return models.ActionNone
	}
}

// ExecuteAction sends the tier message to the student's guardian and records
// the delivery so later runs observe the debounce window. No ledger effects.
func (s *EscalationService) ExecuteAction(ctx context.Context, tenantID string, rec *models.DefaulterRecord, action models.EscalationAction) error {
	if action == models.ActionNone {
		return nil
	}

	student, err := s.students.Get(ctx, rec.StudentID)
	if err != nil {
		return err
	}
	if student.GuardianPhone == "" {
		return fmt.Errorf("student %s has no guardian contact", rec.StudentID)
	}

	channel := notify.ChannelSMS
	if student.PreferredChannel == string(notify.ChannelWhatsApp) {
		channel = notify.ChannelWhatsApp
	}

	message := buildTierMessage(action, student.Name, rec)

	logEntry := &models.NotificationLog{
		TenantID:  tenantID,
		InvoiceID: rec.InvoiceID,
		StudentID: rec.StudentID,
		Channel:   string(channel),
		Recipient: student.GuardianPhone,
		Tier:      action,
		Message:   message,
	}

	attemptID, err := s.sender.Send(ctx, channel, student.GuardianPhone, message)
	if err != nil {
		logEntry.Status = "failed"
		logEntry.FailureReason = err.Error()
		if logErr := s.logs.Create(ctx, logEntry); logErr != nil {
			log.Printf("[Escalation] failed to log failed delivery for invoice %s: %v", rec.InvoiceID, logErr)
		}
		return fmt.Errorf("failed to send %s for invoice %s: %w", action, rec.InvoiceID, err)
	}

	logEntry.Status = "sent"
	logEntry.ProviderMessageID = attemptID
	if err := s.logs.Create(ctx, logEntry); err != nil {
		// The message went out; losing the log entry weakens the debounce,
		// so it is worth a loud log line.
		log.Printf("[Escalation] SENT but failed to record reminder for invoice %s: %v", rec.InvoiceID, err)
	}

	metrics.RemindersSentTotal.WithLabelValues(string(action)).Inc()
	return nil
}

// ProcessDefaulters is the scheduler entry point: enumerate, classify,
// execute, and return the aggregate counts for the run.
func (s *EscalationService) ProcessDefaulters(ctx context.Context, tenantID string) (*models.EscalationSummary, error) {
	records, err := s.IdentifyDefaulters(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to identify defaulters: %w", err)
	}

	now := s.now()
	summary := &models.EscalationSummary{
		TenantID:        tenantID,
		ProcessedDate:   now,
		TotalDefaulters: len(records),
	}

	for _, rec := range records {
		action := DetermineAction(rec, now)
		if action == models.ActionNone {
			continue
		}
		if err := s.ExecuteAction(ctx, tenantID, rec, action); err != nil {
			log.Printf("[Escalation] %v", err)
			continue
		}
		summary.RemindersSent++
		if action == models.ActionEscalate {
			summary.Escalations++
		}
	}

	if s.runCache != nil {
		s.runCache.StoreRun(ctx, summary)
	}

	log.Printf("[Escalation] tenant %s: %d defaulters, %d reminders, %d escalations",
		tenantID, summary.TotalDefaulters, summary.RemindersSent, summary.Escalations)
	return summary, nil
}

// ReminderHistory returns the recorded delivery attempts for one invoice,
// newest first
func (s *EscalationService) ReminderHistory(ctx context.Context, invoiceID string) ([]*models.NotificationLog, error) {
	return s.logs.ListByInvoice(ctx, invoiceID, 50)
}

// LastRun returns the cached summary of the most recent run for a tenant
func (s *EscalationService) LastRun(ctx context.Context, tenantID string) (*models.EscalationSummary, bool) {
	if s.runCache == nil {
		return nil, false
	}
	return s.runCache.LastRun(ctx, tenantID)
}

// buildTierMessage renders the outbound text for one escalation tier
func buildTierMessage(action models.EscalationAction, studentName string, rec *models.DefaulterRecord) string {
	amount := float64(rec.AmountDue) / 100
	due := timeutil.FormatIST(rec.DueDate, timeutil.DateLayout)

	switch action {
	case models.ActionReminder:
		return fmt.Sprintf("Gentle reminder: fee of Rs %.2f for %s (invoice %s) was due on %s. Kindly arrange payment.",
			amount, studentName, rec.InvoiceNumber, due)
	case models.ActionWarning:
		return fmt.Sprintf("Fee of Rs %.2f for %s (invoice %s) is %d days overdue since %s. Please pay immediately to avoid further action.",
			amount, studentName, rec.InvoiceNumber, rec.DaysOverdue, due)
	case models.ActionFinalNotice:
		return fmt.Sprintf("FINAL NOTICE: fee of Rs %.2f for %s (invoice %s) is %d days overdue. Settle within 7 days to avoid escalation to the school office.",
			amount, studentName, rec.InvoiceNumber, rec.DaysOverdue)
	case models.ActionEscalate:
		return fmt.Sprintf("Fee of Rs %.2f for %s (invoice %s) is %d days overdue and has been escalated to the school office. Please contact the accounts department urgently.",
			amount, studentName, rec.InvoiceNumber, rec.DaysOverdue)
	default:
		return ""
	}
}
