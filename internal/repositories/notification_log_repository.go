package repositories

import (
	"context"
	"fmt"

	"fees-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationLogRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationLogRepository(db *pgxpool.Pool) *NotificationLogRepository {
	return &NotificationLogRepository{DB: db}
}

// Create records one outbound reminder attempt. Sent rows double as the
// reminder history the defaulter scan joins against for debouncing.
func (r *NotificationLogRepository) Create(ctx context.Context, logEntry *models.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (tenant_id, invoice_id, student_id, channel, recipient, tier, message, provider_message_id, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		logEntry.TenantID, logEntry.InvoiceID, logEntry.StudentID,
		logEntry.Channel, logEntry.Recipient, logEntry.Tier, logEntry.Message,
		logEntry.ProviderMessageID, logEntry.Status, logEntry.FailureReason,
	).Scan(&logEntry.ID, &logEntry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	return nil
}

// ListByInvoice returns the delivery history for one invoice, newest first
func (r *NotificationLogRepository) ListByInvoice(ctx context.Context, invoiceID string, limit int) ([]*models.NotificationLog, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, tenant_id, invoice_id, student_id, channel, recipient, tier, message,
		       COALESCE(provider_message_id, ''), status, COALESCE(failure_reason, ''), created_at
		FROM notification_logs
		WHERE invoice_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.DB.Query(ctx, query, invoiceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.NotificationLog
	for rows.Next() {
		l := &models.NotificationLog{}
		err := rows.Scan(
			&l.ID, &l.TenantID, &l.InvoiceID, &l.StudentID, &l.Channel, &l.Recipient,
			&l.Tier, &l.Message, &l.ProviderMessageID, &l.Status, &l.FailureReason, &l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
