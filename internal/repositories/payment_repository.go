package repositories

import (
	"context"
	"errors"
	"fmt"

	"fees-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	DB          *pgxpool.Pool
	invoiceRepo *InvoiceRepository
}

func NewPaymentRepository(db *pgxpool.Pool, invoiceRepo *InvoiceRepository) *PaymentRepository {
	return &PaymentRepository{DB: db, invoiceRepo: invoiceRepo}
}

// GenerateReceiptNumber allocates the next receipt number from a database
// sequence, O(1) and collision-free under concurrent recording.
func (r *PaymentRepository) GenerateReceiptNumber(ctx context.Context) (string, error) {
	var next int
	err := r.DB.QueryRow(ctx, "SELECT nextval('receipt_number_sequence')").Scan(&next)
	if err != nil {
		return "", fmt.Errorf("failed to get next receipt number: %w", err)
	}
	return fmt.Sprintf("RCP-%06d", next), nil
}

const paymentColumns = `id, receipt_number, invoice_id, tenant_id, amount, method, status,
	       COALESCE(transaction_ref, ''), COALESCE(notes, ''), received_by, payment_date, created_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID, &p.ReceiptNumber, &p.InvoiceID, &p.TenantID, &p.Amount,
		&p.Method, &p.Status, &p.TransactionRef, &p.Notes, &p.ReceivedBy,
		&p.PaymentDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateCompleted records a completed payment and applies its ledger effect
// in one transaction. Either both land or neither does: a payment row must
// never exist without the matching invoice mutation.
func (r *PaymentRepository) CreateCompleted(ctx context.Context, payment *models.Payment) (*models.Invoice, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := r.invoiceRepo.ApplyPaymentTx(ctx, tx, payment.InvoiceID, payment.Amount)
	if err != nil {
		return nil, err
	}

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.TenantID = inv.TenantID
	payment.Status = models.PaymentStatusCompleted

	query := `
		INSERT INTO payments (id, receipt_number, invoice_id, tenant_id, amount, method, status, transaction_ref, notes, received_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING payment_date, created_at
	`
	err = tx.QueryRow(ctx, query,
		payment.ID, payment.ReceiptNumber, payment.InvoiceID, payment.TenantID,
		payment.Amount, payment.Method, payment.Status,
		payment.TransactionRef, payment.Notes, payment.ReceivedBy,
	).Scan(&payment.PaymentDate, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return inv, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByInvoice returns all payments recorded against one invoice
func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 ORDER BY created_at ASC`

	rows, err := r.DB.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
