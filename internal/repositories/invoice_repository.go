package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fees-backend/internal/models"
	"fees-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

const invoiceColumns = `id, invoice_number, tenant_id, student_id, total_amount, paid_amount,
	       total_amount - paid_amount, status, issue_date, due_date, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.TenantID, &inv.StudentID,
		&inv.TotalAmount, &inv.PaidAmount, &inv.BalanceAmount, &inv.Status,
		&inv.IssueDate, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GenerateInvoiceNumber allocates the next human-readable invoice number
// from a database sequence so concurrent creators never collide.
func (r *InvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	var next int
	err := r.DB.QueryRow(ctx, "SELECT nextval('invoice_number_sequence')").Scan(&next)
	if err != nil {
		return "", fmt.Errorf("failed to get next invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%06d", next), nil
}

// Create inserts a new invoice. Total amount and due date are immutable
// after this point.
func (r *InvoiceRepository) Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	number := req.InvoiceNumber
	if number == "" {
		var err error
		number, err = r.GenerateInvoiceNumber(ctx)
		if err != nil {
			return nil, err
		}
	}

	status := models.InvoiceStatusPending
	if req.Draft {
		status = models.InvoiceStatusDraft
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = timeutil.Now()
	}

	query := `
		INSERT INTO invoices (id, invoice_number, tenant_id, student_id, total_amount, paid_amount, status, issue_date, due_date)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8)
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(r.DB.QueryRow(ctx, query,
		uuid.NewString(), number, req.TenantID, req.StudentID,
		req.TotalAmount, status, issueDate, req.DueDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// List returns invoices matching the filter, newest first
func (r *InvoiceRepository) List(ctx context.Context, filter *models.InvoiceFilter) ([]*models.Invoice, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if filter.TenantID != "" {
		whereClause += fmt.Sprintf(" AND tenant_id = $%d", argNum)
		args = append(args, filter.TenantID)
		argNum++
	}
	if filter.StudentID != "" {
		whereClause += fmt.Sprintf(" AND student_id = $%d", argNum)
		args = append(args, filter.StudentID)
		argNum++
	}
	if filter.Status != "" {
		whereClause += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM invoices
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, invoiceColumns, whereClause, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// Cancel transitions an invoice to cancelled. Only draft/pending invoices
// with no payments applied can be cancelled; anything else keeps its state.
func (r *InvoiceRepository) Cancel(ctx context.Context, id string) (*models.Invoice, error) {
	query := `
		UPDATE invoices
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1
		  AND status IN ('draft', 'pending')
		  AND paid_amount = 0
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish missing from not-cancellable
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, models.ErrInvoiceClosed
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ApplyPayment applies a payment outside any caller transaction
func (r *InvoiceRepository) ApplyPayment(ctx context.Context, invoiceID string, amount int64) (*models.Invoice, error) {
	return r.ApplyPaymentTx(ctx, r.DB, invoiceID, amount)
}

// ApplyPaymentTx is the single place invoice balances move. The conditional
// UPDATE is the serialization point: the row lock orders concurrent callers
// and the predicate rejects closed invoices and overpayments before any
// mutation is visible.
func (r *InvoiceRepository) ApplyPaymentTx(ctx context.Context, db DBTX, invoiceID string, amount int64) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	query := `
		UPDATE invoices
		SET paid_amount = paid_amount + $2,
		    status = CASE WHEN paid_amount + $2 >= total_amount THEN 'paid' ELSE 'partial' END,
		    updated_at = NOW()
		WHERE id = $1
		  AND status IN ('pending', 'partial')
		  AND paid_amount + $2 <= total_amount
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(db.QueryRow(ctx, query, invoiceID, amount))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyApplyFailure(ctx, db, invoiceID, amount)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}
	return inv, nil
}

// classifyApplyFailure explains why the conditional update matched no row
func (r *InvoiceRepository) classifyApplyFailure(ctx context.Context, db DBTX, invoiceID string, amount int64) error {
	var status models.InvoiceStatus
	var paid, total int64
	err := db.QueryRow(ctx,
		`SELECT status, paid_amount, total_amount FROM invoices WHERE id = $1`,
		invoiceID,
	).Scan(&status, &paid, &total)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect invoice %s: %w", invoiceID, err)
	}
	if status != models.InvoiceStatusPending && status != models.InvoiceStatusPartial {
		return models.ErrInvoiceClosed
	}
	if paid+amount > total {
		return models.ErrOverpayment
	}
	// Lost a race with a concurrent update that closed the invoice
	return models.ErrInvoiceClosed
}

/// ListDefaulters builds the defaulter view for one tenant: every pending or
// partial invoice past its due date, joined with reminder history. The view
// is recomputed fresh on every call.
func (r *InvoiceRepository) ListDefaulters(ctx context.Context, tenantID string, asOf time.Time) ([]*models.DefaulterRecord, error) {
	query := `
		SELECT i.tenant_id, i.id, i.invoice_number, i.student_id,
		       i.total_amount - i.paid_amount, i.due_date,
		       n.last_sent, COALESCE(n.sent_count, 0)
		FROM invoices i
		LEFT JOIN (
			SELECT invoice_id, MAX(created_at) AS last_sent, COUNT(*) AS sent_count
			FROM notification_logs
			WHERE status = 'sent'
			GROUP BY invoice_id
		) n ON n.invoice_id = i.id
		WHERE i.tenant_id = $1
		  AND i.status IN ('pending', 'partial')
		  AND i.due_date < $2
		ORDER BY i.due_date ASC
	`

	rows, err := r.DB.Query(ctx, query, tenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to scan defaulters: %w", err)
	}
	defer rows.Close()

	var records []*models.DefaulterRecord
	for rows.Next() {
		rec := &models.DefaulterRecord{}
		err := rows.Scan(
			&rec.TenantID, &rec.InvoiceID, &rec.InvoiceNumber, &rec.StudentID,
			&rec.AmountDue, &rec.DueDate, &rec.LastReminderDate, &rec.ReminderCount,
		)
		if err != nil {
			return nil, err
		}
		rec.DaysOverdue = timeutil.DaysBetween(rec.DueDate, asOf)
		records = append(records, rec)
	}
	return records, rows.Err()
}
