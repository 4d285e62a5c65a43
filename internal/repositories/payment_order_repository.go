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

type PaymentOrderRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentOrderRepository(db *pgxpool.Pool) *PaymentOrderRepository {
	return &PaymentOrderRepository{DB: db}
}

const orderColumns = `id, invoice_id, tenant_id, student_id, amount, currency, provider,
	       COALESCE(provider_order_id, ''), COALESCE(provider_payment_id, ''), COALESCE(provider_signature, ''),
	       status, attempt_count, COALESCE(failure_reason, ''), COALESCE(payment_id, ''), created_at, paid_at`

func scanOrder(row pgx.Row) (*models.PaymentOrder, error) {
	o := &models.PaymentOrder{}
	err := row.Scan(
		&o.ID, &o.InvoiceID, &o.TenantID, &o.StudentID, &o.Amount, &o.Currency, &o.Provider,
		&o.ProviderOrderID, &o.ProviderPaymentID, &o.ProviderSignature,
		&o.Status, &o.AttemptCount, &o.FailureReason, &o.PaymentID, &o.CreatedAt, &o.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create inserts a new pending order for a checkout attempt
func (r *PaymentOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	query := `
		INSERT INTO payment_orders (id, invoice_id, tenant_id, student_id, amount, currency, provider, status, attempt_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
		RETURNING created_at
	`
	err := r.DB.QueryRow(ctx, query,
		order.ID, order.InvoiceID, order.TenantID, order.StudentID,
		order.Amount, order.Currency, order.Provider, models.OrderStatusPending,
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment order: %w", err)
	}
	order.Status = models.OrderStatusPending
	return nil
}

// SetProviderOrder records the gateway order id and moves pending -> created
func (r *PaymentOrderRepository) SetProviderOrder(ctx context.Context, orderID, providerOrderID string) error {
	query := `
		UPDATE payment_orders
		SET provider_order_id = $2, status = $3, attempt_count = attempt_count + 1
		WHERE id = $1 AND status = $4
	`
	tag, err := r.DB.Exec(ctx, query, orderID, providerOrderID, models.OrderStatusCreated, models.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to record provider order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrOrderTerminal
	}
	return nil
}

func (r *PaymentOrderRepository) GetByID(ctx context.Context, id string) (*models.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE id = $1`
	o, err := scanOrder(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PaymentOrderRepository) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE provider_order_id = $1`
	o, err := scanOrder(r.DB.QueryRow(ctx, query, providerOrderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// MarkCaptured is the capture serialization point: a compare-and-set from a
// non-terminal status. Exactly one caller wins; everyone else gets
// ErrOrderTerminal and must read back the stored result.
func (r *PaymentOrderRepository) MarkCaptured(ctx context.Context, providerOrderID, providerPaymentID, signature string) (*models.PaymentOrder, error) {
	query := `
		UPDATE payment_orders
		SET status = $2, provider_payment_id = $3, provider_signature = $4, paid_at = NOW()
		WHERE provider_order_id = $1 AND status IN ('pending', 'created')
		RETURNING ` + orderColumns

	o, err := scanOrder(r.DB.QueryRow(ctx, query, providerOrderID, models.OrderStatusCaptured, providerPaymentID, signature))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrOrderTerminal
	}
	if err != nil {
		return nil, fmt.Errorf("failed to capture order: %w", err)
	}
	return o, nil
}

// MarkFailed records a failure reason. A captured order is never demoted.
func (r *PaymentOrderRepository) MarkFailed(ctx context.Context, providerOrderID, reason string) error {
	query := `
		UPDATE payment_orders
		SET status = $2, failure_reason = $3
		WHERE provider_order_id = $1 AND status IN ('pending', 'created')
	`
	_, err := r.DB.Exec(ctx, query, providerOrderID, models.OrderStatusFailed, reason)
	return err
}

// MarkFailedByID records a failure on an order that never reached the
// provider (no provider order id yet).
func (r *PaymentOrderRepository) MarkFailedByID(ctx context.Context, orderID, reason string) error {
	query := `
		UPDATE payment_orders
		SET status = $2, failure_reason = $3
		WHERE id = $1 AND status IN ('pending', 'created')
	`
	_, err := r.DB.Exec(ctx, query, orderID, models.OrderStatusFailed, reason)
	return err
}

// LinkPayment ties a captured order to the payment record it produced
func (r *PaymentOrderRepository) LinkPayment(ctx context.Context, orderID, paymentID string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE payment_orders SET payment_id = $2 WHERE id = $1`,
		orderID, paymentID,
	)
	return err
}

// HasCapturedForInvoice reports whether a captured order already settled
// this invoice, which blocks opening another checkout for it.
func (r *PaymentOrderRepository) HasCapturedForInvoice(ctx context.Context, invoiceID string) (bool, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_orders WHERE invoice_id = $1 AND status = 'captured'`,
		invoiceID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUnreconciled returns captured orders whose ledger effect never landed
// (crash between the capture transition and the payment transaction).
func (r *PaymentOrderRepository) ListUnreconciled(ctx context.Context) ([]*models.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE status = 'captured' AND payment_id IS NULL ORDER BY created_at ASC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.PaymentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
