package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fees-backend/internal/models"
	"fees-backend/internal/notify"
)

// In-memory stores with the same invariants as the pgx repositories:
// conditional ledger apply, capture CAS, receipt sequence. Guarded by a
// mutex so concurrency tests exercise real interleavings.

type memInvoiceStore struct {
	mu       sync.Mutex
	invoices map[string]*models.Invoice
	logs     *memNotificationLogStore // reminder history for the defaulter view
	seq      int
}

func newMemInvoiceStore() *memInvoiceStore {
	return &memInvoiceStore{invoices: make(map[string]*models.Invoice)}
}

func (s *memInvoiceStore) add(inv *models.Invoice) *models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.Status == "" {
		inv.Status = models.StatusForPaid(inv.PaidAmount, inv.TotalAmount)
	}
	inv.BalanceAmount = inv.TotalAmount - inv.PaidAmount
	s.invoices[inv.ID] = inv
	return inv
}

func (s *memInvoiceStore) Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	status := models.InvoiceStatusPending
	if req.Draft {
		status = models.InvoiceStatusDraft
	}
	inv := &models.Invoice{
		ID:            fmt.Sprintf("inv-%d", s.seq),
		InvoiceNumber: fmt.Sprintf("INV-%06d", s.seq),
		TenantID:      req.TenantID,
		StudentID:     req.StudentID,
		TotalAmount:   req.TotalAmount,
		BalanceAmount: req.TotalAmount,
		Status:        status,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
	}
	s.invoices[inv.ID] = inv
	return inv, nil
}

func (s *memInvoiceStore) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, models.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *memInvoiceStore) List(ctx context.Context, filter *models.InvoiceFilter) ([]*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range s.invoices {
		if filter.TenantID != "" && inv.TenantID != filter.TenantID {
			continue
		}
		if filter.StudentID != "" && inv.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memInvoiceStore) Cancel(ctx context.Context, id string) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, models.ErrInvoiceNotFound
	}
	if inv.PaidAmount > 0 || (inv.Status != models.InvoiceStatusDraft && inv.Status != models.InvoiceStatusPending) {
		return nil, models.ErrInvoiceClosed
	}
	inv.Status = models.InvoiceStatusCancelled
	cp := *inv
	return &cp, nil
}

func (s *memInvoiceStore) ApplyPayment(ctx context.Context, invoiceID string, amount int64) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(invoiceID, amount)
}

func (s *memInvoiceStore) applyLocked(invoiceID string, amount int64) (*models.Invoice, error) {
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, models.ErrInvoiceNotFound
	}
	if inv.Status != models.InvoiceStatusPending && inv.Status != models.InvoiceStatusPartial {
		return nil, models.ErrInvoiceClosed
	}
	if inv.PaidAmount+amount > inv.TotalAmount {
		return nil, models.ErrOverpayment
	}
	inv.PaidAmount += amount
	inv.BalanceAmount = inv.TotalAmount - inv.PaidAmount
	inv.Status = models.StatusForPaid(inv.PaidAmount, inv.TotalAmount)
	cp := *inv
	return &cp, nil
}

func (s *memInvoiceStore) ListDefaulters(ctx context.Context, tenantID string, asOf time.Time) ([]*models.DefaulterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.DefaulterRecord
	for _, inv := range s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if inv.Status != models.InvoiceStatusPending && inv.Status != models.InvoiceStatusPartial {
			continue
		}
		if !inv.DueDate.Before(asOf) {
			continue
		}
		rec := &models.DefaulterRecord{
			TenantID:      inv.TenantID,
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			StudentID:     inv.StudentID,
			AmountDue:     inv.TotalAmount - inv.PaidAmount,
			DueDate:       inv.DueDate,
			DaysOverdue:   int(asOf.Sub(inv.DueDate).Hours() / 24),
		}
		if s.logs != nil {
			rec.LastReminderDate, rec.ReminderCount = s.logs.sentHistory(inv.ID)
		}
		out = append(out, rec)
	}
	return out, nil
}

type memPaymentStore struct {
	mu       sync.Mutex
	invoices *memInvoiceStore
	payments map[string]*models.Payment
	byInv    map[string][]*models.Payment
	seq      int
}

func newMemPaymentStore(invoices *memInvoiceStore) *memPaymentStore {
	return &memPaymentStore{
		invoices: invoices,
		payments: make(map[string]*models.Payment),
		byInv:    make(map[string][]*models.Payment),
	}
}

func (s *memPaymentStore) GenerateReceiptNumber(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("RCP-%06d", s.seq), nil
}

// CreateCompleted mirrors the transactional repository: the ledger apply and
// the payment row commit together or not at all.
func (s *memPaymentStore) CreateCompleted(ctx context.Context, payment *models.Payment) (*models.Invoice, error) {
	s.invoices.mu.Lock()
	defer s.invoices.mu.Unlock()

	inv, err := s.invoices.applyLocked(payment.InvoiceID, payment.Amount)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if payment.ID == "" {
		payment.ID = fmt.Sprintf("pay-%s", payment.ReceiptNumber)
	}
	payment.TenantID = inv.TenantID
	payment.Status = models.PaymentStatusCompleted
	payment.PaymentDate = time.Now()
	s.payments[payment.ID] = payment
	s.byInv[payment.InvoiceID] = append(s.byInv[payment.InvoiceID], payment)
	return inv, nil
}

func (s *memPaymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	return p, nil
}

func (s *memPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byInv[invoiceID], nil
}

type memOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.PaymentOrder // by internal id
	seq    int
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: make(map[string]*models.PaymentOrder)}
}

func (s *memOrderStore) Create(ctx context.Context, order *models.PaymentOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if order.ID == "" {
		order.ID = fmt.Sprintf("ord-%d", s.seq)
	}
	order.Status = models.OrderStatusPending
	s.orders[order.ID] = order
	return nil
}

func (s *memOrderStore) SetProviderOrder(ctx context.Context, orderID, providerOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.ProviderOrderID = providerOrderID
	o.Status = models.OrderStatusCreated
	o.AttemptCount++
	return nil
}

func (s *memOrderStore) byProviderLocked(providerOrderID string) *models.PaymentOrder {
	for _, o := range s.orders {
		if o.ProviderOrderID == providerOrderID {
			return o
		}
	}
	return nil
}

func (s *memOrderStore) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*models.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.byProviderLocked(providerOrderID)
	if o == nil {
		return nil, models.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

// MarkCaptured is the CAS: only a pending or created order can transition,
// exactly like the conditional UPDATE in the repository.
func (s *memOrderStore) MarkCaptured(ctx context.Context, providerOrderID, providerPaymentID, signature string) (*models.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.byProviderLocked(providerOrderID)
	if o == nil {
		return nil, models.ErrOrderNotFound
	}
	if o.Status != models.OrderStatusPending && o.Status != models.OrderStatusCreated {
		return nil, models.ErrOrderTerminal
	}
	now := time.Now()
	o.Status = models.OrderStatusCaptured
	o.ProviderPaymentID = providerPaymentID
	o.ProviderSignature = signature
	o.PaidAt = &now
	cp := *o
	return &cp, nil
}

func (s *memOrderStore) MarkFailed(ctx context.Context, providerOrderID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.byProviderLocked(providerOrderID)
	if o == nil {
		return models.ErrOrderNotFound
	}
	if o.Status == models.OrderStatusCaptured {
		return models.ErrOrderTerminal
	}
	o.Status = models.OrderStatusFailed
	o.FailureReason = reason
	return nil
}

func (s *memOrderStore) MarkFailedByID(ctx context.Context, orderID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.Status = models.OrderStatusFailed
	o.FailureReason = reason
	return nil
}

func (s *memOrderStore) LinkPayment(ctx context.Context, orderID, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.PaymentID = paymentID
	return nil
}

func (s *memOrderStore) HasCapturedForInvoice(ctx context.Context, invoiceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.InvoiceID == invoiceID && o.Status == models.OrderStatusCaptured {
			return true, nil
		}
	}
	return false, nil
}

func (s *memOrderStore) ListUnreconciled(ctx context.Context) ([]*models.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PaymentOrder
	for _, o := range s.orders {
		if o.Status == models.OrderStatusCaptured && o.PaymentID == "" {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memNotificationLogStore struct {
	mu      sync.Mutex
	clock   func() time.Time
	entries []*models.NotificationLog
}

func (s *memNotificationLogStore) Create(ctx context.Context, logEntry *models.NotificationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		logEntry.CreatedAt = s.clock()
	} else {
		logEntry.CreatedAt = time.Now()
	}
	s.entries = append(s.entries, logEntry)
	return nil
}

func (s *memNotificationLogStore) ListByInvoice(ctx context.Context, invoiceID string, limit int) ([]*models.NotificationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.NotificationLog
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].InvoiceID == invoiceID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

// sentHistory mirrors the notification_logs aggregate in the defaulter query
func (s *memNotificationLogStore) sentHistory(invoiceID string) (*time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *time.Time
	count := 0
	for _, e := range s.entries {
		if e.InvoiceID != invoiceID || e.Status != "sent" {
			continue
		}
		count++
		if last == nil || e.CreatedAt.After(*last) {
			t := e.CreatedAt
			last = &t
		}
	}
	return last, count
}

type memStudentDirectory struct {
	students map[string]*models.Student
}

func (s *memStudentDirectory) Get(ctx context.Context, id string) (*models.Student, error) {
	st, ok := s.students[id]
	if !ok {
		return nil, models.ErrStudentNotFound
	}
	return st, nil
}

// fakeSender records every delivery and can be told to fail
type fakeSender struct {
	mu       sync.Mutex
	fail     error
	seq      int
	messages []string
	channels []notify.Channel
}

func (f *fakeSender) Send(ctx context.Context, channel notify.Channel, recipient, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.seq++
	f.messages = append(f.messages, message)
	f.channels = append(f.channels, channel)
	return fmt.Sprintf("msg-%d", f.seq), nil
}

// fakeGateway is a scripted GatewayClient
type fakeGateway struct {
	mu      sync.Mutex
	seq     int
	failErr error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return "", g.failErr
	}
	g.seq++
	return fmt.Sprintf("order_fake%03d", g.seq), nil
}

type memRunCache struct {
	mu   sync.Mutex
	runs map[string]*models.EscalationSummary
}

func newMemRunCache() *memRunCache {
	return &memRunCache{runs: make(map[string]*models.EscalationSummary)}
}

func (c *memRunCache) StoreRun(ctx context.Context, summary *models.EscalationSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[summary.TenantID] = summary
}

func (c *memRunCache) LastRun(ctx context.Context, tenantID string) (*models.EscalationSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.runs[tenantID]
	return s, ok
}
