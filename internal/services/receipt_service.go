package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"fees-backend/internal/models"
	"fees-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReceiptService renders payment receipts and defaulter reports as PDFs
type ReceiptService struct {
	payments PaymentStore
	invoices InvoiceStore
	students StudentDirectory
}

func NewReceiptService(payments PaymentStore, invoices InvoiceStore, students StudentDirectory) *ReceiptService {
	return &ReceiptService{payments: payments, invoices: invoices, students: students}
}

// PaymentReceiptPDF renders an A4 receipt for one completed payment
func (s *ReceiptService) PaymentReceiptPDF(ctx context.Context, paymentID string) ([]byte, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoices.GetByID(ctx, payment.InvoiceID)
	if err != nil {
		return nil, err
	}

	studentName := invoice.StudentID
	if student, err := s.students.Get(ctx, invoice.StudentID); err == nil {
		studentName = student.Name
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Fee Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.FormatIST(timeutil.Now(), timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Receipt %s", payment.ReceiptNumber), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Student: %s", studentName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Invoice: %s", invoice.InvoiceNumber), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Method: %s", strings.ToUpper(string(payment.Method))), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", timeutil.FormatIST(payment.PaymentDate, timeutil.DisplayLayout)), "RB", 1, "L", false, 0, "")
	if payment.TransactionRef != "" {
		pdf.CellFormat(190, 7, fmt.Sprintf("Reference: %s", payment.TransactionRef), "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(200, 255, 200)
	pdf.CellFormat(190, 10, fmt.Sprintf("Amount Paid: Rs. %.2f", float64(payment.Amount)/100), "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Invoice Total: Rs. %.2f", float64(invoice.TotalAmount)/100), "1", 0, "C", false, 0, "")
	balanceText := fmt.Sprintf("Balance Due: Rs. %.2f", float64(invoice.BalanceAmount)/100)
	if invoice.Status == models.InvoiceStatusPaid {
		balanceText = "FULLY PAID"
	}
	pdf.CellFormat(95, 8, balanceText, "1", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaulterReportPDF renders a landscape table of a tenant's defaulters
func (s *ReceiptService) DefaulterReportPDF(ctx context.Context, tenantID string, records []*models.DefaulterRecord) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Fee Defaulter Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Tenant: %s | Generated: %s", tenantID,
		timeutil.FormatIST(timeutil.Now(), timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(40, 7, "Invoice", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 7, "Student", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Amount Due", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Due Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Days Over", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Last Reminder", "1", 0, "C", true, 0, "")
	pdf.CellFormat(37, 7, "Reminders", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	var totalDue int64
	for _, rec := range records {
		studentName := rec.StudentID
		if student, err := s.students.Get(ctx, rec.StudentID); err == nil {
			studentName = student.Name
		}
		if len(studentName) > 30 {
			studentName = studentName[:27] + "..."
		}

		lastReminder := "-"
		if rec.LastReminderDate != nil {
			lastReminder = timeutil.FormatIST(*rec.LastReminderDate, timeutil.DateLayout)
		}

		pdf.CellFormat(40, 6, rec.InvoiceNumber, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, studentName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %.2f", float64(rec.AmountDue)/100), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, timeutil.FormatIST(rec.DueDate, timeutil.DateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", rec.DaysOverdue), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, lastReminder, "1", 0, "C", false, 0, "")
		pdf.CellFormat(37, 6, fmt.Sprintf("%d", rec.ReminderCount), "1", 1, "C", false, 0, "")

		totalDue += rec.AmountDue
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(255, 200, 200)
	pdf.CellFormat(277, 9, fmt.Sprintf("%d defaulters | Total outstanding: Rs. %.2f",
		len(records), float64(totalDue)/100), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
