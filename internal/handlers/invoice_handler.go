package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fees-backend/internal/middleware"
	"fees-backend/internal/models"
	"fees-backend/internal/services"
	"fees-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type InvoiceHandler struct {
	Service  *services.InvoiceService
	Payments *services.PaymentService
}

func NewInvoiceHandler(s *services.InvoiceService, p *services.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{Service: s, Payments: p}
}

// CreateInvoice creates a new invoice
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if role != "admin" && role != "accountant" {
		utils.Error(w, http.StatusForbidden, "Forbidden - accountant or admin access required")
		return
	}

	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if tenantID, ok := middleware.GetTenantIDFromContext(r.Context()); ok && req.TenantID == "" {
		req.TenantID = tenantID
	}

	invoice, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, invoice)
}

// GetInvoice retrieves an invoice by ID
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	invoice, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, invoice)
}

// ListInvoices lists invoices filtered by student and status
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	filter := &models.InvoiceFilter{
		StudentID: r.URL.Query().Get("student_id"),
		Status:    models.InvoiceStatus(r.URL.Query().Get("status")),
	}
	if tenantID, ok := middleware.GetTenantIDFromContext(r.Context()); ok {
		filter.TenantID = tenantID
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	invoices, err := h.Service.List(r.Context(), filter)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, invoices)
}

// CancelInvoice voids an invoice that has not collected any money
func (h *InvoiceHandler) CancelInvoice(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok || role != "admin" {
		utils.Error(w, http.StatusForbidden, "Forbidden - admin access required")
		return
	}

	id := mux.Vars(r)["id"]

	invoice, err := h.Service.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, invoice)
}

// ListInvoicePayments returns the payment history of one invoice
func (h *InvoiceHandler) ListInvoicePayments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	payments, err := h.Payments.ListForInvoice(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, payments)
}
