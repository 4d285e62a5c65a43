package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fees-backend/internal/middleware"
	"fees-backend/internal/models"
	"fees-backend/internal/services"
	"fees-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type PaymentHandler struct {
	Service  *services.PaymentService
	Receipts *services.ReceiptService
}

func NewPaymentHandler(s *services.PaymentService, rc *services.ReceiptService) *PaymentHandler {
	return &PaymentHandler{Service: s, Receipts: rc}
}

// RecordPayment records an offline payment against an invoice
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	role, _ := middleware.GetRoleFromContext(r.Context())
	if role != "admin" && role != "accountant" {
		utils.Error(w, http.StatusForbidden, "Forbidden - accountant or admin access required")
		return
	}

	var req models.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, invoice, err := h.Service.RecordPayment(r.Context(), &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"payment": payment,
		"invoice": invoice,
	})
}

// GetPayment retrieves a payment by ID
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	payment, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, payment)
}

// DownloadReceipt streams the PDF receipt for a completed payment
func (h *PaymentHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pdf, err := h.Receipts.PaymentReceiptPDF(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_%s.pdf", id))
	w.Write(pdf)
}
