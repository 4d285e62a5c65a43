package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fees-backend/internal/middleware"
	"fees-backend/internal/models"
	"fees-backend/internal/services"
	"fees-backend/internal/timeutil"
	"fees-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type DefaulterHandler struct {
	Service  *services.EscalationService
	Receipts *services.ReceiptService
}

func NewDefaulterHandler(s *services.EscalationService, rc *services.ReceiptService) *DefaulterHandler {
	return &DefaulterHandler{Service: s, Receipts: rc}
}

// ProcessDefaulters runs one escalation sweep for the caller's tenant
func (h *DefaulterHandler) ProcessDefaulters(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok || role != "admin" {
		utils.Error(w, http.StatusForbidden, "Forbidden - admin access required")
		return
	}

	var req models.ProcessDefaultersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if tenantID, ok := middleware.GetTenantIDFromContext(r.Context()); ok && req.TenantID == "" {
		req.TenantID = tenantID
	}
	if req.TenantID == "" {
		utils.Error(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	summary, err := h.Service.ProcessDefaulters(r.Context(), req.TenantID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, summary)
}

// ListDefaulters returns the current overdue snapshot without notifying
func (h *DefaulterHandler) ListDefaulters(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.Service.IdentifyDefaulters(r.Context(), tenantID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, records)
}

// LastRun returns the summary of the most recent escalation sweep
func (h *DefaulterHandler) LastRun(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, found := h.Service.LastRun(r.Context(), tenantID)
	if !found {
		utils.Error(w, http.StatusNotFound, "No escalation run recorded")
		return
	}

	utils.JSON(w, http.StatusOK, summary)
}

// ReminderHistory returns the delivery log for one invoice
func (h *DefaulterHandler) ReminderHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	logs, err := h.Service.ReminderHistory(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, logs)
}

// DownloadReport streams the defaulter list as a PDF
func (h *DefaulterHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.Service.IdentifyDefaulters(r.Context(), tenantID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	pdf, err := h.Receipts.DefaulterReportPDF(r.Context(), tenantID, records)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=defaulters_%s.pdf", timeutil.Now().Format(timeutil.DateLayout)))
	w.Write(pdf)
}
