package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"fees-backend/internal/models"
	"fees-backend/internal/services"
	"fees-backend/pkg/utils"
)

type GatewayHandler struct {
	Service *services.GatewayService
}

func NewGatewayHandler(s *services.GatewayService) *GatewayHandler {
	return &GatewayHandler{Service: s}
}

// CheckoutStatus tells the frontend whether online payment is enabled.
// Public so the fee portal can decide whether to render the pay button.
func (h *GatewayHandler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Service.Status())
}

// CreateOrder opens a gateway order for an invoice balance
func (h *GatewayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// VerifyPayment handles the checkout callback after the payer completes
// payment on the gateway widget
func (h *GatewayHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Service.VerifyAndCapture(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, result)
}

// Webhook receives server-to-server gateway notifications. The HMAC is
// computed over the raw body, so the body must be read before decoding.
func (h *GatewayHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.Service.VerifyWebhookSignature(body, signature) {
		log.Printf("[Gateway] webhook signature mismatch from %s", r.RemoteAddr)
		utils.Error(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	var event struct {
		Event   string                 `json:"event"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid webhook body")
		return
	}

	if err := h.Service.ProcessWebhook(r.Context(), event.Event, event.Payload); err != nil {
		// Non-2xx makes the gateway redeliver; capture is idempotent so
		// redelivery is safe.
		log.Printf("[Gateway] webhook %s processing failed: %v", event.Event, err)
		utils.Error(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
