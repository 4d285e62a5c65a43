package handlers

import (
	"errors"
	"net/http"

	"fees-backend/internal/models"
	"fees-backend/pkg/utils"
)

// writeServiceError maps the billing failure taxonomy to HTTP responses.
// The payer-facing distinction matters: "could not be verified" is
// retryable by the payer, "already settled" is not.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvoiceNotFound),
		errors.Is(err, models.ErrPaymentNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrStudentNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrOverpayment):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvoiceClosed),
		errors.Is(err, models.ErrAlreadyPaid),
		errors.Is(err, models.ErrOrderTerminal):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrSignatureInvalid):
		utils.Error(w, http.StatusBadRequest, "payment could not be verified")
	case errors.Is(err, models.ErrGatewayUnavailable):
		utils.Error(w, http.StatusBadGateway, "payment gateway unavailable, please retry")
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}
