package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fees-backend/internal/models"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.ErrInvoiceNotFound, http.StatusNotFound},
		{models.ErrPaymentNotFound, http.StatusNotFound},
		{models.ErrOrderNotFound, http.StatusNotFound},
		{models.ErrStudentNotFound, http.StatusNotFound},
		{models.ErrInvalidAmount, http.StatusBadRequest},
		{models.ErrOverpayment, http.StatusBadRequest},
		{models.ErrInvoiceClosed, http.StatusConflict},
		{models.ErrAlreadyPaid, http.StatusConflict},
		{models.ErrOrderTerminal, http.StatusConflict},
		{models.ErrSignatureInvalid, http.StatusBadRequest},
		{models.ErrGatewayUnavailable, http.StatusBadGateway},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tc.err)
		if rec.Code != tc.code {
			t.Errorf("%v: got status %d, want %d", tc.err, rec.Code, tc.code)
		}
	}

	// Wrapped errors still map through errors.Is
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("x: "+models.ErrOverpayment.Error()))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("string match must not map, got %d", rec.Code)
	}
}

func TestSignatureFailureDoesNotLeakDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, models.ErrSignatureInvalid)
	if strings.Contains(rec.Body.String(), "signature") {
		t.Errorf("payer-facing body should not mention the signature check: %s", rec.Body.String())
	}
}
