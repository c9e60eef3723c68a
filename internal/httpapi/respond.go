package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/cart"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/order"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/payment"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/store"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, order.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, order.ErrCannotCancel), errors.Is(err, order.ErrCannotReturn):
		respondError(w, http.StatusBadRequest, "invalid_state", err.Error())
	case errors.Is(err, order.ErrEmptyOrder), errors.Is(err, order.ErrInvalidItem),
		errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, store.ErrBadQuery):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, payment.ErrGateway):
		respondError(w, http.StatusBadGateway, "gateway_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
