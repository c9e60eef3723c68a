package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/metrics"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/payment"
)

type PaymentHandler struct {
	gateway *payment.Gateway
	metrics *metrics.Metrics
}

func NewPaymentHandler(gateway *payment.Gateway, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, metrics: m}
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type verifyRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	intent, err := h.gateway.CreateIntent(r.Context(), req.Amount, req.Currency, req.Receipt)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"order_id": intent.ID,
		"amount":   intent.Amount,
		"currency": intent.Currency,
	})
}

// VerifySignature checks the gateway callback signature. It mutates no
// order state; a failed check is a 200 with success=false so the client
// can distinguish "bad signature" from transport failures.
func (h *PaymentHandler) VerifySignature(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "gatewayOrderId, gatewayPaymentId and signature are required")
		return
	}

	ok := h.gateway.Verify(req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if h.metrics != nil {
		result := "failure"
		if ok {
			result = "success"
		}
		h.metrics.PaymentVerifications.WithLabelValues(result).Inc()
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": ok})
}
