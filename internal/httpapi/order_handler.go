package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/order"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
	CouponCode      string                 `json:"couponCode"`
	CouponDiscount  int64                  `json:"couponDiscount"`
	TransactionID   string                 `json:"transactionId"`
	Notes           string                 `json:"notes"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	in := order.PlaceInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
		CouponDiscount:  req.CouponDiscount,
		TransactionID:   req.TransactionID,
		Notes:           req.Notes,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, order.ItemInput{ProductID: it.Product, Quantity: it.Quantity})
	}

	o, err := h.orders.Place(r.Context(), uid, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "Order placed successfully", "order": o})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListForUser(r.Context(), uid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), uid, isAdmin(r), chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Track is public by design: anyone holding an order number can follow the
// delivery without authenticating.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.TrackByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Cancel(r.Context(), uid, chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Order cancelled successfully", "order": o})
}

func (h *OrderHandler) Return(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}

	o, err := h.orders.RequestReturn(r.Context(), uid, chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Return request submitted successfully", "order": o})
}
