package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/order"
)

type AdminHandler struct {
	orders *order.Service
}

func NewAdminHandler(orders *order.Service) *AdminHandler {
	return &AdminHandler{orders: orders}
}

type trackingPatchRequest struct {
	Carrier           *string    `json:"carrier"`
	TrackingNumber    *string    `json:"trackingNumber"`
	CurrentLocation   *string    `json:"currentLocation"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

type adminUpdateRequest struct {
	Status        *domain.OrderStatus   `json:"status"`
	Tracking      *trackingPatchRequest `json:"tracking"`
	PaymentStatus *domain.PaymentStatus `json:"paymentStatus"`
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	result, err := h.orders.AdminList(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pages := result.Total / limit
	if result.Total%limit != 0 {
		pages++
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"orders": result.Orders,
		"pagination": map[string]any{
			"current": page,
			"pages":   pages,
			"total":   result.Total,
		},
	})
}

func (h *AdminHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req adminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	in := order.AdminUpdate{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	}
	if req.Tracking != nil {
		in.Tracking = &order.TrackingPatch{
			Carrier:           req.Tracking.Carrier,
			TrackingNumber:    req.Tracking.TrackingNumber,
			CurrentLocation:   req.Tracking.CurrentLocation,
			EstimatedDelivery: req.Tracking.EstimatedDelivery,
		}
	}

	o, err := h.orders.AdminApply(r.Context(), chi.URLParam(r, "orderID"), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Order updated successfully", "order": o})
}
