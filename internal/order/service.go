// Package order owns the order lifecycle: turning a cart snapshot into an
// immutable priced order, the user-facing state machine, and the admin
// transition path.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/metrics"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/notify"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/pricing"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/store"
)

var (
	ErrEmptyOrder   = errors.New("order has no items")
	ErrInvalidItem  = errors.New("item quantity must be at least 1")
	ErrForbidden    = errors.New("access denied")
	ErrCannotCancel = errors.New("order cannot be cancelled once shipped")
	ErrCannotReturn = errors.New("only shipped or delivered orders can be returned")
)

const (
	defaultCarrier  = "Atlas Express"
	defaultLocation = "Atlas Arrow Warehouse"
)

// ProductResolver resolves product references for line-item snapshots.
type ProductResolver interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// CartClearer empties a user's cart after a successful order.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// Notifier schedules a message without blocking.
type Notifier interface {
	Send(msg notify.Message)
}

type Service struct {
	orders   store.Collection[domain.Order]
	products ProductResolver
	carts    CartClearer
	notifier Notifier
	metrics  *metrics.Metrics
	log      *logrus.Logger
}

func NewService(orders store.Collection[domain.Order], products ProductResolver, carts CartClearer, notifier Notifier, m *metrics.Metrics, log *logrus.Logger) *Service {
	return &Service{orders: orders, products: products, carts: carts, notifier: notifier, metrics: m, log: log}
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

type PlaceInput struct {
	Items           []ItemInput
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
	CouponCode      string
	CouponDiscount  int64
	TransactionID   string
	Notes           string
}

// Place converts a cart snapshot into a persisted order. Line items are
// priced from the catalog at this moment and frozen. The cart clear and
// the confirmation notification run after the order commit and cannot
// fail it.
func (s *Service) Place(ctx context.Context, userID string, in PlaceInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, ErrInvalidItem
		}
		product, err := s.products.Get(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, err)
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  it.Quantity,
			Subtotal:  product.Price * int64(it.Quantity),
		})
	}

	breakdown := pricing.Price(items, in.CouponDiscount)

	method := in.PaymentMethod
	if method == "" {
		method = domain.MethodCard
	}

	// Client-settled methods arrive paid; a gateway transaction id means
	// the payment is still pending signature verification.
	status, payStatus := domain.StatusConfirmed, domain.PaymentCompleted
	if in.TransactionID != "" {
		status, payStatus = domain.StatusProcessing, domain.PaymentPending
	}

	now := time.Now().UTC()
	o := domain.Order{
		UserID:          userID,
		OrderNumber:     newOrderNumber(),
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   method,
		PaymentStatus:   payStatus,
		TransactionID:   in.TransactionID,
		Status:          status,
		Tracking: domain.Tracking{
			Carrier:         defaultCarrier,
			CurrentLocation: defaultLocation,
			Timeline: []domain.TimelineEntry{{
				Status:      displayStatus(status),
				Date:        now,
				Location:    defaultLocation,
				Description: describeStatus(status),
				Completed:   true,
			}},
		},
		Subtotal:       breakdown.Subtotal,
		Tax:            breakdown.Tax,
		Shipping:       breakdown.Shipping,
		CouponCode:     in.CouponCode,
		CouponDiscount: breakdown.Discount,
		Total:          breakdown.Total,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// The order is committed; a failed cart clear must not undo it.
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user", userID).Warn("cart clear after order failed")
	}

	s.notifier.Send(notify.Message{
		Kind:      notify.KindOrderConfirmation,
		Recipient: userID,
		UserID:    userID,
		Subject:   fmt.Sprintf("Order %s confirmed", o.OrderNumber),
		Body:      fmt.Sprintf("Your order %s for %d has been placed. %s", o.OrderNumber, o.Total, describeStatus(o.Status)),
	})

	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}
	s.log.WithFields(logrus.Fields{"order": o.OrderNumber, "user": userID, "total": o.Total}).Info("order placed")
	return &o, nil
}

// Get returns one order, enforcing ownership for non-admin callers.
func (s *Service) Get(ctx context.Context, userID string, isAdmin bool, orderID string) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListForUser returns the caller's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.Find(ctx,
		store.Where("user_id", store.OpEq, userID),
		&store.FindOptions{SortField: "created_at", SortDesc: true})
}

// TrackByNumber is the public tracking lookup. The owner reference is
// redacted from the result.
func (s *Service) TrackByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	o, err := s.orders.FindOne(ctx, store.Where("order_number", store.OpEq, orderNumber))
	if err != nil {
		return nil, err
	}
	o.UserID = ""
	return o, nil
}

// Cancel is permitted only before shipment.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.userTransition(ctx, userID, orderID, domain.StatusCancelled, canCancel, ErrCannotCancel)
}

// RequestReturn is permitted only after shipment.
func (s *Service) RequestReturn(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.userTransition(ctx, userID, orderID, domain.StatusReturnRequested, canReturn, ErrCannotReturn)
}

func (s *Service) userTransition(ctx context.Context, userID, orderID string, target domain.OrderStatus, allowed func(domain.OrderStatus) bool, illegal error) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	if !allowed(o.Status) {
		return nil, illegal
	}

	now := time.Now().UTC()
	err = s.orders.Update(ctx, orderID, map[string]any{
		"status":     target,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}

	o.Status = target
	o.UpdatedAt = now
	return o, nil
}

// AdminPage is one page of the admin order listing.
type AdminPage struct {
	Orders []domain.Order
	Total  int64
}

func (s *Service) AdminList(ctx context.Context, status string, page, limit int64) (*AdminPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	q := store.All()
	if status != "" && status != "all" {
		q = q.And("status", store.OpEq, status)
	}

	orders, err := s.orders.Find(ctx, q, &store.FindOptions{
		SortField: "created_at",
		SortDesc:  true,
		Skip:      (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	total, err := s.orders.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	return &AdminPage{Orders: orders, Total: total}, nil
}

// TrackingPatch merges field by field; absent fields leave the stored
// value untouched.
type TrackingPatch struct {
	Carrier           *string
	TrackingNumber    *string
	CurrentLocation   *string
	EstimatedDelivery *time.Time
}

type AdminUpdate struct {
	Status        *domain.OrderStatus
	Tracking      *TrackingPatch
	PaymentStatus *domain.PaymentStatus
}

// AdminApply updates status, tracking and payment status in one shot. A
// status change appends a timeline entry and schedules a notification;
// setting the status to its current value does neither. The admin path
// intentionally allows any target status, including backwards moves.
func (s *Service) AdminApply(ctx context.Context, orderID string, in AdminUpdate) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fields := map[string]any{"updated_at": now}
	statusChanged := false

	if in.Status != nil && *in.Status != o.Status {
		statusChanged = true
		o.Status = *in.Status
		fields["status"] = o.Status

		location := o.Tracking.CurrentLocation
		if in.Tracking != nil && in.Tracking.CurrentLocation != nil {
			location = *in.Tracking.CurrentLocation
		}
		if location == "" {
			location = defaultLocation
		}

		o.Tracking.Timeline = append(o.Tracking.Timeline, domain.TimelineEntry{
			Status:      displayStatus(o.Status),
			Date:        now,
			Location:    location,
			Description: describeStatus(o.Status),
			Completed:   true,
		})
		fields["tracking.timeline"] = o.Tracking.Timeline
	}

	if in.Tracking != nil {
		if in.Tracking.Carrier != nil {
			o.Tracking.Carrier = *in.Tracking.Carrier
			fields["tracking.carrier"] = o.Tracking.Carrier
		}
		if in.Tracking.TrackingNumber != nil {
			o.Tracking.TrackingNumber = *in.Tracking.TrackingNumber
			fields["tracking.tracking_number"] = o.Tracking.TrackingNumber
		}
		if in.Tracking.CurrentLocation != nil {
			o.Tracking.CurrentLocation = *in.Tracking.CurrentLocation
			fields["tracking.current_location"] = o.Tracking.CurrentLocation
		}
		if in.Tracking.EstimatedDelivery != nil {
			o.Tracking.EstimatedDelivery = in.Tracking.EstimatedDelivery
			fields["tracking.estimated_delivery"] = *in.Tracking.EstimatedDelivery
		}
	}

	if in.PaymentStatus != nil {
		o.PaymentStatus = *in.PaymentStatus
		fields["payment_status"] = o.PaymentStatus
	}

	if err := s.orders.Update(ctx, orderID, fields); err != nil {
		return nil, err
	}
	o.UpdatedAt = now

	if statusChanged {
		s.notifier.Send(notify.Message{
			Kind:      notify.KindOrderStatusChange,
			Recipient: o.UserID,
			UserID:    o.UserID,
			Subject:   fmt.Sprintf("Order %s: %s", o.OrderNumber, displayStatus(o.Status)),
			Body:      describeStatus(o.Status),
		})
	}
	return o, nil
}
