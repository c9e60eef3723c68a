package domain

import "time"

type OrderStatus string

const (
	StatusProcessing      OrderStatus = "processing"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusShipped         OrderStatus = "shipped"
	StatusOutForDelivery  OrderStatus = "out_for_delivery"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusReturnRequested OrderStatus = "return_requested"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	MethodCOD        PaymentMethod = "COD"
	MethodCard       PaymentMethod = "CARD"
	MethodUPI        PaymentMethod = "UPI"
	MethodQR         PaymentMethod = "QR"
	MethodNetBanking PaymentMethod = "NETBANKING"
)

// OrderItem is a snapshot of one product at order-creation time.
// Catalog changes after the order is placed do not affect it.
type OrderItem struct {
	ProductID string `bson:"product_id" json:"productId"`
	Name      string `bson:"name" json:"name"`
	Price     int64  `bson:"price" json:"price"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	Subtotal  int64  `bson:"subtotal" json:"subtotal"`
}

type ShippingAddress struct {
	FullName string `bson:"fullname,omitempty" json:"fullname,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Street   string `bson:"street,omitempty" json:"street,omitempty"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode  string `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Country  string `bson:"country,omitempty" json:"country,omitempty"`
}

// TimelineEntry is one milestone in an order's delivery history.
// Entries are appended, never edited or removed.
type TimelineEntry struct {
	Status      string    `bson:"status" json:"status"`
	Date        time.Time `bson:"date" json:"date"`
	Location    string    `bson:"location" json:"location"`
	Description string    `bson:"description" json:"description"`
	Completed   bool      `bson:"completed" json:"completed"`
}

type Tracking struct {
	Carrier           string          `bson:"carrier,omitempty" json:"carrier,omitempty"`
	TrackingNumber    string          `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	CurrentLocation   string          `bson:"current_location,omitempty" json:"currentLocation,omitempty"`
	EstimatedDelivery *time.Time      `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
	Timeline          []TimelineEntry `bson:"timeline" json:"timeline"`
}

// Order is immutable after creation except for status, payment status,
// tracking and the updated_at stamp. The price fields are stored values
// computed once at creation and never recomputed.
type Order struct {
	ID              string          `bson:"_id,omitempty" json:"id"`
	UserID          string          `bson:"user_id,omitempty" json:"userId,omitempty"`
	OrderNumber     string          `bson:"order_number" json:"orderNumber"`
	Items           []OrderItem     `bson:"items" json:"items"`
	ShippingAddress ShippingAddress `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `bson:"payment_method" json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `bson:"payment_status" json:"paymentStatus"`
	TransactionID   string          `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	Status          OrderStatus     `bson:"status" json:"status"`
	Tracking        Tracking        `bson:"tracking" json:"tracking"`
	Subtotal        int64           `bson:"subtotal" json:"subtotal"`
	Tax             int64           `bson:"tax" json:"tax"`
	Shipping        int64           `bson:"shipping" json:"shipping"`
	CouponCode      string          `bson:"coupon_code,omitempty" json:"couponCode,omitempty"`
	CouponDiscount  int64           `bson:"coupon_discount" json:"couponDiscount"`
	Total           int64           `bson:"total" json:"total"`
	Notes           string          `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}
