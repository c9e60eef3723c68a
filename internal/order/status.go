package order

import (
	"strings"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
)

// User-facing transitions enforce the delivery lifecycle:
//
//	processing -> confirmed -> shipped -> out_for_delivery -> delivered
//
// cancelled branches off processing/confirmed; return_requested is
// reachable only from shipped/delivered. The admin update path is
// deliberately permissive and does not run through these checks.

func canCancel(s domain.OrderStatus) bool {
	return s == domain.StatusProcessing || s == domain.StatusConfirmed
}

func canReturn(s domain.OrderStatus) bool {
	return s == domain.StatusShipped || s == domain.StatusDelivered
}

var statusDescriptions = map[domain.OrderStatus]string{
	domain.StatusProcessing:     "Your order is being prepared",
	domain.StatusConfirmed:      "Your order has been confirmed",
	domain.StatusShipped:        "Your order has been shipped and is on the way",
	domain.StatusOutForDelivery: "Your order is out for delivery",
	domain.StatusDelivered:      "Your order has been delivered",
	domain.StatusCancelled:      "Your order has been cancelled",
}

func describeStatus(s domain.OrderStatus) string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return "Order status updated"
}

// displayStatus renders a status for timeline entries: "out_for_delivery"
// becomes "Out for delivery".
func displayStatus(s domain.OrderStatus) string {
	text := strings.ReplaceAll(string(s), "_", " ")
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}
