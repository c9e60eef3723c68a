// Package pricing turns order line items into a price breakdown. It is a
// pure computation: no I/O, integer currency units throughout, so repeated
// calls with the same input always produce the same output.
package pricing

import "github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"

const (
	// TaxRatePercent is the fixed GST rate applied to the subtotal.
	TaxRatePercent = 18

	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = 10000

	// FlatShippingFee applies to every order at or below the threshold.
	FlatShippingFee = 100
)

type Breakdown struct {
	Subtotal int64
	Tax      int64
	Shipping int64
	Discount int64
	Total    int64
}

// Price computes the breakdown for a set of line items and a pre-validated
// coupon discount. Tax is rounded half-up to the nearest currency unit.
func Price(items []domain.OrderItem, couponDiscount int64) Breakdown {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Price * int64(it.Quantity)
	}

	tax := (subtotal*TaxRatePercent + 50) / 100

	var shipping int64 = FlatShippingFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: couponDiscount,
		Total:    subtotal + tax + shipping - couponDiscount,
	}
}
