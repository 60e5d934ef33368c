package checkout

import (
	"math"

	"storefront-service/internal/models"
)

// Confirmation is the order confirmation view: the stored order plus totals
// recomputed locally from its line items. When the recomputed total disagrees
// with the server-stored one, both are shown rather than silently trusting
// either side.
type Confirmation struct {
	Order          *models.Order `json:"order"`
	Subtotal       float64       `json:"subtotal"`
	ShippingFee    float64       `json:"shippingFee"`
	DiscountAmount float64       `json:"discountAmount"`
	Total          float64       `json:"total"`
	ServerTotal    float64       `json:"serverTotal"`
	TotalMismatch  bool          `json:"totalMismatch"`
}

// Subtotal sums price times quantity over the order's line items
func Subtotal(items []models.OrderItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// CartSubtotal sums price times quantity over the cart's line items
func CartSubtotal(items []models.CartItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// BuildConfirmation recomputes the order totals from its line items
func BuildConfirmation(order *models.Order) *Confirmation {
	subtotal := Subtotal(order.OrderItems)

	var discount float64
	if order.Discount != nil {
		discount = order.Discount.Amount
	}

	total := subtotal + order.ShippingFee - discount

	return &Confirmation{
		Order:          order,
		Subtotal:       subtotal,
		ShippingFee:    order.ShippingFee,
		DiscountAmount: discount,
		Total:          total,
		ServerTotal:    order.TotalPrice,
		TotalMismatch:  math.Abs(total-order.TotalPrice) > 0.005,
	}
}
