package models

import "time"

// Conversion event types
const (
	EventTypeViewProduct   = "VIEW_PRODUCT"
	EventTypeAddToCart     = "ADD_TO_CART"
	EventTypeBeginCheckout = "BEGIN_CHECKOUT"
	EventTypePurchase      = "PURCHASE"
)

// BaseEvent contains common fields for all conversion events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// EventContent is one product line carried by a conversion event
type EventContent struct {
	ProductID string  `json:"id"`
	Quantity  int     `json:"quantity"`
	ItemPrice float64 `json:"item_price"`
}

// ViewProductEvent published when a product detail view loads
type ViewProductEvent struct {
	BaseEvent
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Currency  string  `json:"currency"`
}

// AddToCartEvent published when a line item is added to a cart
type AddToCartEvent struct {
	BaseEvent
	CartID    string  `json:"cart_id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Currency  string  `json:"currency"`
}

// BeginCheckoutEvent published when a checkout submission passes validation
type BeginCheckoutEvent struct {
	BaseEvent
	CartID   string         `json:"cart_id"`
	Value    float64        `json:"value"`
	Currency string         `json:"currency"`
	Contents []EventContent `json:"contents"`
}

// PurchaseEvent published once per successful order confirmation load
type PurchaseEvent struct {
	BaseEvent
	OrderID  string         `json:"order_id"`
	Value    float64        `json:"value"`
	Currency string         `json:"currency"`
	Contents []EventContent `json:"contents"`
}
