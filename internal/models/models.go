package models

import "time"

// Image is a hosted product image
type Image struct {
	URL string `json:"url"`
}

// Size is one size row of a variation. Quantity is the only stock signal;
// zero means out of stock.
type Size struct {
	ID       string `json:"_id"`
	Label    string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Variation is a color-specific sub-entity of a product with its own images
// and size breakdown. Owned by exactly one product.
type Variation struct {
	ID     string  `json:"_id"`
	Color  string  `json:"color"`
	Images []Image `json:"images"`
	Sizes  []Size  `json:"sizes"`
}

// Review is a customer review of a product
type Review struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product as served by the retailer backend. Read-only to this service.
type Product struct {
	ID             string      `json:"_id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	OriginalPrice  float64     `json:"originalPrice"`
	SalePrice      float64     `json:"salePrice,omitempty"`
	SalePercentage float64     `json:"salePercentage,omitempty"`
	Images         []Image     `json:"images"`
	Variations     []Variation `json:"variations"`
	Reviews        []Review    `json:"reviews,omitempty"`
	Rating         float64     `json:"rating"`
	NumReviews     int         `json:"numReviews"`
	SizeChart      string      `json:"sizeChartImage,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// UnitPrice returns the price a cart line pays: sale price when present,
// original price otherwise.
func (p *Product) UnitPrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.OriginalPrice
}

// DisplayProduct is a derived listing record, one per variation (or one per
// variationless product). Its ID is synthesized as "<productID>-<color>" and
// is only stable within a single listing response; it must never be persisted
// or used as a durable identifier.
type DisplayProduct struct {
	ID                string      `json:"_id"`
	OriginalProductID string      `json:"originalProductId"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Category          string      `json:"category"`
	OriginalPrice     float64     `json:"originalPrice"`
	SalePrice         float64     `json:"salePrice,omitempty"`
	SalePercentage    float64     `json:"salePercentage,omitempty"`
	Color             string      `json:"color,omitempty"`
	Images            []Image     `json:"images"`
	Sizes             []Size      `json:"sizes"`
	Rating            float64     `json:"rating"`
	NumReviews        int         `json:"numReviews"`
	AllVariations     []Variation `json:"allVariations,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// CartItem is one line of the cart, keyed by (product, variation, size)
type CartItem struct {
	ProductID   string  `json:"product"`
	VariationID string  `json:"variationId"`
	SizeID      string  `json:"sizeId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Image       string  `json:"image"`
	Quantity    int     `json:"qty"`
}

// CartRecord is the durable cart payload. Expiry is epoch milliseconds; a
// zero expiry marks a legacy record that is loaded as-is.
type CartRecord struct {
	Items  []CartItem `json:"items"`
	Expiry int64      `json:"expiry,omitempty"`
}

// Expired reports whether the record carries an expiry in the past.
func (r *CartRecord) Expired(now time.Time) bool {
	return r.Expiry > 0 && now.UnixMilli() > r.Expiry
}

// Announcement is one marquee banner entry
type Announcement struct {
	Active bool   `json:"active"`
	Text   string `json:"text"`
}

// DeliveryCharge is the shipping fee for one city
type DeliveryCharge struct {
	ID     string  `json:"_id"`
	City   string  `json:"city"`
	Charge float64 `json:"charge"`
}

// Discount types returned by the validation endpoint
const (
	DiscountTypePercentage   = "percentage"
	DiscountTypeBogo         = "bogo"
	DiscountTypeBogoDiscount = "bogo_discount"
)

// DiscountResult is the outcome of validating a discount code against the
// current cart. Either Valid with the typed fields, or Error.
type DiscountResult struct {
	Valid          bool    `json:"valid"`
	DiscountType   string  `json:"discountType,omitempty"`
	DiscountAmount float64 `json:"discountAmount,omitempty"`
	Percentage     float64 `json:"percentage,omitempty"`
	FreeQuantity   int     `json:"freeQuantity,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Payment methods
const (
	PaymentMethodCash     = "cash"
	PaymentMethodInstapay = "instapay"
	PaymentMethodVodafone = "vodafone"
)

// RequiresProof reports whether a payment method needs a transaction id or a
// proof-of-payment image.
func RequiresProof(method string) bool {
	return method == PaymentMethodInstapay || method == PaymentMethodVodafone
}

// GuestInfo identifies the customer on a guest order
type GuestInfo struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

// ShippingAddress is where the order ships
type ShippingAddress struct {
	City    string `json:"city"`
	Address string `json:"address"`
	Country string `json:"country"`
}

// OrderItem is one line of a persisted order as stored by the backend
type OrderItem struct {
	ID          string  `json:"_id,omitempty"`
	ProductID   string  `json:"product"`
	VariationID string  `json:"variationId"`
	SizeID      string  `json:"sizeId"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// OrderDiscount is the discount the backend applied to an order
type OrderDiscount struct {
	Code   string  `json:"code,omitempty"`
	Amount float64 `json:"amount"`
}

// Order is a persisted order. The service never mutates an order after
// submission; it only reads it back for confirmation display.
type Order struct {
	ID              string          `json:"_id"`
	GuestInfo       GuestInfo       `json:"guestInfo"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TransactionID   string          `json:"transactionId,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingFee     float64         `json:"shippingFee"`
	Discount        *OrderDiscount  `json:"discount,omitempty"`
	TotalPrice      float64         `json:"totalPrice"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Order statuses as stored by the backend
const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
)
