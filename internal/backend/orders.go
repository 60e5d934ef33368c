package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"storefront-service/internal/models"
)

// DiscountItem is one cart line sent to the discount validation endpoint
type DiscountItem struct {
	ProductID string  `json:"product"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// ValidateDiscount asks the backend whether a code is valid for the given
// cart snapshot and how much it discounts.
func (c *Client) ValidateDiscount(ctx context.Context, code string, items []DiscountItem) (*models.DiscountResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"code":       code,
		"orderItems": items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal discount request: %w", err)
	}

	body, err := c.do(ctx, "validate_discount", http.MethodPost, "/discounts/validate", nil, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}

	var result models.DiscountResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode discount result: %w", err)
	}
	return &result, nil
}

// CheckoutItem is one cart line in the multipart order payload
type CheckoutItem struct {
	ProductID   string `json:"product"`
	VariationID string `json:"variationId"`
	SizeID      string `json:"sizeId"`
	Quantity    int    `json:"qty"`
	Color       string `json:"color"`
	Size        string `json:"size"`
}

// ProofImage is an uploaded proof-of-payment file
type ProofImage struct {
	Filename string
	Data     []byte
}

// OrderRequest is everything needed to create an order
type OrderRequest struct {
	Name            string
	Email           string
	Phone           string
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	TransactionID   string
	ProofImage      *ProofImage
	OrderItems      []CheckoutItem
	DiscountCode    string
}

// CreateOrder submits the multipart order payload and returns the created
// order. The response is tolerated as a bare order or {order: {...}}.
func (c *Client) CreateOrder(ctx context.Context, req *OrderRequest) (*models.Order, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeOrderForm(w, req); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart payload: %w", err)
	}

	body, err := c.do(ctx, "create_order", http.MethodPost, "/orders", nil, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := decodeObject(body, &order, "order"); err != nil {
		return nil, fmt.Errorf("failed to decode created order: %w", err)
	}
	return &order, nil
}

func writeOrderForm(w *multipart.Writer, req *OrderRequest) error {
	if err := w.WriteField("name", req.Name); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if req.Email != "" {
		if err := w.WriteField("email", req.Email); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := w.WriteField("phone", req.Phone); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}

	address, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}
	if err := w.WriteField("shippingAddress", string(address)); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}

	if err := w.WriteField("paymentMethod", req.PaymentMethod); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	// transactionId is always present, empty when unused
	if err := w.WriteField("transactionId", req.TransactionID); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}

	if req.ProofImage != nil {
		fw, err := w.CreateFormFile("proofImage", req.ProofImage.Filename)
		if err != nil {
			return fmt.Errorf("failed to attach proof image: %w", err)
		}
		if _, err := fw.Write(req.ProofImage.Data); err != nil {
			return fmt.Errorf("failed to write proof image: %w", err)
		}
	}

	if req.DiscountCode != "" {
		if err := w.WriteField("discountCode", req.DiscountCode); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	items, err := json.Marshal(req.OrderItems)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	if err := w.WriteField("orderItems", string(items)); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	return nil
}

// GetOrder fetches a persisted order for confirmation display
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	path := "/orders/public/" + url.PathEscape(orderID)
	body, err := c.do(ctx, "get_order", http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := decodeObject(body, &order, "order"); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return &order, nil
}
