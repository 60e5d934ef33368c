package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Client consumes the retailer backend API over plain HTTP. The backend owns
// the catalog, discount rules and orders; this client never caches or retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: util.GetLogger(),
	}
}

// APIError is a non-2xx response from the backend carrying its message
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// GetAnnouncements retrieves the banner entries
func (c *Client) GetAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	body, err := c.do(ctx, "get_announcements", http.MethodGet, "/announcement", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var announcements []models.Announcement
	if err := decodeList(body, &announcements, "announcements", "items"); err != nil {
		return nil, fmt.Errorf("failed to decode announcements: %w", err)
	}
	return announcements, nil
}

// GetProducts retrieves the catalog, optionally filtered by category
func (c *Client) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	var query url.Values
	if category != "" {
		query = url.Values{"category": {category}}
	}

	body, err := c.do(ctx, "get_products", http.MethodGet, "/products", query, nil, "")
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := decodeList(body, &products, "products", "items"); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetFeaturedProducts retrieves the curated featured subset
func (c *Client) GetFeaturedProducts(ctx context.Context) ([]models.Product, error) {
	body, err := c.do(ctx, "get_featured", http.MethodGet, "/products/featured", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := decodeList(body, &products, "products", "items"); err != nil {
		return nil, fmt.Errorf("failed to decode featured products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single product with its variations and reviews
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	body, err := c.do(ctx, "get_product", http.MethodGet, "/products/"+url.PathEscape(productID), nil, nil, "")
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := decodeObject(body, &product, "product"); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return &product, nil
}

// GetReviews retrieves the reviews of a product
func (c *Client) GetReviews(ctx context.Context, productID string) ([]models.Review, error) {
	path := "/products/" + url.PathEscape(productID) + "/reviews"
	body, err := c.do(ctx, "get_reviews", http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, err
	}

	var reviews []models.Review
	if err := decodeList(body, &reviews, "reviews", "items"); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

// ReviewRequest is a review submission
type ReviewRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview submits a product review
func (c *Client) CreateReview(ctx context.Context, productID string, review *ReviewRequest) error {
	payload, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("failed to marshal review: %w", err)
	}

	path := "/products/" + url.PathEscape(productID) + "/reviews"
	_, err = c.do(ctx, "create_review", http.MethodPost, path, nil, bytes.NewReader(payload), "application/json")
	return err
}

// GetDeliveryCharges retrieves the per-city shipping fees
func (c *Client) GetDeliveryCharges(ctx context.Context) ([]models.DeliveryCharge, error) {
	body, err := c.do(ctx, "get_delivery_charges", http.MethodGet, "/delivery-charges/public", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var charges []models.DeliveryCharge
	if err := decodeList(body, &charges, "deliveryCharges", "items"); err != nil {
		return nil, fmt.Errorf("failed to decode delivery charges: %w", err)
	}
	return charges, nil
}

// do performs one request against the backend and returns the response body.
// Non-2xx responses are returned as *APIError with the backend's message.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.BackendRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	util.BackendRequestDuration.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: extractMessage(respBody)}
		c.logger.Warn("Backend request failed",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	return respBody, nil
}

func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return "request failed"
}

// decodeList decodes either a bare JSON array or an object wrapping the array
// under one of the given keys. The backend serves both shapes.
func decodeList(data []byte, out interface{}, keys ...string) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	for _, key := range keys {
		if raw, ok := wrapper[key]; ok {
			return json.Unmarshal(raw, out)
		}
	}
	return fmt.Errorf("response carries none of the expected keys %v", keys)
}

// decodeObject decodes either a bare JSON object or one wrapped under one of
// the given keys.
func decodeObject(data []byte, out interface{}, keys ...string) error {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	for _, key := range keys {
		raw, ok := wrapper[key]
		if ok && len(raw) > 0 && raw[0] == '{' {
			return json.Unmarshal(raw, out)
		}
	}
	return json.Unmarshal(data, out)
}
