package checkout

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"storefront-service/internal/analytics"
	"storefront-service/internal/backend"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Validation gate failures. None of these result in a backend request.
var (
	ErrEmptyCart           = errors.New("your cart is empty")
	ErrMissingPaymentProof = errors.New("please provide either a transaction id or a proof image")
	ErrMissingPhone        = errors.New("please provide a phone number")
	ErrInvalidPhone        = errors.New("invalid phone number")
	ErrMissingAddress      = errors.New("please provide both city and address")
	ErrSubmissionInFlight  = errors.New("a submission for this cart is already in progress")
)

// Local mobile numbers: 010/011/012/015 followed by 8 digits
var phonePattern = regexp.MustCompile(`^(010|011|012|015)\d{8}$`)

// BackendAPI is the slice of the backend client the checkout flow consumes
type BackendAPI interface {
	ValidateDiscount(ctx context.Context, code string, items []backend.DiscountItem) (*models.DiscountResult, error)
	CreateOrder(ctx context.Context, req *backend.OrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetDeliveryCharges(ctx context.Context) ([]models.DeliveryCharge, error)
}

// Service drives discount validation, order submission and confirmation
// reads. Submission for a cart is gated by an in-flight flag so a double
// click can never create two orders.
type Service struct {
	backend BackendAPI
	carts   *cart.Store
	events  *analytics.Publisher
	country string
	logger  *zap.Logger

	inFlight sync.Map
}

// NewService creates a checkout service
func NewService(backendAPI BackendAPI, carts *cart.Store, events *analytics.Publisher, country string) *Service {
	return &Service{
		backend: backendAPI,
		carts:   carts,
		events:  events,
		country: country,
		logger:  util.GetLogger(),
	}
}

// ValidateDiscount asks the backend whether a code applies to the current
// cart. An empty code clears any prior result without a network call and
// returns nil. Backend rejections and network failures both come back as a
// result carrying an error message; they are user-facing, not fatal.
func (s *Service) ValidateDiscount(ctx context.Context, cartID, code string) (*models.DiscountResult, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.ValidateDiscount")
	defer span.End()

	if code == "" {
		return nil, nil
	}

	items, err := s.carts.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	result, err := s.backend.ValidateDiscount(ctx, code, discountItems(items))
	if err != nil {
		util.DiscountValidationsTotal.WithLabelValues("error").Inc()
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return &models.DiscountResult{Error: apiErr.Message}, nil
		}
		s.logger.Warn("Discount validation failed", zap.String("code", code), zap.Error(err))
		return &models.DiscountResult{Error: "error while validating discount"}, nil
	}

	if result.Valid {
		util.DiscountValidationsTotal.WithLabelValues("valid").Inc()
	} else {
		util.DiscountValidationsTotal.WithLabelValues("invalid").Inc()
	}
	return result, nil
}

// SubmitRequest carries the shipping and payment form of a checkout
type SubmitRequest struct {
	Name          string
	Email         string
	Phone         string
	City          string
	Address       string
	PaymentMethod string
	TransactionID string
	ProofImage    *backend.ProofImage
	DiscountCode  string
}

// Submit validates the request, assembles the multipart order payload from
// the cart and submits it. On success the cart is cleared and the created
// order returned; on backend failure the cart is left untouched.
func (s *Service) Submit(ctx context.Context, cartID string, req *SubmitRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.Submit")
	defer span.End()

	if _, busy := s.inFlight.LoadOrStore(cartID, struct{}{}); busy {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Delete(cartID)

	items, err := s.carts.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := validate(items, req); err != nil {
		util.CheckoutsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	// Attach the code only when the backend confirms it; an invalid code is
	// simply dropped and the order goes through without it.
	discountCode := ""
	var discountAmount float64
	if req.DiscountCode != "" {
		result, err := s.ValidateDiscount(ctx, cartID, req.DiscountCode)
		if err != nil {
			return nil, err
		}
		if result != nil && result.Valid && result.Error == "" {
			discountCode = req.DiscountCode
			discountAmount = result.DiscountAmount
		}
	}

	shippingFee := s.shippingFor(ctx, req.City)
	s.events.BeginCheckout(cartID, items, CartSubtotal(items)+shippingFee-discountAmount)

	order, err := s.backend.CreateOrder(ctx, &backend.OrderRequest{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		ShippingAddress: models.ShippingAddress{
			City:    req.City,
			Address: req.Address,
			Country: s.country,
		},
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		ProofImage:    req.ProofImage,
		OrderItems:    checkoutItems(items),
		DiscountCode:  discountCode,
	})
	if err != nil {
		util.CheckoutsFailedTotal.Inc()
		return nil, err
	}

	util.CheckoutsSubmittedTotal.Inc()
	s.logger.Info("Order submitted",
		zap.String("order_id", order.ID),
		zap.String("cart_id", cartID),
		zap.Int("items", len(items)))

	if err := s.carts.Clear(ctx, cartID); err != nil {
		s.logger.Error("Failed to clear cart after successful order",
			zap.String("cart_id", cartID),
			zap.Error(err))
	}
	return order, nil
}

// GetConfirmation fetches a persisted order and recomputes its totals from
// the line items. The purchase conversion event fires once per successful
// fetch, gated by the fetch completing.
func (s *Service) GetConfirmation(ctx context.Context, orderID string) (*Confirmation, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.GetConfirmation")
	defer span.End()

	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	confirmation := BuildConfirmation(order)
	s.events.Purchase(order, confirmation.Total)
	return confirmation, nil
}

func validate(items []models.CartItem, req *SubmitRequest) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	if models.RequiresProof(req.PaymentMethod) && req.TransactionID == "" && req.ProofImage == nil {
		return ErrMissingPaymentProof
	}
	if req.Phone == "" {
		return ErrMissingPhone
	}
	if !phonePattern.MatchString(req.Phone) {
		return ErrInvalidPhone
	}
	if req.City == "" || req.Address == "" {
		return ErrMissingAddress
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrMissingPaymentProof):
		return "missing_payment_proof"
	case errors.Is(err, ErrMissingPhone), errors.Is(err, ErrInvalidPhone):
		return "invalid_phone"
	case errors.Is(err, ErrMissingAddress):
		return "missing_address"
	default:
		return "other"
	}
}

// shippingFor resolves the delivery charge for a city, best-effort; the
// value only feeds the begin-checkout event, the backend computes the real
// fee at order creation.
func (s *Service) shippingFor(ctx context.Context, city string) float64 {
	charges, err := s.backend.GetDeliveryCharges(ctx)
	if err != nil {
		s.logger.Warn("Failed to load delivery charges", zap.Error(err))
		return 0
	}
	for _, charge := range charges {
		if charge.City == city {
			return charge.Charge
		}
	}
	return 0
}

func discountItems(items []models.CartItem) []backend.DiscountItem {
	out := make([]backend.DiscountItem, 0, len(items))
	for _, item := range items {
		out = append(out, backend.DiscountItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}

func checkoutItems(items []models.CartItem) []backend.CheckoutItem {
	out := make([]backend.CheckoutItem, 0, len(items))
	for _, item := range items {
		out = append(out, backend.CheckoutItem{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			SizeID:      item.SizeID,
			Quantity:    item.Quantity,
			Color:       item.Color,
			Size:        item.Size,
		})
	}
	return out
}
