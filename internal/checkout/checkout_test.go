package checkout

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/analytics"
	"storefront-service/internal/backend"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	discountResult *models.DiscountResult
	discountErr    error
	createdOrder   *models.Order
	createErr      error
	storedOrder    *models.Order
	getErr         error
	charges        []models.DeliveryCharge

	validateCalls int
	createCalls   int
	lastOrderReq  *backend.OrderRequest
}

func (f *fakeBackend) ValidateDiscount(_ context.Context, _ string, _ []backend.DiscountItem) (*models.DiscountResult, error) {
	f.validateCalls++
	return f.discountResult, f.discountErr
}

func (f *fakeBackend) CreateOrder(_ context.Context, req *backend.OrderRequest) (*models.Order, error) {
	f.createCalls++
	f.lastOrderReq = req
	return f.createdOrder, f.createErr
}

func (f *fakeBackend) GetOrder(_ context.Context, _ string) (*models.Order, error) {
	return f.storedOrder, f.getErr
}

func (f *fakeBackend) GetDeliveryCharges(_ context.Context) ([]models.DeliveryCharge, error) {
	return f.charges, nil
}

func newTestService(fake *fakeBackend) (*Service, *cart.Store, *cart.MemoryStorage) {
	storage := cart.NewMemoryStorage()
	carts := cart.NewStore(storage, 24*time.Hour)
	events := analytics.NewPublisher(analytics.NopSink{}, "EGP")
	return NewService(fake, carts, events, "Egypt"), carts, storage
}

func hoodie() *models.Product {
	return &models.Product{
		ID:            "p1",
		Name:          "Oversized Hoodie",
		OriginalPrice: 500,
		SalePrice:     400,
		Variations: []models.Variation{
			{
				ID:    "v1",
				Color: "black",
				Sizes: []models.Size{{ID: "s1", Label: "M", Quantity: 3}},
			},
		},
	}
}

func validRequest() *SubmitRequest {
	return &SubmitRequest{
		Name:          "Sara",
		Phone:         "01012345678",
		City:          "Cairo",
		Address:       "12 Tahrir St",
		PaymentMethod: models.PaymentMethodCash,
	}
}

func TestSubmitEmptyCartNeverCallsBackend(t *testing.T) {
	fake := &fakeBackend{}
	svc, _, _ := newTestService(fake)

	_, err := svc.Submit(context.Background(), "c1", validRequest())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, fake.createCalls, "no order request may be sent for an empty cart")
}

func TestSubmitPhoneValidation(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr error
	}{
		{"valid local mobile", "01012345678", nil},
		{"wrong prefix", "02012345678", ErrInvalidPhone},
		{"too short", "0101234567", ErrInvalidPhone},
		{"missing", "", ErrMissingPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBackend{createdOrder: &models.Order{ID: "o1"}}
			svc, carts, _ := newTestService(fake)
			require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

			req := validRequest()
			req.Phone = tt.phone

			_, err := svc.Submit(context.Background(), "c1", req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, fake.createCalls)
			}
		})
	}
}

func TestSubmitManualTransferNeedsProof(t *testing.T) {
	fake := &fakeBackend{createdOrder: &models.Order{ID: "o1"}}
	svc, carts, _ := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

	req := validRequest()
	req.PaymentMethod = models.PaymentMethodInstapay

	_, err := svc.Submit(context.Background(), "c1", req)
	assert.ErrorIs(t, err, ErrMissingPaymentProof)
	assert.Zero(t, fake.createCalls)

	// either a transaction id or a proof image is enough
	req.TransactionID = "TX-123"
	_, err = svc.Submit(context.Background(), "c1", req)
	assert.NoError(t, err)
}

func TestSubmitProofImageAlsoSatisfiesGate(t *testing.T) {
	fake := &fakeBackend{createdOrder: &models.Order{ID: "o1"}}
	svc, carts, _ := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

	req := validRequest()
	req.PaymentMethod = models.PaymentMethodVodafone
	req.ProofImage = &backend.ProofImage{Filename: "receipt.jpg", Data: []byte("img")}

	_, err := svc.Submit(context.Background(), "c1", req)
	assert.NoError(t, err)
}

func TestSubmitMissingCityOrAddress(t *testing.T) {
	fake := &fakeBackend{}
	svc, carts, _ := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

	req := validRequest()
	req.City = ""
	_, err := svc.Submit(context.Background(), "c1", req)
	assert.ErrorIs(t, err, ErrMissingAddress)

	req = validRequest()
	req.Address = ""
	_, err = svc.Submit(context.Background(), "c1", req)
	assert.ErrorIs(t, err, ErrMissingAddress)
	assert.Zero(t, fake.createCalls)
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	fake := &fakeBackend{createdOrder: &models.Order{ID: "o1"}}
	svc, carts, storage := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 2))

	order, err := svc.Submit(context.Background(), "c1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.False(t, storage.Has("c1"), "cart must be cleared after a successful order")

	require.NotNil(t, fake.lastOrderReq)
	assert.Equal(t, "Egypt", fake.lastOrderReq.ShippingAddress.Country)
	require.Len(t, fake.lastOrderReq.OrderItems, 1)
	assert.Equal(t, 2, fake.lastOrderReq.OrderItems[0].Quantity)
}

func TestSubmitBackendFailureKeepsCart(t *testing.T) {
	fake := &fakeBackend{createErr: &backend.APIError{StatusCode: 422, Message: "insufficient stock"}}
	svc, carts, storage := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

	_, err := svc.Submit(context.Background(), "c1", validRequest())
	assert.Error(t, err)
	assert.True(t, storage.Has("c1"), "a failed submission must not clear the cart")

	items, loadErr := carts.Load(context.Background(), "c1")
	require.NoError(t, loadErr)
	assert.Len(t, items, 1)
}

func TestSubmitAttachesOnlyValidatedDiscount(t *testing.T) {
	fake := &fakeBackend{
		createdOrder:   &models.Order{ID: "o1"},
		discountResult: &models.DiscountResult{Valid: true, DiscountType: models.DiscountTypePercentage, Percentage: 10, DiscountAmount: 40},
	}
	svc, carts, _ := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

	req := validRequest()
	req.DiscountCode = "SUMMER10"
	_, err := svc.Submit(context.Background(), "c1", req)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", fake.lastOrderReq.DiscountCode)
}

func TestSubmitDropsInvalidDiscountCode(t *testing.T) {
	fake := &fakeBackend{
		createdOrder: &models.Order{ID: "o1"},
		discountErr:  &backend.APIError{StatusCode: 400, Message: "code expired"},
	}
	svc, carts, _ := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

	req := validRequest()
	req.DiscountCode = "EXPIRED"
	_, err := svc.Submit(context.Background(), "c1", req)
	require.NoError(t, err, "an invalid code is dropped, the order still goes through")
	assert.Empty(t, fake.lastOrderReq.DiscountCode)
}

func TestValidateDiscountEmptyCodeClearsWithoutNetworkCall(t *testing.T) {
	fake := &fakeBackend{}
	svc, _, _ := newTestService(fake)

	result, err := svc.ValidateDiscount(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Zero(t, fake.validateCalls)
}

func TestValidateDiscountSurfacesBackendMessage(t *testing.T) {
	fake := &fakeBackend{discountErr: &backend.APIError{StatusCode: 400, Message: "code expired"}}
	svc, carts, _ := newTestService(fake)
	require.NoError(t, carts.AddItem(context.Background(), "c1", hoodie(), "v1", "s1", 1))

	result, err := svc.ValidateDiscount(context.Background(), "c1", "EXPIRED")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "code expired", result.Error)
}

func TestGetConfirmationRecomputesTotals(t *testing.T) {
	fake := &fakeBackend{storedOrder: &models.Order{
		ID: "o1",
		OrderItems: []models.OrderItem{
			{ProductID: "p1", Price: 100, Quantity: 2},
			{ProductID: "p2", Price: 50, Quantity: 1},
		},
		ShippingFee: 30,
		Discount:    &models.OrderDiscount{Amount: 20},
		TotalPrice:  310,
	}}
	svc, _, _ := newTestService(fake)

	confirmation, err := svc.GetConfirmation(context.Background(), "o1")
	require.NoError(t, err)

	assert.Equal(t, 250.0, confirmation.Subtotal)
	assert.Equal(t, 310.0, confirmation.Total)
	assert.False(t, confirmation.TotalMismatch)
}

func TestConfirmationFlagsServerTotalMismatch(t *testing.T) {
	order := &models.Order{
		ID: "o1",
		OrderItems: []models.OrderItem{
			{ProductID: "p1", Price: 100, Quantity: 2},
			{ProductID: "p2", Price: 50, Quantity: 1},
		},
		ShippingFee: 30,
		Discount:    &models.OrderDiscount{Amount: 20},
		TotalPrice:  295,
	}

	confirmation := BuildConfirmation(order)

	// the locally recomputed total is displayed regardless of the stored one
	assert.Equal(t, 310.0, confirmation.Total)
	assert.Equal(t, 295.0, confirmation.ServerTotal)
	assert.True(t, confirmation.TotalMismatch)
}

func TestConfirmationWithoutDiscount(t *testing.T) {
	order := &models.Order{
		OrderItems:  []models.OrderItem{{Price: 200, Quantity: 1}},
		ShippingFee: 50,
		TotalPrice:  250,
	}

	confirmation := BuildConfirmation(order)
	assert.Equal(t, 200.0, confirmation.Subtotal)
	assert.Equal(t, 250.0, confirmation.Total)
	assert.Zero(t, confirmation.DiscountAmount)
	assert.False(t, confirmation.TotalMismatch)
}
