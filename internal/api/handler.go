package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/analytics"
	"storefront-service/internal/backend"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxProofImageSize bounds the uploaded proof-of-payment file
const maxProofImageSize = 5 << 20

// Handler contains HTTP handlers
type Handler struct {
	catalog  *catalog.Service
	carts    *cart.Store
	checkout *checkout.Service
	backend  *backend.Client
	events   *analytics.Publisher
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogService *catalog.Service,
	carts *cart.Store,
	checkoutService *checkout.Service,
	backendClient *backend.Client,
	events *analytics.Publisher,
) *Handler {
	return &Handler{
		catalog:  catalogService,
		carts:    carts,
		checkout: checkoutService,
		backend:  backendClient,
		events:   events,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/announcements", h.listAnnouncements)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/featured", h.listFeatured)
		v1.GET("/products/bestsellers", h.listBestSellers)
		v1.GET("/products/offers", h.listOffers)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/products/:id/reviews", h.listReviews)
		v1.POST("/products/:id/reviews", h.createReview)
		v1.GET("/delivery-charges", h.listDeliveryCharges)

		v1.POST("/carts", h.createCart)
		v1.GET("/carts/:id", h.getCart)
		v1.POST("/carts/:id/items", h.addCartItem)
		v1.PUT("/carts/:id/items", h.updateCartItem)
		v1.DELETE("/carts/:id/items", h.removeCartItem)
		v1.DELETE("/carts/:id", h.clearCart)
		v1.POST("/carts/:id/discount", h.validateDiscount)
		v1.POST("/carts/:id/checkout", h.submitCheckout)

		v1.GET("/orders/:id", h.getOrderConfirmation)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listAnnouncements(c *gin.Context) {
	announcements, err := h.catalog.Announcements(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, "Failed to load announcements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondBackendError(c, err, "Failed to load products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) listFeatured(c *gin.Context) {
	products, err := h.catalog.Featured(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, "Failed to load featured products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) listBestSellers(c *gin.Context) {
	products, err := h.catalog.BestSellers(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, "Failed to load best sellers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) listOffers(c *gin.Context) {
	products, err := h.catalog.Offers(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, "Failed to load offers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBackendError(c, err, "Failed to load product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.catalog.GetReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBackendError(c, err, "Failed to load reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *Handler) createReview(c *gin.Context) {
	var req backend.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.catalog.AddReview(c.Request.Context(), c.Param("id"), &req); err != nil {
		respondBackendError(c, err, "Failed to submit review")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (h *Handler) listDeliveryCharges(c *gin.Context) {
	charges, err := h.catalog.DeliveryCharges(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, "Failed to load delivery charges")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveryCharges": charges})
}

func (h *Handler) createCart(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"cartId": uuid.New().String()})
}

func (h *Handler) getCart(c *gin.Context) {
	items, err := h.carts.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"subtotal": checkout.CartSubtotal(items),
	})
}

type cartItemRequest struct {
	ProductID   string `json:"product" binding:"required"`
	VariationID string `json:"variationId" binding:"required"`
	SizeID      string `json:"sizeId" binding:"required"`
	Qty         int    `json:"qty" binding:"required,min=1"`
}

// addCartItem resolves the product from the backend, verifies the selected
// size is in stock (the cart store itself does not check stock), then adds
// the line item.
func (h *Handler) addCartItem(c *gin.Context) {
	cartID := c.Param("id")

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.backend.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		respondBackendError(c, err, "Failed to load product")
		return
	}

	size := findSize(product, req.VariationID, req.SizeID)
	if size == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown variation or size"})
		return
	}
	if size.Quantity <= 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "This size is out of stock"})
		return
	}

	if err := h.carts.AddItem(c.Request.Context(), cartID, product, req.VariationID, req.SizeID, req.Qty); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	h.events.AddToCart(cartID, product)
	h.respondWithCart(c, cartID)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	cartID := c.Param("id")

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	err := h.carts.UpdateQuantity(c.Request.Context(), cartID, req.ProductID, req.VariationID, req.SizeID, req.Qty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	h.respondWithCart(c, cartID)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	cartID := c.Param("id")

	productID := c.Query("product")
	variationID := c.Query("variationId")
	sizeID := c.Query("sizeId")
	if productID == "" || variationID == "" || sizeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product, variationId and sizeId are required"})
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), cartID, productID, variationID, sizeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	h.respondWithCart(c, cartID)
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}, "subtotal": 0})
}

func (h *Handler) respondWithCart(c *gin.Context, cartID string) {
	items, err := h.carts.Load(c.Request.Context(), cartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"subtotal": checkout.CartSubtotal(items),
	})
}

func (h *Handler) validateDiscount(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.checkout.ValidateDiscount(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate discount"})
		return
	}
	if result == nil {
		// empty code clears any prior result, nothing to validate
		c.JSON(http.StatusOK, gin.H{"cleared": true})
		return
	}
	c.JSON(http.StatusOK, result)
}

// submitCheckout accepts the multipart checkout form and drives the
// submission. Validation gate failures come back as 400 with the specific
// message and no backend request is made.
func (h *Handler) submitCheckout(c *gin.Context) {
	req := &checkout.SubmitRequest{
		Name:          c.PostForm("name"),
		Email:         c.PostForm("email"),
		Phone:         c.PostForm("phone"),
		City:          c.PostForm("city"),
		Address:       c.PostForm("address"),
		PaymentMethod: c.DefaultPostForm("paymentMethod", models.PaymentMethodCash),
		TransactionID: c.PostForm("transactionId"),
		DiscountCode:  c.PostForm("discountCode"),
	}

	if file, err := c.FormFile("proofImage"); err == nil {
		proof, err := readProofImage(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read proof image"})
			return
		}
		req.ProofImage = proof
	}

	order, err := h.checkout.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status, message := submitErrorStatus(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *Handler) getOrderConfirmation(c *gin.Context) {
	confirmation, err := h.checkout.GetConfirmation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBackendError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

func readProofImage(file *multipart.FileHeader) (*backend.ProofImage, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxProofImageSize))
	if err != nil {
		return nil, err
	}
	return &backend.ProofImage{Filename: file.Filename, Data: data}, nil
}

func submitErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingPaymentProof),
		errors.Is(err, checkout.ErrMissingPhone),
		errors.Is(err, checkout.ErrInvalidPhone),
		errors.Is(err, checkout.ErrMissingAddress):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		return http.StatusConflict, err.Error()
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return http.StatusBadGateway, apiErr.Message
		}
		return http.StatusBadGateway, "Something went wrong while placing the order"
	}
}

func respondBackendError(c *gin.Context, err error, fallback string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": apiErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
}

func findSize(product *models.Product, variationID, sizeID string) *models.Size {
	for i := range product.Variations {
		if product.Variations[i].ID != variationID {
			continue
		}
		for j := range product.Variations[i].Sizes {
			if product.Variations[i].Sizes[j].ID == sizeID {
				return &product.Variations[i].Sizes[j]
			}
		}
	}
	return nil
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
