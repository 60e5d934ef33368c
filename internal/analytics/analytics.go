package analytics

import (
	"context"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink receives conversion events. Implementations must tolerate being
// called concurrently; delivery is best-effort everywhere.
type Sink interface {
	Publish(ctx context.Context, eventType string, event interface{}) error
}

// NopSink discards every event. It is the default so that nothing in the
// storefront ever depends on analytics being wired up.
type NopSink struct{}

func (NopSink) Publish(context.Context, string, interface{}) error { return nil }

// KafkaSink publishes events to the storefront events topic
type KafkaSink struct {
	producer *broker.Producer
}

// NewKafkaSink creates a Kafka-backed sink
func NewKafkaSink(producer *broker.Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Publish(ctx context.Context, eventType string, event interface{}) error {
	return s.producer.PublishEvent(ctx, eventType, event)
}

// Publisher builds conversion events and hands them to the sink without ever
// blocking or failing the calling flow.
type Publisher struct {
	sink     Sink
	currency string
	logger   *zap.Logger
}

// NewPublisher creates a publisher over the given sink
func NewPublisher(sink Sink, currency string) *Publisher {
	if sink == nil {
		sink = NopSink{}
	}
	return &Publisher{
		sink:     sink,
		currency: currency,
		logger:   util.GetLogger(),
	}
}

// ViewProduct fires when a product detail view loads
func (p *Publisher) ViewProduct(product *models.Product) {
	event := &models.ViewProductEvent{
		BaseEvent: newBase(models.EventTypeViewProduct),
		ProductID: product.ID,
		Name:      product.Name,
		Value:     product.UnitPrice(),
		Currency:  p.currency,
	}
	p.emit(models.EventTypeViewProduct, event)
}

// AddToCart fires when a line item is added to a cart
func (p *Publisher) AddToCart(cartID string, product *models.Product) {
	event := &models.AddToCartEvent{
		BaseEvent: newBase(models.EventTypeAddToCart),
		CartID:    cartID,
		ProductID: product.ID,
		Name:      product.Name,
		Value:     product.UnitPrice(),
		Currency:  p.currency,
	}
	p.emit(models.EventTypeAddToCart, event)
}

// BeginCheckout fires when a checkout submission passes the validation gate
func (p *Publisher) BeginCheckout(cartID string, items []models.CartItem, value float64) {
	contents := make([]models.EventContent, 0, len(items))
	for _, item := range items {
		contents = append(contents, models.EventContent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			ItemPrice: item.Price,
		})
	}

	event := &models.BeginCheckoutEvent{
		BaseEvent: newBase(models.EventTypeBeginCheckout),
		CartID:    cartID,
		Value:     value,
		Currency:  p.currency,
		Contents:  contents,
	}
	p.emit(models.EventTypeBeginCheckout, event)
}

// Purchase fires once per successful order confirmation load
func (p *Publisher) Purchase(order *models.Order, value float64) {
	contents := make([]models.EventContent, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		contents = append(contents, models.EventContent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			ItemPrice: item.Price,
		})
	}

	event := &models.PurchaseEvent{
		BaseEvent: newBase(models.EventTypePurchase),
		OrderID:   order.ID,
		Value:     value,
		Currency:  p.currency,
		Contents:  contents,
	}
	p.emit(models.EventTypePurchase, event)
}

// emit publishes on a detached context so a slow sink can never stall the
// request that triggered the event.
func (p *Publisher) emit(eventType string, event interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.sink.Publish(ctx, eventType, event); err != nil {
			util.AnalyticsEventsDropped.Inc()
			p.logger.Warn("Failed to publish conversion event",
				zap.String("event_type", eventType),
				zap.Error(err))
			return
		}
		util.AnalyticsEventsPublished.WithLabelValues(eventType).Inc()
	}()
}

func newBase(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
