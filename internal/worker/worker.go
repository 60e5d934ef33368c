package worker

import (
	"context"

	"storefront-service/internal/analytics"
	"storefront-service/internal/broker"
	"storefront-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TrackerWorker consumes the storefront events topic and forwards each event
// to the external conversion trackers.
type TrackerWorker struct {
	consumer  *broker.Consumer
	forwarder *analytics.Forwarder
	logger    *zap.Logger
}

// NewTrackerWorker creates a new tracker worker
func NewTrackerWorker(consumer *broker.Consumer, forwarder *analytics.Forwarder) *TrackerWorker {
	return &TrackerWorker{
		consumer:  consumer,
		forwarder: forwarder,
		logger:    util.GetLogger(),
	}
}

// Start starts the worker
func (w *TrackerWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting tracker worker")

	return w.consumer.StartConsuming(ctx, func(ctx context.Context, msg kafka.Message) error {
		w.forwarder.Forward(ctx, msg.Value)
		return nil
	})
}

// Stop stops the worker
func (w *TrackerWorker) Stop() error {
	w.logger.Info("Stopping tracker worker")
	return w.consumer.Close()
}
