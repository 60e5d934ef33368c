package analytics

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Tracker posts raw event payloads to one external conversion tracker
// webhook. An empty URL means the tracker is not configured and deliveries
// are silently skipped.
type Tracker struct {
	name       string
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTracker creates a tracker client
func NewTracker(name, url string) *Tracker {
	return &Tracker{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     util.GetLogger(),
	}
}

// Deliver posts one event payload, best-effort
func (t *Tracker) Deliver(ctx context.Context, payload []byte) error {
	if t.url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build tracker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		util.TrackerDeliveriesTotal.WithLabelValues(t.name, "error").Inc()
		return fmt.Errorf("tracker %s delivery failed: %w", t.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		util.TrackerDeliveriesTotal.WithLabelValues(t.name, "rejected").Inc()
		return fmt.Errorf("tracker %s returned %d", t.name, resp.StatusCode)
	}

	util.TrackerDeliveriesTotal.WithLabelValues(t.name, "ok").Inc()
	return nil
}

// Forwarder fans one event out to every configured tracker. Failures are
// logged and swallowed; one tracker going down never affects the other.
type Forwarder struct {
	trackers []*Tracker
	logger   *zap.Logger
}

// NewForwarder creates a forwarder over the given trackers
func NewForwarder(trackers ...*Tracker) *Forwarder {
	return &Forwarder{
		trackers: trackers,
		logger:   util.GetLogger(),
	}
}

// Forward delivers the payload to each tracker, best-effort
func (f *Forwarder) Forward(ctx context.Context, payload []byte) {
	for _, tracker := range f.trackers {
		if err := tracker.Deliver(ctx, payload); err != nil {
			f.logger.Warn("Tracker delivery failed",
				zap.String("tracker", tracker.name),
				zap.Error(err))
		}
	}
}
