package hub

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the hub's OpenTelemetry instruments.
type Metrics struct {
	publishTotal   metric.Int64Counter
	deliveredTotal metric.Int64Counter
	sendFailures   metric.Int64Counter
	connections    metric.Int64ObservableGauge
}

// EnableMetrics creates the hub's instruments on the given meter. The
// active-connections gauge observes registry occupancy per routing key.
func (h *Hub) EnableMetrics(meter metric.Meter) error {
	publishTotal, err := meter.Int64Counter("hub.publish.total",
		metric.WithDescription("Total publish calls by event type"),
	)
	if err != nil {
		return fmt.Errorf("creating hub.publish.total counter: %w", err)
	}

	deliveredTotal, err := meter.Int64Counter("hub.events.delivered",
		metric.WithDescription("Frames delivered to subscriber buffers"),
	)
	if err != nil {
		return fmt.Errorf("creating hub.events.delivered counter: %w", err)
	}

	sendFailures, err := meter.Int64Counter("hub.send.failures",
		metric.WithDescription("Sends that failed and removed their connection"),
	)
	if err != nil {
		return fmt.Errorf("creating hub.send.failures counter: %w", err)
	}

	connections, err := meter.Int64ObservableGauge("hub.connections.active",
		metric.WithDescription("Live connections per routing key"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			stats := h.registry.Stats()
			for key, count := range stats.Keys {
				o.Observe(int64(count), metric.WithAttributes(
					attribute.String("routing_key", key),
				))
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("creating hub.connections.active gauge: %w", err)
	}

	h.metrics = &Metrics{
		publishTotal:   publishTotal,
		deliveredTotal: deliveredTotal,
		sendFailures:   sendFailures,
		connections:    connections,
	}
	return nil
}

// RecordPublish records the outcome of one broadcast.
func (m *Metrics) RecordPublish(ctx context.Context, eventType, key string, delivered, failed int) {
	attrs := metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("routing_key", key),
	)
	m.publishTotal.Add(ctx, 1, attrs)
	if delivered > 0 {
		m.deliveredTotal.Add(ctx, int64(delivered), attrs)
	}
	if failed > 0 {
		m.sendFailures.Add(ctx, int64(failed), attrs)
	}
}
