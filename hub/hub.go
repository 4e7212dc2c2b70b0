package hub

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/skillsenselab/eventhub/errors"
	"github.com/skillsenselab/eventhub/logger"
	"github.com/skillsenselab/eventhub/observability"
	"github.com/skillsenselab/eventhub/validation"
)

// Hub validates and broadcasts events to registered connections.
type Hub struct {
	registry *Registry
	cfg      Config
	log      *logger.Logger
	metrics  *Metrics // nil when metrics are disabled
}

// New creates a hub with its registry from config. Call cfg.ApplyDefaults
// before passing it in; New does not mutate the config.
func New(cfg Config) *Hub {
	return &Hub{
		registry: NewRegistry(cfg.MaxConnectionsPerKey),
		cfg:      cfg,
		log:      logger.WithComponent("hub"),
	}
}

// Registry returns the hub's connection registry.
func (h *Hub) Registry() *Registry { return h.registry }

// Config returns the hub configuration.
func (h *Hub) Config() Config { return h.cfg }

// Stats returns a snapshot of registry occupancy.
func (h *Hub) Stats() Stats { return h.registry.Stats() }

// Publish broadcasts the event to every connection under event.Key (when
// set) and every connection under the global key. A connection whose send
// fails is unregistered immediately; the failure is not retried and not
// reported to the publisher. Only structurally invalid input produces an
// error.
func (h *Hub) Publish(ctx context.Context, event Event) error {
	_, span := observability.StartSpan(ctx, "hub.publish")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.type", event.Type),
		attribute.String("event.key", event.Key),
	)

	if err := validation.Validate(event); err != nil {
		return err
	}

	payload, err := marshalWire(event, time.Now())
	if err != nil {
		return errors.Validation("event data is not serializable").WithCause(err)
	}

	targets := h.targetsFor(event.Key)
	delivered, failed := 0, 0
	for _, conn := range targets {
		if sendErr := conn.Send(payload); sendErr != nil {
			failed++
			h.registry.Unregister(conn)
			h.log.Warn("Send failed, connection removed", map[string]interface{}{
				logger.FieldConnectionID: conn.ID(),
				logger.FieldRoutingKey:   conn.Key(),
				logger.FieldError:        sendErr.Error(),
			})
			continue
		}
		delivered++
	}

	if h.metrics != nil {
		h.metrics.RecordPublish(ctx, event.Type, event.Key, delivered, failed)
	}

	h.log.Debug("Event published", map[string]interface{}{
		logger.FieldEventType:  event.Type,
		logger.FieldRoutingKey: event.Key,
		"delivered":            delivered,
		"failed":               failed,
	})
	return nil
}

// targetsFor resolves the connections a key routes to: the key's own set
// (when domain-scoped) plus the global set. A connection holds exactly one
// key, so the two snapshots are disjoint and need no deduplication.
func (h *Hub) targetsFor(key string) []*Connection {
	if key == "" || key == KeyGlobal {
		return h.registry.ConnectionsFor(KeyGlobal)
	}
	targets := h.registry.ConnectionsFor(key)
	return append(targets, h.registry.ConnectionsFor(KeyGlobal)...)
}

// Ensure Hub implements Broadcaster.
var _ Broadcaster = (*Hub)(nil)
