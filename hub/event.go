package hub

import (
	"encoding/json"
	"time"
)

// KeyGlobal is the catch-all routing key. Connections subscribed to it
// receive every published event regardless of the event's own key.
const KeyGlobal = "global"

// Event type tags carried on the wire.
const (
	// EventTypeConnected is sent once when a subscriber successfully connects.
	EventTypeConnected = "connected"

	// EventTypeHeartbeat tags liveness pings. Heartbeats are written as SSE
	// comment frames, not typed events, so this tag only appears when a
	// collaborator publishes an explicit heartbeat event.
	EventTypeHeartbeat = "heartbeat"

	// EventTypeConversation is sent for conversation updates.
	EventTypeConversation = "conversation"

	// EventTypeMetrics is sent for metric/telemetry events.
	EventTypeMetrics = "metrics"

	// EventTypeError is sent when an error occurs.
	EventTypeError = "error"

	// EventTypeMessage is a generic message event.
	EventTypeMessage = "message"
)

// Event is one broadcastable payload. Key routes the event: empty means
// global-only, anything else reaches that key's subscribers plus the global
// ones. Events are ephemeral; the hub never stores them.
type Event struct {
	Type      string `json:"type" validate:"required,max=64"`
	Key       string `json:"key,omitempty" validate:"omitempty,max=255"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// wireEvent is the JSON shape written to subscribers. The routing key is
// addressing metadata and is not part of the payload.
type wireEvent struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// connectedEvent is the first frame of every subscription stream.
type connectedEvent struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
	Timestamp    string `json:"timestamp"`
}

// marshalWire serializes the event for broadcast, stamping the publish-time
// timestamp. The stamp always overrides any caller-supplied value so observed
// ordering is monotonic per hub instance.
func marshalWire(event Event, now time.Time) ([]byte, error) {
	return json.Marshal(wireEvent{
		Type:      event.Type,
		Data:      event.Data,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}

// marshalConnected serializes the connected event for a new subscription.
func marshalConnected(connectionID string, now time.Time) ([]byte, error) {
	return json.Marshal(connectedEvent{
		Type:         EventTypeConnected,
		ConnectionID: connectionID,
		Timestamp:    now.UTC().Format(time.RFC3339),
	})
}
