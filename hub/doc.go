// Package hub implements the real-time event broadcast hub: it tracks live
// subscriber connections partitioned by routing key, fans published events
// out to the matching subscribers over Server-Sent Events, and reaps dead
// connections via send failures and heartbeat failures.
//
// # Architecture
//
//   - Connection: one live outbound event stream with a bounded buffer
//   - Registry: routing key -> connection set, with per-key admission control
//   - Hub: validates, serializes and broadcasts events (key + "global")
//   - Handler: HTTP surface (subscribe stream, publish, stats)
//
// # Usage
//
//	h := hub.New(cfg)
//	handler := hub.NewHandler(h)
//	handler.RegisterRoutes(engine)
//	h.Publish(ctx, hub.Event{Type: hub.EventTypeConversation, Key: "acme", Data: payload})
package hub
