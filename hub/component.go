package hub

import (
	"context"
	"fmt"

	"github.com/skillsenselab/eventhub/component"
)

// Component wraps a Hub as a lifecycle-managed component. The hub has no
// background loop of its own; the component's job is to close every live
// connection on shutdown so subscription goroutines unwind.
type Component struct {
	hub *Hub
}

// ensure Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// NewComponent creates a hub component from config.
func NewComponent(cfg Config) *Component {
	return &Component{hub: New(cfg)}
}

// Hub returns the underlying Hub for broadcasting and route registration.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "hub" }

// Start is a no-op; connections are accepted as soon as routes are served.
func (c *Component) Start(_ context.Context) error { return nil }

// Stop closes all live connections.
func (c *Component) Stop(_ context.Context) error {
	c.hub.Registry().CloseAll()
	return nil
}

// Health reports registry occupancy.
func (c *Component) Health(_ context.Context) component.Health {
	stats := c.hub.Stats()
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d connections across %d keys", stats.Total, len(stats.Keys)),
	}
}
