package hub

import (
	"fmt"
	"time"
)

// Config holds hub configuration.
type Config struct {
	// MaxConnectionsPerKey bounds simultaneous connections admitted per
	// routing key. Registration beyond the limit is rejected.
	MaxConnectionsPerKey int `yaml:"max_connections_per_key" mapstructure:"max_connections_per_key"`

	// HeartbeatInterval is the period between keepalive frames on each
	// subscription stream.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" mapstructure:"heartbeat_interval"`

	// ClientBuffer is the outbound buffer size per connection. A full
	// buffer marks the subscriber as a slow consumer and tears it down.
	ClientBuffer int `yaml:"client_buffer" mapstructure:"client_buffer"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxConnectionsPerKey == 0 {
		c.MaxConnectionsPerKey = 100
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.ClientBuffer == 0 {
		c.ClientBuffer = 256
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxConnectionsPerKey < 1 {
		return fmt.Errorf("hub.max_connections_per_key must be positive (got: %d)", c.MaxConnectionsPerKey)
	}
	if c.HeartbeatInterval < time.Second {
		return fmt.Errorf("hub.heartbeat_interval must be at least 1s (got: %s)", c.HeartbeatInterval)
	}
	if c.ClientBuffer < 1 {
		return fmt.Errorf("hub.client_buffer must be positive (got: %d)", c.ClientBuffer)
	}
	return nil
}
