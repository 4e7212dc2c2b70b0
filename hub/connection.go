package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/skillsenselab/eventhub/errors"
)

// Connection represents one live subscriber stream. It is owned by the
// subscribing request's goroutine, which is the single consumer of the
// events channel; the registry holds it only for lookup.
type Connection struct {
	id        string
	key       string
	events    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a connection for the given routing key with a
// bounded outbound buffer.
func NewConnection(key string, buffer int) *Connection {
	return &Connection{
		id:     uuid.New().String(),
		key:    key,
		events: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string { return c.id }

// Key returns the routing key this connection is subscribed to.
func (c *Connection) Key() string { return c.key }

// Events returns the channel the serve loop consumes outbound frames from.
func (c *Connection) Events() <-chan []byte { return c.events }

// Done is closed when the connection is closed.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Send queues data for delivery. It fails when the connection is closed or
// when the buffer is full (slow consumer); both are terminal for the
// connection and the caller is expected to unregister it.
func (c *Connection) Send(data []byte) error {
	select {
	case <-c.done:
		return errors.ConnectionClosed(c.id)
	default:
	}

	select {
	case c.events <- data:
		return nil
	case <-c.done:
		return errors.ConnectionClosed(c.id)
	default:
		return errors.SlowConsumer(c.id)
	}
}

// Close signals the serve loop to unwind. Safe to call from any teardown
// path, any number of times.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
