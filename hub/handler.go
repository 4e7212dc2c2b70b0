package hub

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/eventhub/errors"
	"github.com/skillsenselab/eventhub/logger"
	"github.com/skillsenselab/eventhub/server"
)

// Handler exposes the hub over HTTP: a subscription stream, a publish
// endpoint, and an occupancy snapshot.
type Handler struct {
	hub *Hub
	log *logger.Logger
}

// NewHandler creates a handler backed by the given hub.
func NewHandler(h *Hub) *Handler {
	return &Handler{
		hub: h,
		log: logger.WithComponent("hub-handler"),
	}
}

// RegisterRoutes mounts the hub's routes on the given router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/events", h.Subscribe)
	r.POST("/events", h.Publish)
	r.GET("/events/stats", h.Stats)
}

// writeFlusher is the transport surface the serve loop writes to.
// gin.ResponseWriter satisfies it.
type writeFlusher interface {
	io.Writer
	http.Flusher
}

// Subscribe establishes a persistent SSE stream. The optional "key" query
// parameter selects the routing key; absent means global. The stream opens
// with a connected event and then carries published events and keepalive
// frames until the peer disconnects or a write fails.
func (h *Handler) Subscribe(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		key = KeyGlobal
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// SSE connections are long-lived and must not be cut by the server's
	// write timeout.
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Warn("Could not disable write deadline", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	conn := NewConnection(key, h.hub.cfg.ClientBuffer)

	if err := h.hub.registry.Register(conn); err != nil {
		// The subscriber sees a single error frame, then the stream closes.
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Internal(err)
		}
		_ = sse.Encode(c.Writer, sse.Event{
			Event: EventTypeError,
			Data:  appErr.ToResponse(),
		})
		c.Writer.Flush()
		return
	}

	connected, err := marshalConnected(conn.ID(), time.Now())
	if err == nil {
		_ = sse.Encode(c.Writer, sse.Event{
			Event: EventTypeConnected,
			Data:  string(connected),
		})
		c.Writer.Flush()
	}

	h.log.Debug("Subscriber connected", map[string]interface{}{
		logger.FieldConnectionID: conn.ID(),
		logger.FieldRoutingKey:   key,
		"remote_addr":            c.Request.RemoteAddr,
	})

	h.stream(c.Request.Context(), c.Writer, conn)
}

// stream is the per-connection serve loop: the single writer for this
// transport, which serializes data frames and keepalives. It unregisters
// the connection on every exit path.
func (h *Handler) stream(ctx context.Context, w writeFlusher, conn *Connection) {
	defer h.hub.registry.Unregister(conn)

	ticker := time.NewTicker(h.hub.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Peer disconnected (browser closed, network issue, etc.)
			h.log.Debug("Subscriber disconnected", map[string]interface{}{
				logger.FieldConnectionID: conn.ID(),
			})
			return

		case <-conn.Done():
			// Closed from another teardown path (send failure, shutdown).
			return

		case data := <-conn.Events():
			if err := sse.Encode(w, sse.Event{Data: string(data)}); err != nil {
				h.log.Debug("Write failed, closing stream", map[string]interface{}{
					logger.FieldConnectionID: conn.ID(),
					logger.FieldError:        err.Error(),
				})
				return
			}
			w.Flush()

		case <-ticker.C:
			if err := Keepalive(w); err != nil {
				h.log.Debug("Keepalive failed, closing stream", map[string]interface{}{
					logger.FieldConnectionID: conn.ID(),
					logger.FieldError:        err.Error(),
				})
				return
			}
			w.Flush()
		}
	}
}

// Publish accepts an event and broadcasts it. Delivery is fire and forget:
// the publisher gets 202 on structurally valid input regardless of how many
// subscribers the event reached.
func (h *Handler) Publish(c *gin.Context) {
	var event Event
	if err := c.ShouldBindJSON(&event); err != nil {
		server.RespondWithError(c, errors.Validation("request body must be valid JSON").WithCause(err))
		return
	}

	if err := h.hub.Publish(c.Request.Context(), event); err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondAccepted(c, gin.H{"status": "accepted"})
}

// Stats reports live-connection counts per routing key plus their total.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Stats())
}
