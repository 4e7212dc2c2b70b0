package hub

import (
	"fmt"
	"io"
	"time"
)

// Keepalive writes a liveness frame. SSE comment lines (leading colon) are
// invisible to EventSource consumers, which keeps pings distinct from typed
// events, and the write still exercises the transport so a dead peer is
// detected by the error. A failed keepalive is handled exactly like a failed
// send: the connection is unregistered.
func Keepalive(w io.Writer) error {
	_, err := fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
	return err
}
