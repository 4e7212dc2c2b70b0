package hub

import "context"

// Broadcaster is the publish side of the hub. Collaborators that only need
// to emit events should depend on this interface rather than the concrete Hub.
type Broadcaster interface {
	// Publish delivers the event, best effort, to every connection under the
	// event's key and every connection under "global". The only error it
	// reports is structurally invalid input; delivery failures are contained
	// per connection and never surfaced to the publisher.
	Publish(ctx context.Context, event Event) error
}
