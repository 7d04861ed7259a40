// Package broadcast publishes feed events to subscribers outside this
// process. Publishing is fire-and-forget: failures are logged, never
// retried, and never surfaced to the caller's flow.
package broadcast

import "context"

// Event is a feed event fanned out to external consumers.
type Event struct {
	Type         string `json:"type"`
	PostID       string `json:"post_id"`
	ActorID      string `json:"actor_id"`
	MonitorID    string `json:"monitor_id,omitempty"`
	SourcePostID string `json:"source_post_id,omitempty"`
	Title        string `json:"title,omitempty"`
}

// Publisher fans events out, best-effort.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NoopPublisher is used when no broker is configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) {}
