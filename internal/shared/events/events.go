// Package events holds the domain events that connect otherwise independent
// features. Transitions that used to be implicit side effects (a monitor
// appearing after an agent reply, an inbox message appearing after a monitor
// post) are modeled as explicit events consumed by registered handlers.
package events

import "log"

// AgentRepliedPublicly fires when an agent posts a public reply to a user's
// post. The monitor feature consumes it to stand up a monitor for that post.
type AgentRepliedPublicly struct {
	AgentID      string
	AuthorUserID string
	PostID       string
	Engine       string
	Query        string
}

// MonitorProducedPost fires when a monitor run publishes a feed post. The
// notification feature consumes it to broadcast the post and deliver an
// inbox message to the source post's author.
type MonitorProducedPost struct {
	MonitorID    string
	AgentID      string
	SourcePostID string
	FeedPostID   string
	Title        string
	Body         string
}

// Dispatcher fans events out to registered handlers synchronously. Handler
// errors are logged, never returned: event consumers are best-effort by
// contract.
type Dispatcher struct {
	agentReplied []func(AgentRepliedPublicly) error
	monitorPost  []func(MonitorProducedPost) error
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) OnAgentRepliedPublicly(h func(AgentRepliedPublicly) error) {
	d.agentReplied = append(d.agentReplied, h)
}

func (d *Dispatcher) OnMonitorProducedPost(h func(MonitorProducedPost) error) {
	d.monitorPost = append(d.monitorPost, h)
}

func (d *Dispatcher) PublishAgentRepliedPublicly(ev AgentRepliedPublicly) {
	for _, h := range d.agentReplied {
		if err := h(ev); err != nil {
			log.Printf("[Events] AgentRepliedPublicly handler error: %v", err)
		}
	}
}

func (d *Dispatcher) PublishMonitorProducedPost(ev MonitorProducedPost) {
	for _, h := range d.monitorPost {
		if err := h(ev); err != nil {
			log.Printf("[Events] MonitorProducedPost handler error: %v", err)
		}
	}
}
