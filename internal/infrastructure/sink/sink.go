// Package sink forwards tracked events to the external analytics backend.
// The tracking service is its only caller.
package sink

import "context"

// Sink delivers one analytics event to the external backend.
type Sink interface {
	Send(ctx context.Context, name string, clientID string, params map[string]any) error
}

// Noop discards every event. Used when no analytics backend is configured
// and in tests.
type Noop struct{}

// NewNoop creates a sink that drops all events.
func NewNoop() *Noop {
	return &Noop{}
}

// Send discards the event.
func (n *Noop) Send(ctx context.Context, name string, clientID string, params map[string]any) error {
	return nil
}
