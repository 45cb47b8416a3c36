package messaging

import (
	"context"

	"casegraph/domain/events"
)

// NoopPublisher discards all events
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, events.DomainEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }
