// Package messaging publishes domain events to NATS or AWS EventBridge.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casegraph/domain/events"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// flushTimeout bounds the server round trip when the caller's context has no deadline
const flushTimeout = 2 * time.Second

// NATSPublisher publishes events as JSON on "<subject prefix>.<event type>"
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// NewNATSPublisher connects to NATS with automatic reconnection
func NewNATSPublisher(url, subjectPrefix string, logger *zap.Logger, opts ...nats.Option) (*NATSPublisher, error) {
	defaults := []nats.Option{
		nats.Name("casegraph"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc, prefix: subjectPrefix, logger: logger}, nil
}

// Subject returns the subject an event type is published on
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Publish sends a single event and waits for the server to acknowledge the
// flush, so a dead connection surfaces as an error
func (p *NATSPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(event.GetEventType()), data); err != nil {
		return fmt.Errorf("publishing %s: %w", event.GetEventType(), err)
	}
	if err := p.flush(ctx); err != nil {
		return fmt.Errorf("flushing %s: %w", event.GetEventType(), err)
	}
	return nil
}

// flush waits for the server round trip. nats rejects FlushWithContext on a
// context without a deadline.
func (p *NATSPublisher) flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	return p.conn.FlushWithContext(ctx)
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
