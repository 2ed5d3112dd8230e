// internal/adapter/events/subscriber.go

package events

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Subscriber delivers the payload of every message on a subject to handler
// until the returned function is called.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func() error, err error)
}

// NATSSubscriber implements Subscriber on a NATS connection
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber creates a new subscriber
func NewNATSSubscriber(conn *nats.Conn) *NATSSubscriber {
	return &NATSSubscriber{
		conn: conn,
	}
}

// Subscribe subscribes to subject
func (s *NATSSubscriber) Subscribe(subject string, handler func(data []byte)) (func() error, error) {
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub.Unsubscribe, nil
}
