// internal/adapter/events/publisher.go

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"trendlens/internal/domain/analysis"
)

// CompletedEvent is the suffix of the subject analyses are published on
const CompletedEvent = "completed"

// Conn is the part of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// Event is the message published for every completed analysis
type Event struct {
	Type    string           `json:"type"`
	Summary analysis.Summary `json:"summary"`
	Result  *analysis.Result `json:"result"`
}

// Publisher publishes analysis events to NATS
type Publisher struct {
	conn  Conn
	topic string
}

// NewPublisher creates a new publisher. topic is the subject prefix, e.g.
// "analysis" publishes on "analysis.completed".
func NewPublisher(conn Conn, topic string) *Publisher {
	return &Publisher{
		conn:  conn,
		topic: topic,
	}
}

// Subject returns the subject completed analyses are published on
func (p *Publisher) Subject() string {
	return CompletedSubject(p.topic)
}

// CompletedSubject returns the completed-analysis subject for a topic prefix
func CompletedSubject(topic string) string {
	return fmt.Sprintf("%s.%s", topic, CompletedEvent)
}

// Record publishes an analysis.completed event
func (p *Publisher) Record(ctx context.Context, r *analysis.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Event{
		Type:    CompletedSubject("analysis"),
		Summary: analysis.Summarize(r),
		Result:  r,
	})
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := p.conn.Publish(p.Subject(), data); err != nil {
		return fmt.Errorf("error publishing to %s: %w", p.Subject(), err)
	}
	return nil
}

var _ Conn = (*nats.Conn)(nil)
