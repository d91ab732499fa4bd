package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// publisher is the part of *nats.Conn used to publish one event.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes the completion event as JSON on a NATS subject. A
// connection is opened per event.
type NATSNotifier struct {
	url     string
	subject string
	timeout time.Duration
	dial    func(url string) (publisher, error)
}

// NewNATSNotifier creates a NATS notifier.
func NewNATSNotifier(url, subject string, timeout time.Duration) *NATSNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NATSNotifier{
		url:     url,
		subject: subject,
		timeout: timeout,
		dial: func(url string) (publisher, error) {
			return nats.Connect(url, nats.Name("docgen"), nats.Timeout(timeout), nats.MaxReconnects(0))
		},
	}
}

// Name implements Notifier.
func (n *NATSNotifier) Name() string { return "nats" }

// Notify implements Notifier.
func (n *NATSNotifier) Notify(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	conn, err := n.dial(n.url)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	if err := conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	// FlushWithContext requires a deadline.
	fctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := conn.FlushWithContext(fctx); err != nil {
		return fmt.Errorf("flush %s: %w", n.subject, err)
	}
	return nil
}
