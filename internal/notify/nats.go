package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/whatisjasongoldstein/beagle/internal/logfields"
)

// DefaultSubject is where build events are published.
const DefaultSubject = "beagle.builds"

// Publisher is the slice of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes build events as JSON.
type NATS struct {
	pub     Publisher
	subject string
	closer  func()
}

// NewNATS wraps an existing publisher.
func NewNATS(pub Publisher, subject string) *NATS {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{pub: pub, subject: subject}
}

// ConnectNATS dials url and returns a notifier owning the connection.
func ConnectNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("beagle"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	n := NewNATS(conn, subject)
	n.closer = conn.Close
	slog.Info("NATS build notifier initialized", slog.String("url", url), slog.String("subject", n.subject))
	return n, nil
}

func (n *NATS) Notify(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	slog.Debug("Published build event", logfields.BuildID(ev.BuildID), slog.String("subject", n.subject))
	return nil
}

// Close releases the connection when the notifier dialed it.
func (n *NATS) Close() error {
	if n.closer != nil {
		n.closer()
	}
	return nil
}
