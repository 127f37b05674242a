package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSNotifier publishes events to a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewNATSNotifier(url string, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS notifier initialized", "url", url, "subject", subject)

	return &NATSNotifier{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (n *NATSNotifier) Notify(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal event", "error", err)
		return err
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		n.logger.Error("failed to publish event to NATS", "error", err)
		return err
	}

	n.logger.Info("event published to NATS", "subject", n.subject, "submission_id", event.SubmissionID)
	return nil
}

func (n *NATSNotifier) Close() error {
	n.conn.Close()
	return nil
}
