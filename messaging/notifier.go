// Package messaging publishes accepted task status changes.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/planner"
	"github.com/kvit-dev/caleoban/utilities"
)

var (
	_ planner.Notifier = (*NATSNotifier)(nil)
	_ planner.Notifier = NoopNotifier{}
)

// StatusSubject is the subject a user's status changes are published on.
func StatusSubject(userID string) string {
	return fmt.Sprintf("caleoban.tasks.%s.status", userID)
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes every accepted change as JSON on StatusSubject.
type NATSNotifier struct {
	conn publisher
}

func NewNATSNotifier(conn *nats.Conn) *NATSNotifier {
	return &NATSNotifier{conn: conn}
}

// Connect dials NATS with unlimited reconnects.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("caleoban"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				utilities.LogWarn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			utilities.LogInfo("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

func (n *NATSNotifier) StatusChanged(_ context.Context, change models.StatusChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal status change: %w", err)
	}
	if err := n.conn.Publish(StatusSubject(change.UserID), data); err != nil {
		return fmt.Errorf("failed to publish status change of task %s: %w", change.TaskID, err)
	}
	return nil
}

// NoopNotifier only logs. It is used when no NATS_URL is configured.
type NoopNotifier struct{}

func (NoopNotifier) StatusChanged(_ context.Context, change models.StatusChange) error {
	utilities.LogDebug("Task %s status changed %s -> %s", change.TaskID, change.From, change.To)
	return nil
}
