// Package heartbeat delivers the "restart heartbeat" signal to the keep-alive
// collaborator.
package heartbeat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/ports"
)

// NATSRestarter publishes a HeartbeatRestart message per signal.
type NATSRestarter struct {
	conn    *nats.Conn
	subject string
	clock   ports.Clock
	log     ports.Logger
}

// NewNATSRestarter connects to url. An empty subject uses DefaultHeartbeatTopic.
func NewNATSRestarter(url, subject string, clock ports.Clock, log ports.Logger, opts ...nats.Option) (*NATSRestarter, error) {
	if subject == "" {
		subject = domain.DefaultHeartbeatTopic
	}
	if log == nil {
		log = logger.NewNop()
	}
	defaults := []nats.Option{
		nats.Name("companion-heartbeat"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSRestarter{conn: nc, subject: subject, clock: clock, log: log}, nil
}

// RestartHeartbeat implements ports.HeartbeatRestarter. The connection is safe for
// concurrent publishers so calls are not serialized here.
func (r *NATSRestarter) RestartHeartbeat(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now()
	if r.clock != nil {
		now = r.clock.Now()
	}
	data, err := json.Marshal(domain.HeartbeatRestart{RequestedAt: now.UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return fmt.Errorf("marshaling restart: %w", err)
	}
	if err := r.conn.Publish(r.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", r.subject, err)
	}
	r.log.Debug("heartbeat restart published", map[string]interface{}{"subject": r.subject})
	return nil
}

// Subject returns the publish subject.
func (r *NATSRestarter) Subject() string {
	return r.subject
}

// Close drains pending publishes and closes the connection. A connection that never
// reached the broker is closed without draining.
func (r *NATSRestarter) Close() error {
	if !r.conn.IsConnected() {
		r.conn.Close()
		return nil
	}
	return r.conn.Drain()
}

// Ping connects to url and round-trips one flush. Used by diagnostics.
func Ping(ctx context.Context, url string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}
	deadline, _ := ctx.Deadline()
	timeout := time.Until(deadline)
	nc, err := nats.Connect(url, nats.Name("companion-doctor"), nats.Timeout(timeout), nats.MaxReconnects(0))
	if err != nil {
		return fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	defer nc.Close()
	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing NATS connection: %w", err)
	}
	return nil
}

// NoopRestarter only logs the signal. Used when no heartbeat broker is configured.
type NoopRestarter struct {
	Logger ports.Logger
}

// RestartHeartbeat implements ports.HeartbeatRestarter.
func (n NoopRestarter) RestartHeartbeat(context.Context) error {
	if n.Logger != nil {
		n.Logger.Debug("heartbeat restart requested (no broker configured)", nil)
	}
	return nil
}

// Close is a no-op.
func (NoopRestarter) Close() error { return nil }

var (
	_ ports.HeartbeatRestarter = (*NATSRestarter)(nil)
	_ ports.HeartbeatRestarter = NoopRestarter{}
)
