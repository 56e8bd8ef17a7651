package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/ports"
)

// NATSSource subscribes to lifecycle subjects (wildcards allowed). Payloads are JSON
// LifecycleEvents; when the kind is missing it is taken from the last subject token,
// so "companion.lifecycle.became_active" with an empty body is a valid event.
type NATSSource struct {
	conn    *nats.Conn
	subject string
	log     ports.Logger
}

// NewNATSSource connects with automatic reconnection. An empty subject uses
// DefaultLifecycleTopic.
func NewNATSSource(url, subject string, log ports.Logger, opts ...nats.Option) (*NATSSource, error) {
	if subject == "" {
		subject = domain.DefaultLifecycleTopic
	}
	if log == nil {
		log = logger.NewNop()
	}
	defaults := []nats.Option{
		nats.Name("companion-lifecycle"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", map[string]interface{}{"error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("nats reconnected", nil)
		}),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSource{conn: nc, subject: subject, log: log}, nil
}

// Events implements ports.LifecycleSource. The subscription ends when ctx is done.
func (s *NATSSource) Events(ctx context.Context) (<-chan domain.LifecycleEvent, error) {
	raw := make(chan *nats.Msg, 64)
	sub, err := s.conn.ChanSubscribe(s.subject, raw)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", s.subject, err)
	}
	// Flush registers the subscription before returning so later publishes are routed.
	// While the broker is unreachable the subscription is replayed on connect instead.
	if s.conn.IsConnected() {
		if err := s.conn.Flush(); err != nil {
			_ = sub.Unsubscribe()
			return nil, fmt.Errorf("flushing subscription: %w", err)
		}
	} else {
		s.log.Warn("lifecycle broker not connected; subscription pending", map[string]interface{}{"subject": s.subject})
	}

	out := make(chan domain.LifecycleEvent)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-raw:
				ev, err := DecodeMessage(msg.Subject, msg.Data)
				if err != nil {
					s.log.Warn("dropping lifecycle message", map[string]interface{}{
						"subject": msg.Subject,
						"error":   err.Error(),
					})
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the connection.
func (s *NATSSource) Close() error {
	s.conn.Close()
	return nil
}

// DecodeMessage builds an event from a subject and JSON payload.
func DecodeMessage(subject string, data []byte) (domain.LifecycleEvent, error) {
	var ev domain.LifecycleEvent
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &ev); err != nil {
			return domain.LifecycleEvent{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	if ev.Kind == "" {
		if i := strings.LastIndex(subject, "."); i >= 0 {
			ev.Kind = domain.LifecycleKind(subject[i+1:])
		} else {
			ev.Kind = domain.LifecycleKind(subject)
		}
	}
	switch ev.Kind {
	case domain.LifecycleBecameActive, domain.LifecycleNetworkDegraded, domain.LifecycleDismissAlert, domain.LifecyclePairing:
		return ev, nil
	default:
		return domain.LifecycleEvent{}, fmt.Errorf("unknown lifecycle kind %q", ev.Kind)
	}
}

var _ ports.LifecycleSource = (*NATSSource)(nil)
