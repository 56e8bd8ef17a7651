// Package lifecycle turns platform notifications into LifecycleEvents.
package lifecycle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/ports"
)

// LineSource reads one command per line:
//
//	became_active
//	network_degraded <message>
//	dismiss [alert-id]
//	pairing on|off
//
// Blank lines and lines starting with '#' are skipped. Malformed lines are logged
// and dropped.
type LineSource struct {
	r   io.Reader
	log ports.Logger
}

// NewLineSource wraps r.
func NewLineSource(r io.Reader, log ports.Logger) *LineSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &LineSource{r: r, log: log}
}

// Events implements ports.LifecycleSource. The channel closes at EOF or when ctx is done.
func (s *LineSource) Events(ctx context.Context) (<-chan domain.LifecycleEvent, error) {
	ch := make(chan domain.LifecycleEvent)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			ev, err := ParseLine(line)
			if err != nil {
				s.log.Warn("ignoring lifecycle line", map[string]interface{}{"line": line, "error": err.Error()})
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.log.Error("lifecycle input failed", err, nil)
		}
	}()
	return ch, nil
}

// ParseLine decodes one textual command.
func ParseLine(line string) (domain.LifecycleEvent, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "became_active", "active":
		return domain.LifecycleEvent{Kind: domain.LifecycleBecameActive}, nil
	case "network_degraded", "network":
		if rest == "" {
			return domain.LifecycleEvent{}, fmt.Errorf("%s needs a message", verb)
		}
		return domain.LifecycleEvent{Kind: domain.LifecycleNetworkDegraded, Message: rest}, nil
	case "dismiss", "dismiss_alert":
		return domain.LifecycleEvent{Kind: domain.LifecycleDismissAlert, AlertID: rest}, nil
	case "pairing", "pairing_required":
		switch strings.ToLower(rest) {
		case "on", "true", "1", "yes":
			return domain.LifecycleEvent{Kind: domain.LifecyclePairing, Enabled: true}, nil
		case "off", "false", "0", "no":
			return domain.LifecycleEvent{Kind: domain.LifecyclePairing, Enabled: false}, nil
		default:
			return domain.LifecycleEvent{}, fmt.Errorf("pairing expects on|off, got %q", rest)
		}
	default:
		return domain.LifecycleEvent{}, fmt.Errorf("unknown lifecycle command %q", verb)
	}
}

var _ ports.LifecycleSource = (*LineSource)(nil)
