package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/ports"
)

// TerminalSurface prints readiness changes as plain ASCII lines.
type TerminalSurface struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminalSurface writes to out.
func NewTerminalSurface(out io.Writer) *TerminalSurface {
	return &TerminalSurface{out: out}
}

// NewSurface adapts NewTerminalSurface to the command factory signature.
func NewSurface(out io.Writer) ports.AlertSurface {
	return NewTerminalSurface(out)
}

// StateChanged implements ports.AlertSurface.
func (t *TerminalSurface) StateChanged(state domain.ReadinessState) {
	t.printf("[state] %s\n", state)
}

// AlertChanged implements ports.AlertSurface.
func (t *TerminalSurface) AlertChanged(alert domain.AlertState) {
	if !alert.Visible {
		if alert.ID != "" {
			t.printf("[alert] dismissed %s\n", alert.ID)
		}
		return
	}
	t.printf("[alert] %s: %s (id=%s source=%s)\n", alert.Title, alert.Message, alert.ID, alert.Source)
}

// PairingChanged implements ports.AlertSurface.
func (t *TerminalSurface) PairingChanged(prompt bool) {
	if prompt {
		t.printf("[pairing] pairing file required\n")
		return
	}
	t.printf("[pairing] pairing file present\n")
}

func (t *TerminalSurface) printf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

var _ ports.AlertSurface = (*TerminalSurface)(nil)
