package readiness

import (
	"sync"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/ports"
)

// publisher delivers committed snapshots to the surface. Only one goroutine delivers
// at a time and it always reads the latest snapshot, so the surface never observes a
// value older than one it has already seen. A surface callback may call back into the
// Machine: the nested flush marks the publisher dirty and the active loop picks it up.
type publisher struct {
	surface ports.AlertSurface

	mu       sync.Mutex
	dirty    bool
	flushing bool
	last     domain.Snapshot
}

func (p *publisher) flush(m *Machine) {
	if p.surface == nil {
		return
	}

	p.mu.Lock()
	p.dirty = true
	if p.flushing {
		p.mu.Unlock()
		return
	}
	p.flushing = true
	for p.dirty {
		p.dirty = false
		prev := p.last
		p.mu.Unlock()

		snap := m.Snapshot()
		if snap.State != prev.State {
			p.surface.StateChanged(snap.State)
		}
		if snap.Alert != prev.Alert {
			p.surface.AlertChanged(snap.Alert)
		}
		if snap.PromptPairing != prev.PromptPairing {
			p.surface.PairingChanged(snap.PromptPairing)
		}

		p.mu.Lock()
		p.last = snap
	}
	p.flushing = false
	p.mu.Unlock()
}
