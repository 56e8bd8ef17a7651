// Package readiness coordinates startup and foreground readiness.
//
// The Machine owns the ReadinessState and the single alert slot. On Start it runs the
// compatibility validator once and launches the daily version check; on every
// foreground transition it only re-signals the heartbeat collaborator. Network
// results are delivered asynchronously and never block the caller.
package readiness

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/idgen"
	"github.com/doeshing/companion-go/internal/pkg/logger"
	"github.com/doeshing/companion-go/internal/ports"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("readiness: already started")

// Options wires the collaborators. Validator is required; the rest are optional.
type Options struct {
	Validator ports.CompatibilityValidator
	Updates   ports.UpdateChecker
	Heartbeat ports.HeartbeatRestarter
	Platform  ports.PlatformProbe
	Network   ports.NetworkChecker
	Surface   ports.AlertSurface
	Clock     ports.Clock
	Logger    ports.Logger

	LocalVersion string
	// BlockOnIncompatible moves an unsupported host to AwaitingUserAction instead of Ready.
	BlockOnIncompatible bool
	// BenignNetworkSubstring suppresses network alerts whose message contains it.
	BenignNetworkSubstring string
	// NewAlertID overrides alert ID generation.
	NewAlertID func() (string, error)
}

// Machine is the readiness coordinator.
type Machine struct {
	opts Options
	log  ports.Logger

	mu       sync.Mutex
	state    domain.ReadinessState
	alert    domain.AlertState
	pairing  bool
	verdict  domain.CompatibilityVerdict
	identity domain.OSIdentity
	started  bool

	pub      publisher
	inflight sync.WaitGroup
	restarts atomic.Int64
}

// New returns a Machine in the Loading state.
func New(opts Options) *Machine {
	if opts.NewAlertID == nil {
		opts.NewAlertID = idgen.NewAlertID
	}
	if opts.BenignNetworkSubstring == "" {
		opts.BenignNetworkSubstring = domain.DefaultBenignSubstring
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	m := &Machine{
		opts:  opts,
		log:   log,
		state: domain.StateLoading,
	}
	m.pub.surface = opts.Surface
	m.pub.last = domain.Snapshot{State: domain.StateLoading}
	return m
}

// Start runs the startup checks. The compatibility verdict is applied before Start
// returns; the version check and the connectivity probe complete in the background.
func (m *Machine) Start(ctx context.Context) error {
	if m.opts.Validator == nil {
		return errors.New("readiness: validator not configured")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	m.evaluateCompatibility(ctx)
	m.launchVersionCheck(ctx)
	m.launchNetworkProbe(ctx)
	return nil
}

func (m *Machine) evaluateCompatibility(ctx context.Context) {
	next := domain.StateReady

	var identity domain.OSIdentity
	var err error
	if m.opts.Platform != nil {
		identity, err = m.opts.Platform.Identity(ctx)
	} else {
		err = errors.New("no platform probe configured")
	}

	if err != nil {
		m.log.Warn("host identity unavailable; skipping compatibility check", map[string]interface{}{"error": err.Error()})
	} else {
		verdict := m.opts.Validator.Validate(identity)
		m.mu.Lock()
		m.identity = identity
		m.verdict = verdict
		m.mu.Unlock()

		if !verdict.Supported {
			m.log.Warn("host OS unsupported", map[string]interface{}{
				"os":       identity.String(),
				"blocking": m.opts.BlockOnIncompatible,
			})
			m.raise(domain.AlertSourceCompatibility, verdict.Title, verdict.Message)
			if m.opts.BlockOnIncompatible {
				next = domain.StateAwaitingUserAction
			}
		}
	}

	m.mu.Lock()
	if !m.state.Terminal() {
		m.state = next
	}
	m.mu.Unlock()
	m.pub.flush(m)
}

func (m *Machine) launchVersionCheck(ctx context.Context) {
	if m.opts.Updates == nil {
		return
	}
	now := m.now()
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		outcome := m.opts.Updates.CheckForUpdate(ctx, now, m.opts.LocalVersion)
		if outcome.ShouldNotify {
			m.log.Info("update available", map[string]interface{}{
				"local":  m.opts.LocalVersion,
				"remote": outcome.RemoteVersion,
			})
			m.raise(domain.AlertSourceUpdate, domain.TitleUpdateAvailable, domain.UpdateMessage(outcome.RemoteVersion))
		}
	}()
}

func (m *Machine) launchNetworkProbe(ctx context.Context) {
	if m.opts.Network == nil {
		return
	}
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		if msg := m.opts.Network.Check(ctx); msg != "" {
			m.NetworkDegraded(msg)
		}
	}()
}

// BecameActive emits one heartbeat restart per call. Calls are neither throttled nor
// deduplicated and the result is not tracked beyond logging.
func (m *Machine) BecameActive(ctx context.Context) {
	m.restarts.Add(1)
	if m.opts.Heartbeat == nil {
		m.log.Debug("became active; no heartbeat collaborator configured", nil)
		return
	}
	m.log.Debug("became active; restarting heartbeat", nil)
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		if err := m.opts.Heartbeat.RestartHeartbeat(ctx); err != nil {
			m.log.Error("heartbeat restart signal failed", err, nil)
		}
	}()
}

// NetworkDegraded raises a "Network Issue" alert unless the message is the benign
// not-on-WiFi case. It reports whether an alert was raised.
func (m *Machine) NetworkDegraded(message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return false
	}
	if strings.Contains(strings.ToLower(message), strings.ToLower(m.opts.BenignNetworkSubstring)) {
		m.log.Debug("ignoring benign network condition", map[string]interface{}{"message": message})
		return false
	}
	m.raise(domain.AlertSourceNetwork, domain.TitleNetworkIssue, message)
	return true
}

// DismissAlert hides the alert with the given ID. A stale ID (the alert was already
// superseded) leaves the current alert untouched.
func (m *Machine) DismissAlert(id string) bool {
	m.mu.Lock()
	if !m.alert.Visible || (id != "" && m.alert.ID != id) {
		m.mu.Unlock()
		return false
	}
	m.alert.Visible = false
	m.mu.Unlock()
	m.pub.flush(m)
	return true
}

// DismissCurrent hides whatever alert is showing.
func (m *Machine) DismissCurrent() bool {
	return m.DismissAlert("")
}

// SetPairingPrompt records the externally derived pairing/file-import flag.
func (m *Machine) SetPairingPrompt(enabled bool) {
	m.mu.Lock()
	m.pairing = enabled
	m.mu.Unlock()
	m.pub.flush(m)
}

// Dispatch routes a lifecycle event to the matching handler.
func (m *Machine) Dispatch(ctx context.Context, ev domain.LifecycleEvent) error {
	switch ev.Kind {
	case domain.LifecycleBecameActive:
		m.BecameActive(ctx)
	case domain.LifecycleNetworkDegraded:
		m.NetworkDegraded(ev.Message)
	case domain.LifecycleDismissAlert:
		m.DismissAlert(ev.AlertID)
	case domain.LifecyclePairing:
		m.SetPairingPrompt(ev.Enabled)
	default:
		return errors.New("readiness: unknown lifecycle event " + string(ev.Kind))
	}
	return nil
}

// Snapshot returns the latest committed state.
func (m *Machine) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.Snapshot{State: m.state, Alert: m.alert, PromptPairing: m.pairing}
}

// Compatibility returns the host identity and verdict evaluated at Start.
func (m *Machine) Compatibility() (domain.OSIdentity, domain.CompatibilityVerdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity, m.verdict
}

// HeartbeatRestarts counts restart signals requested since construction.
func (m *Machine) HeartbeatRestarts() int64 {
	return m.restarts.Load()
}

// Wait blocks until background work started so far has finished.
func (m *Machine) Wait() {
	m.inflight.Wait()
}

// raise overwrites the alert slot; the most recent raise wins.
func (m *Machine) raise(source domain.AlertSource, title, message string) domain.AlertState {
	id, err := m.opts.NewAlertID()
	if err != nil {
		m.log.Warn("alert id generation failed", map[string]interface{}{"error": err.Error()})
	}
	alert := domain.AlertState{
		ID:       id,
		Title:    title,
		Message:  message,
		Visible:  true,
		Source:   source,
		RaisedAt: m.now(),
	}
	m.mu.Lock()
	if m.alert.Visible {
		m.log.Debug("alert superseded", map[string]interface{}{
			"previous": m.alert.Title,
			"next":     title,
		})
	}
	m.alert = alert
	m.mu.Unlock()
	m.pub.flush(m)
	return alert
}

func (m *Machine) now() time.Time {
	if m.opts.Clock == nil {
		return time.Now()
	}
	return m.opts.Clock.Now()
}
