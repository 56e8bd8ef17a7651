// Package domain defines the value types shared by the readiness orchestrator,
// its adapters and the CLI.
package domain

import (
	"fmt"
	"time"
)

// ReadinessState is the coarse phase the application is in.
type ReadinessState string

const (
	StateLoading            ReadinessState = "loading"
	StateAwaitingUserAction ReadinessState = "awaiting_user_action"
	StateReady              ReadinessState = "ready"
)

// Terminal reports whether no further startup transition is expected.
func (s ReadinessState) Terminal() bool {
	return s == StateAwaitingUserAction || s == StateReady
}

// AlertSource identifies which collaborator raised an alert.
type AlertSource string

const (
	AlertSourceCompatibility AlertSource = "compatibility"
	AlertSourceUpdate        AlertSource = "update"
	AlertSourceNetwork       AlertSource = "network"
)

// AlertState is the single pending alert slot. A newer alert replaces an older one.
type AlertState struct {
	ID       string      `json:"id,omitempty"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Visible  bool        `json:"visible"`
	Source   AlertSource `json:"source,omitempty"`
	RaisedAt time.Time   `json:"raised_at,omitempty"`
}

// Snapshot is everything the presentation layer reads from the orchestrator.
type Snapshot struct {
	State         ReadinessState `json:"state"`
	Alert         AlertState     `json:"alert"`
	PromptPairing bool           `json:"prompt_pairing"`
}

// Alert titles and message formats.
const (
	TitleUpdateAvailable = "Update Available!"
	TitleUnsupportedOS   = "Unsupported OS Version"
	TitleNetworkIssue    = "Network Issue"
)

// UpdateMessage renders the update alert body.
func UpdateMessage(remote string) string {
	return fmt.Sprintf("Update to: version %s!", remote)
}
