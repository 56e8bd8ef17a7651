package domain

import "time"

// VersionCheckRecord is the persisted state of the daily release check.
type VersionCheckRecord struct {
	LastCheckedDate time.Time `json:"last_checked_date"`
	LocalVersion    string    `json:"local_version"`
}

// UpdateOutcome is the result of one VersionGate evaluation.
type UpdateOutcome struct {
	ShouldNotify  bool   `json:"should_notify"`
	RemoteVersion string `json:"remote_version,omitempty"`
	// Throttled is set when the check was skipped because today was already checked.
	Throttled bool `json:"throttled"`
}
