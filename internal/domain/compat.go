package domain

import "fmt"

// OSIdentity is a read-only snapshot of the host operating system.
type OSIdentity struct {
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Patch   int    `json:"patch"`
	BuildID string `json:"build_id"`
}

// String renders the identity as "18.4.0 (22E5200)".
func (o OSIdentity) String() string {
	if o.BuildID == "" {
		return fmt.Sprintf("%d.%d.%d", o.Major, o.Minor, o.Patch)
	}
	return fmt.Sprintf("%d.%d.%d (%s)", o.Major, o.Minor, o.Patch, o.BuildID)
}

// CompatibilityVerdict is constructed fresh per evaluation and never persisted.
type CompatibilityVerdict struct {
	Supported bool   `json:"supported"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message,omitempty"`
}
