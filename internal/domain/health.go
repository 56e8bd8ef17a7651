package domain

// HealthStatus indicates doctor check outcomes.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck captures a single diagnostic result.
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Details string       `json:"details"`
}

// HealthReport aggregates checks.
type HealthReport struct {
	Checks []HealthCheck `json:"checks"`
}

// Failed reports whether any check is in error.
func (r HealthReport) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == HealthError {
			return true
		}
	}
	return false
}
