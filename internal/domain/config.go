package domain

// Config mirrors ~/.companion/config.yaml.
type Config struct {
	ConfigFormatVersion string                `yaml:"config_format_version" json:"config_format_version"`
	App                 AppSettings           `yaml:"app" json:"app"`
	Update              UpdateSettings        `yaml:"update" json:"update"`
	Compatibility       CompatibilitySettings `yaml:"compatibility" json:"compatibility"`
	Platform            PlatformSettings      `yaml:"platform" json:"platform"`
	Network             NetworkSettings       `yaml:"network" json:"network"`
	Heartbeat           HeartbeatSettings     `yaml:"heartbeat" json:"heartbeat"`
	Lifecycle           LifecycleSettings     `yaml:"lifecycle" json:"lifecycle"`
	Storage             StorageSettings       `yaml:"storage" json:"storage"`
	Telemetry           TelemetrySettings     `yaml:"telemetry" json:"telemetry"`
}

// AppSettings describes the running application build.
type AppSettings struct {
	// LocalVersion overrides the compiled-in version when set.
	LocalVersion string `yaml:"local_version" json:"local_version" env:"COMPANION_LOCAL_VERSION"`
}

// UpdateSettings configures the daily release check.
type UpdateSettings struct {
	VersionURL string `yaml:"version_url" json:"version_url" env:"COMPANION_VERSION_URL"`
	Timeout    string `yaml:"timeout" json:"timeout"`
	// Timezone decides where the calendar day boundary falls. "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone" env:"COMPANION_TIMEZONE"`
}

// CompatibilitySettings controls how host OS verdicts are applied.
type CompatibilitySettings struct {
	Blocking     bool          `yaml:"blocking" json:"blocking"`
	MinimumMajor int           `yaml:"minimum_major" json:"minimum_major"`
	MinimumMinor int           `yaml:"minimum_minor" json:"minimum_minor"`
	DeniedBuilds []DeniedBuild `yaml:"denied_builds" json:"denied_builds"`
}

// DeniedBuild names one exact OS build that is unsupported despite passing the version floor.
type DeniedBuild struct {
	Major   int    `yaml:"major" json:"major"`
	Minor   int    `yaml:"minor" json:"minor"`
	Patch   int    `yaml:"patch" json:"patch"`
	BuildID string `yaml:"build_id" json:"build_id"`
	Reason  string `yaml:"reason" json:"reason"`
}

// Matches reports whether the identity is exactly this build.
func (d DeniedBuild) Matches(os OSIdentity) bool {
	return d.Major == os.Major && d.Minor == os.Minor && d.Patch == os.Patch && d.BuildID == os.BuildID
}

// PlatformSettings lets tests and simulators substitute the host identity.
type PlatformSettings struct {
	Simulate SimulatedOS `yaml:"simulate" json:"simulate"`
}

// SimulatedOS is used instead of the probed host when Enabled.
type SimulatedOS struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Major   int    `yaml:"major" json:"major"`
	Minor   int    `yaml:"minor" json:"minor"`
	Patch   int    `yaml:"patch" json:"patch"`
	BuildID string `yaml:"build_id" json:"build_id"`
}

// Identity converts the simulation block to an OSIdentity.
func (s SimulatedOS) Identity() OSIdentity {
	return OSIdentity{Major: s.Major, Minor: s.Minor, Patch: s.Patch, BuildID: s.BuildID}
}

// NetworkSettings configures the startup connectivity probe.
type NetworkSettings struct {
	ProbeHost       string `yaml:"probe_host" json:"probe_host"`
	BenignSubstring string `yaml:"benign_substring" json:"benign_substring"`
}

// HeartbeatSettings configures where restart signals go.
type HeartbeatSettings struct {
	NATSURL string `yaml:"nats_url" json:"nats_url" env:"COMPANION_NATS_URL"`
	Subject string `yaml:"subject" json:"subject"`
}

// LifecycleSettings configures the NATS lifecycle event subscription.
type LifecycleSettings struct {
	NATSSubject string `yaml:"nats_subject" json:"nats_subject"`
}

// StorageSettings selects the DateStore backend.
type StorageSettings struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

// TelemetrySettings enables OTLP trace export.
type TelemetrySettings struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" json:"otlp_endpoint" env:"COMPANION_OTLP_ENDPOINT"`
}

// Storage backends.
const (
	StorageBackendSQLite = "sqlite"
	StorageBackendFile   = "file"
)
