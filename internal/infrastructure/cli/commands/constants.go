package commands

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrGateUnavailable          = "version gate unavailable"
	ErrValidatorUnavailable     = "compatibility validator unavailable"
	ErrKeyRequired              = "--key is required"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgAlreadyCheckedToday      = "Already checked today; use --force to check again."
	MsgUpToDate                 = "Up to date"
)
