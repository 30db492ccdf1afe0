package plugin

// Status represents the lifecycle state of a registered plugin.
type Status int

const (
	StatusIdle    Status = iota // registered, not active
	StatusLoading               // activation in flight
	StatusActive                // activated, capability loaded if declared
	StatusFailed                // last activation or load failed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusActive:
		return "active"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText makes Status render as its name in JSON snapshots.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
