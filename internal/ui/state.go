package ui

// State is the phase of the connect lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateConnecting
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateConnecting:
		return "connecting"
	case StateDisplaying:
		return "displaying"
	default:
		return "unknown"
	}
}
