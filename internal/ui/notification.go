package ui

import "time"

// Severity classifies a status message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is one status message. A positive AutoDismiss removes it
// after that long unless a newer message replaced it first.
type Notification struct {
	Severity    Severity
	Text        string
	AutoDismiss time.Duration
}
