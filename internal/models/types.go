package models

type StepID int

type TerminalStatus string

const (
	TerminalPending   TerminalStatus = "pending"
	TerminalCompleted TerminalStatus = "completed"
)

func (s TerminalStatus) Valid() bool {
	return s == TerminalPending || s == TerminalCompleted
}

// Normalize maps the empty status of a freshly decoded payload to pending.
func (s TerminalStatus) Normalize() TerminalStatus {
	if s == "" {
		return TerminalPending
	}
	return s
}
