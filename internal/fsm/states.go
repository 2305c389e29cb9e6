package fsm

// Phases a roadmap session passes through while it loads.
const (
	StateUninitialized = "uninitialized"
	StateMerging       = "merging"
	StateReady         = "ready"
)

// Phases after load.
const (
	StateWatching = "watching"
	StateTerminal = "terminal"
	StateClosed   = "closed"
)
