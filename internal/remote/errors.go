package remote

import "errors"

var (
	// ErrNetworkFailure covers transport errors, timeouts and non-2xx replies.
	ErrNetworkFailure = errors.New("remote progress store unreachable")
	// ErrNotFound means the store has no progress for the roadmap yet.
	ErrNotFound = errors.New("remote progress not found")
)
