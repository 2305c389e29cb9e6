package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedPayload = errors.New("malformed progress payload")
	ErrUnknownStep      = errors.New("unknown step")
	ErrQuizStepManaged  = errors.New("quiz step is completed by the quiz flow only")
	ErrUnknownSubtask   = errors.New("unknown sub-task")
	ErrGateNotSatisfied = errors.New("gate not satisfied")
)

// ErrChecklistUnavailable is returned, wrapped together with
// ErrGateNotSatisfied, when a gated step is attempted before the roadmap
// definition has ever been loaded.
var ErrChecklistUnavailable = errors.New("sub-task checklist not loaded")

// GateError reports the sub-tasks still blocking a gated step.
type GateError struct {
	StepID    StepID
	Remaining []string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s: %s still needs %s", ErrGateNotSatisfied, StepName(e.StepID), strings.Join(e.Remaining, ", "))
}

func (e *GateError) Unwrap() error {
	return ErrGateNotSatisfied
}
