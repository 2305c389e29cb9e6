package models

import "time"

// StepProgress is one row of the server-side step progress table.
type StepProgress struct {
	CandidateID string
	RoadmapID   string
	StepID      StepID
	Completed   bool
	CompletedAt *time.Time
}

// GateProgress is one checked or unchecked course/skill on the server side.
type GateProgress struct {
	CandidateID string
	RoadmapID   string
	Kind        GateKind
	SubtaskID   string
	Checked     bool
}

type GateKind string

const (
	GateCourse GateKind = "course"
	GateSkill  GateKind = "skill"
)

// QuizResult is the final outcome of one quiz attempt.
type QuizResult struct {
	ID          int64
	CandidateID string
	RoadmapID   string
	Score       int
	TakenAt     time.Time
}
