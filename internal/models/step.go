package models

import (
	"strconv"
	"strings"
)

// StepDefinition is one stage of the roadmap. Order always equals ID.
type StepDefinition struct {
	ID    StepID
	Name  string
	Order int
}

const (
	StepPrerequisites StepID = 1
	StepCourses       StepID = 2
	StepImproveSkills StepID = 3
	StepQuiz          StepID = 4
)

var registry = []StepDefinition{
	{ID: StepPrerequisites, Name: "Prerequisites", Order: 1},
	{ID: StepCourses, Name: "Courses", Order: 2},
	{ID: StepImproveSkills, Name: "Improve Skills", Order: 3},
	{ID: StepQuiz, Name: "Quiz", Order: 4},
}

// Steps returns the roadmap steps in order. The slice is a copy.
func Steps() []StepDefinition {
	out := make([]StepDefinition, len(registry))
	copy(out, registry)
	return out
}

func StepIDs() []StepID {
	ids := make([]StepID, len(registry))
	for i, step := range registry {
		ids[i] = step.ID
	}
	return ids
}

func StepCount() int {
	return len(registry)
}

func LastStepID() StepID {
	return registry[len(registry)-1].ID
}

func LookupStep(id StepID) (StepDefinition, bool) {
	for _, step := range registry {
		if step.ID == id {
			return step, true
		}
	}
	return StepDefinition{}, false
}

// StepName returns the display name, or "step N" for ids outside the registry.
func StepName(id StepID) string {
	if step, ok := LookupStep(id); ok {
		return step.Name
	}
	return "step " + strconv.Itoa(int(id))
}

// ParseStep accepts a step number or a case-insensitive step name, with
// spaces, dashes and underscores ignored ("improve-skills", "3").
func ParseStep(value string) (StepID, bool) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		if _, ok := LookupStep(StepID(n)); ok {
			return StepID(n), true
		}
		return 0, false
	}
	key := compactName(value)
	for _, step := range registry {
		if compactName(step.Name) == key {
			return step.ID, true
		}
	}
	return 0, false
}

func compactName(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(value))
}
