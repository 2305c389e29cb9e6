package models

import (
	"testing"

	"pgregory.net/rapid"
)

func TestStepRegistryOrderMatchesID(t *testing.T) {
	steps := Steps()
	if len(steps) != StepCount() {
		t.Fatalf("expected %d steps, got %d", StepCount(), len(steps))
	}
	for i, step := range steps {
		if step.Order != int(step.ID) {
			t.Errorf("step %q: order %d != id %d", step.Name, step.Order, step.ID)
		}
		if int(step.ID) != i+1 {
			t.Errorf("step %q: expected id %d, got %d", step.Name, i+1, step.ID)
		}
	}
	if LastStepID() != StepQuiz {
		t.Errorf("expected quiz to be the last step, got %d", LastStepID())
	}
}

func TestStepsReturnsCopy(t *testing.T) {
	steps := Steps()
	steps[0].Name = "mutated"
	if got := Steps()[0].Name; got != "Prerequisites" {
		t.Fatalf("registry was mutated through Steps(): %q", got)
	}
}

func TestProperty1_LookupStep(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := StepID(rapid.IntRange(-5, 10).Draw(t, "id"))
		step, ok := LookupStep(id)
		inRange := id >= 1 && int(id) <= StepCount()
		if ok != inRange {
			t.Fatalf("LookupStep(%d) ok=%v, expected %v", id, ok, inRange)
		}
		if ok && step.ID != id {
			t.Fatalf("LookupStep(%d) returned step %d", id, step.ID)
		}
		if !ok && StepName(id) == "" {
			t.Fatalf("StepName(%d) should fall back to a generic name", id)
		}
	})
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		input string
		want  StepID
		ok    bool
	}{
		{"1", StepPrerequisites, true},
		{" 4 ", StepQuiz, true},
		{"courses", StepCourses, true},
		{"Improve Skills", StepImproveSkills, true},
		{"improve-skills", StepImproveSkills, true},
		{"IMPROVE_SKILLS", StepImproveSkills, true},
		{"5", 0, false},
		{"0", 0, false},
		{"homework", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseStep(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStep(%q) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
