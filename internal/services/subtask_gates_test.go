package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

func TestToggleCourse(t *testing.T) {
	cache := newFakeCache()
	persister := &recordingPersister{}
	gates := NewSubtaskGates(NewProgressWriter(cache, persister), nil)

	record := recordWith(models.StepPrerequisites)
	record.CourseCompletion = map[string]bool{"go-basics": false, "sql-101": true}

	out, err := gates.ToggleCourse(context.Background(), record, "go-basics")
	if err != nil {
		t.Fatalf("ToggleCourse failed: %v", err)
	}
	if !out.CourseCompletion["go-basics"] {
		t.Error("Expected go-basics checked")
	}
	if out.StepCompletion[models.StepCourses] {
		t.Error("Checking every course must not complete the Courses step")
	}
	if record.CourseCompletion["go-basics"] {
		t.Error("Input record was mutated")
	}
	if cache.saveCount() != 1 || persister.count() != 1 {
		t.Errorf("Expected one write each, got cache=%d remote=%d", cache.saveCount(), persister.count())
	}

	out, err = gates.ToggleCourse(context.Background(), out, "go-basics")
	if err != nil {
		t.Fatal(err)
	}
	if out.CourseCompletion["go-basics"] {
		t.Error("Expected second toggle to uncheck")
	}
}

func TestToggleSkill(t *testing.T) {
	gates := NewSubtaskGates(NewProgressWriter(newFakeCache(), nil), nil)

	record := recordWith()
	record.SkillChecklist = map[string]bool{"testing": false}

	out, err := gates.ToggleSkill(context.Background(), record, "testing")
	if err != nil {
		t.Fatal(err)
	}
	if !out.SkillChecklist["testing"] {
		t.Error("Expected testing checked")
	}
	if len(out.PendingSkills()) != 0 {
		t.Errorf("Expected no pending skills, got %v", out.PendingSkills())
	}
}

func TestToggle_UnknownSubtask(t *testing.T) {
	gates := NewSubtaskGates(NewProgressWriter(newFakeCache(), nil), nil)

	record := recordWith()
	record.CourseCompletion = map[string]bool{"go-basics": false}

	out, err := gates.ToggleCourse(context.Background(), record, "rust")
	if !errors.Is(err, models.ErrUnknownSubtask) {
		t.Errorf("Expected ErrUnknownSubtask, got %v", err)
	}
	if !reflect.DeepEqual(out, record) {
		t.Error("Expected record unchanged")
	}

	_, err = gates.ToggleSkill(context.Background(), record, "go-basics")
	if !errors.Is(err, models.ErrUnknownSubtask) {
		t.Errorf("A course id is not a skill id: got %v", err)
	}
}

func TestToggle_Terminal(t *testing.T) {
	cache := newFakeCache()
	gates := NewSubtaskGates(NewProgressWriter(cache, nil), nil)

	record := recordWith()
	record.CourseCompletion = map[string]bool{"go-basics": false}
	record = models.ApplyTerminal(record)

	out, err := gates.ToggleCourse(context.Background(), record, "go-basics")
	if err != nil {
		t.Fatal(err)
	}
	if out.CourseCompletion["go-basics"] {
		t.Error("Terminal record must not change")
	}
	if cache.saveCount() != 0 {
		t.Error("Expected no write for a terminal record")
	}
}
