package db

import (
	"database/sql"
	"testing"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	"pgregory.net/rapid"
)

func stepMap(steps []models.StepProgress) map[models.StepID]bool {
	out := make(map[models.StepID]bool, len(steps))
	for _, s := range steps {
		out[s.StepID] = s.Completed
	}
	return out
}

func TestUpsertSteps_CompletedStaysCompleted(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))

	err := repo.UpsertSteps("c1", "r1", map[models.StepID]bool{
		models.StepPrerequisites: true,
		models.StepCourses:       false,
	})
	if err != nil {
		t.Fatalf("UpsertSteps failed: %v", err)
	}

	err = repo.UpsertSteps("c1", "r1", map[models.StepID]bool{
		models.StepPrerequisites: false,
		models.StepCourses:       true,
	})
	if err != nil {
		t.Fatalf("UpsertSteps failed: %v", err)
	}

	steps, err := repo.GetSteps("c1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	got := stepMap(steps)
	if !got[models.StepPrerequisites] {
		t.Error("Expected step 1 to stay completed after a false write")
	}
	if !got[models.StepCourses] {
		t.Error("Expected step 2 to become completed")
	}
	for _, s := range steps {
		if s.Completed && s.CompletedAt == nil {
			t.Errorf("Expected completed_at for step %d", s.StepID)
		}
	}
}

func TestUpsertSteps_KeepsFirstCompletionTime(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))

	if err := repo.UpsertSteps("c1", "r1", map[models.StepID]bool{models.StepQuiz: true}); err != nil {
		t.Fatal(err)
	}
	first, err := repo.GetSteps("c1", "r1")
	if err != nil || len(first) != 1 || first[0].CompletedAt == nil {
		t.Fatalf("Unexpected first read: %+v, %v", first, err)
	}

	if err := repo.UpsertSteps("c1", "r1", map[models.StepID]bool{models.StepQuiz: true}); err != nil {
		t.Fatal(err)
	}
	second, err := repo.GetSteps("c1", "r1")
	if err != nil || len(second) != 1 || second[0].CompletedAt == nil {
		t.Fatalf("Unexpected second read: %+v, %v", second, err)
	}
	if !first[0].CompletedAt.Equal(*second[0].CompletedAt) {
		t.Errorf("completed_at changed from %v to %v", first[0].CompletedAt, second[0].CompletedAt)
	}
}

func TestReplaceGates_LastWriteWins(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))

	err := repo.ReplaceGates("c1", "r1",
		map[string]bool{"go-basics": true, "sql-101": true},
		map[string]bool{"testing": true})
	if err != nil {
		t.Fatal(err)
	}
	err = repo.ReplaceGates("c1", "r1",
		map[string]bool{"go-basics": false},
		map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}

	gates, err := repo.GetGates("c1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(gates) != 1 {
		t.Fatalf("Expected 1 gate row, got %d: %+v", len(gates), gates)
	}
	if gates[0].Kind != models.GateCourse || gates[0].SubtaskID != "go-basics" || gates[0].Checked {
		t.Errorf("Unexpected gate: %+v", gates[0])
	}
}

func TestHasProgress(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))

	has, err := repo.HasProgress("c1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("Expected no progress for a fresh database")
	}

	if err := repo.ReplaceGates("c1", "r1", map[string]bool{"x": false}, nil); err != nil {
		t.Fatal(err)
	}
	has, err = repo.HasProgress("c1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("Expected progress after a gate write")
	}
}

func TestCountCompleted(t *testing.T) {
	repo := NewProgressRepository(setupTestDB(t))

	for _, candidate := range []string{"c1", "c2", "c3"} {
		completed := candidate != "c3"
		if err := repo.UpsertSteps(candidate, "r1", map[models.StepID]bool{models.StepQuiz: completed}); err != nil {
			t.Fatal(err)
		}
	}

	count, err := repo.CountCompleted("r1", models.StepQuiz)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 completions, got %d", count)
	}
}

// Any sequence of step writes leaves a step completed iff some write completed it.
func TestPropertyStepWritesAreMonotonic(t *testing.T) {
	queue := setupTestDB(t)
	repo := NewProgressRepository(queue)

	rapid.Check(t, func(rt *rapid.T) {
		candidate := "prop-" + rapid.StringMatching(`[a-z]{6}`).Draw(rt, "candidate")
		writes := rapid.SliceOfN(rapid.SliceOfN(rapid.Bool(), 4, 4), 1, 6).Draw(rt, "writes")

		expected := map[models.StepID]bool{}
		for _, w := range writes {
			steps := map[models.StepID]bool{}
			for i, id := range models.StepIDs() {
				steps[id] = w[i]
				expected[id] = expected[id] || w[i]
			}
			if err := repo.UpsertSteps(candidate, "r-prop", steps); err != nil {
				rt.Fatal(err)
			}
		}

		got, err := repo.GetSteps(candidate, "r-prop")
		if err != nil {
			rt.Fatal(err)
		}
		gotMap := stepMap(got)
		for _, id := range models.StepIDs() {
			if gotMap[id] != expected[id] {
				rt.Fatalf("step %d: expected %v, got %v", id, expected[id], gotMap[id])
			}
		}

		if err := queue.Exec(func(db *sql.DB) error {
			_, err := db.Exec(`DELETE FROM step_progress WHERE candidate_id = ?`, candidate)
			return err
		}); err != nil {
			rt.Fatal(err)
		}
	})
}
