package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
)

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "roadmaps.yaml")
	dbPath := filepath.Join(dir, "progress.db")
	catalog := "roadmaps:\n  - id: r1\n    company: Acme\n    courses:\n      - id: go\n  - id: r2\n"
	if err := os.WriteFile(catalogPath, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		count, err := seed(dbPath, catalogPath, logging.NewNop())
		if err != nil {
			t.Fatalf("seed run %d failed: %v", i+1, err)
		}
		if count != 2 {
			t.Errorf("Expected 2 roadmaps, got %d", count)
		}
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()
	queue := db.NewDBQueueForTest(sqlDB)
	defer queue.Close()

	def, err := db.NewRoadmapRepository(queue).Get("r1")
	if err != nil {
		t.Fatal(err)
	}
	if def.Company != "Acme" || len(def.Courses) != 1 {
		t.Errorf("Unexpected definition after reseed: %+v", def)
	}
}
