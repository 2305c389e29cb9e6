package db

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS roadmaps (
    id TEXT PRIMARY KEY,
    company TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS roadmap_subtasks (
    roadmap_id TEXT NOT NULL REFERENCES roadmaps(id),
    kind TEXT NOT NULL,
    subtask_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (roadmap_id, kind, subtask_id)
);

CREATE TABLE IF NOT EXISTS step_progress (
    candidate_id TEXT NOT NULL,
    roadmap_id TEXT NOT NULL,
    step_id INTEGER NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at DATETIME,
    PRIMARY KEY (candidate_id, roadmap_id, step_id)
);

CREATE TABLE IF NOT EXISTS gate_progress (
    candidate_id TEXT NOT NULL,
    roadmap_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    subtask_id TEXT NOT NULL,
    checked BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (candidate_id, roadmap_id, kind, subtask_id)
);

CREATE TABLE IF NOT EXISTS quiz_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    candidate_id TEXT NOT NULL,
    roadmap_id TEXT NOT NULL,
    score INTEGER NOT NULL,
    taken_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_quiz_results_candidate
    ON quiz_results (candidate_id, roadmap_id);
`

// InitSchema creates the progress server tables.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Open opens the sqlite database at path with WAL and a busy timeout and
// makes sure the schema exists.
func Open(path string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := InitSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}
