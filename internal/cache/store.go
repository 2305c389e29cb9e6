package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// ErrCacheLocked is returned by Open when another process owns the cache.
var ErrCacheLocked = errors.New("progress cache is locked by another process")

const schema = `
CREATE TABLE IF NOT EXISTS progress_cache (
    roadmap_id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
`

// Entry summarizes one cached record for inspection.
type Entry struct {
	RoadmapID       string
	CandidateID     string
	ProgressPercent int
	TerminalStatus  models.TerminalStatus
	Valid           bool
	UpdatedAt       time.Time
}

// Store is the device-local progress cache keyed by roadmap id.
type Store struct {
	path   string
	sqlDB  *sql.DB
	queue  *db.DBQueue
	lock   *flock.Flock
	logger *slog.Logger
}

// Open creates the cache file if needed and takes the single-writer lock.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheLocked, path)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open cache: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Store{
		path:   path,
		sqlDB:  sqlDB,
		queue:  db.NewDBQueue(sqlDB),
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "cache"),
	}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the cached record. Rows that never existed, fail to decode or
// have the wrong shape are all reported as absent.
func (s *Store) Load(roadmapID string) (models.ProgressRecord, bool) {
	payload, err := db.Run(s.queue, func(conn *sql.DB) (string, error) {
		var payload string
		err := conn.QueryRow(`SELECT payload FROM progress_cache WHERE roadmap_id = ?`, roadmapID).Scan(&payload)
		return payload, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProgressRecord{}, false
	}
	if err != nil {
		logging.WarnWithContext(s.logger, "cache read failed", "cache_read_failed",
			logging.String(logging.FieldRoadmapID, roadmapID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to remote progress"),
		)
		return models.ProgressRecord{}, false
	}

	record, err := decode(payload)
	if err != nil {
		logging.WarnWithContext(s.logger, "ignoring malformed cache entry", "cache_malformed",
			logging.String(logging.FieldRoadmapID, roadmapID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "cached progress discarded"),
		)
		return models.ProgressRecord{}, false
	}
	return record, true
}

// Save writes the record synchronously. Failures are logged, never returned.
func (s *Store) Save(roadmapID string, r models.ProgressRecord) {
	payload, err := json.Marshal(r)
	if err != nil {
		logging.WarnWithContext(s.logger, "cache encode failed", "cache_write_failed",
			logging.String(logging.FieldRoadmapID, roadmapID),
			logging.Error(err),
		)
		return
	}
	err = s.queue.Exec(func(conn *sql.DB) error {
		_, err := conn.Exec(`
			INSERT INTO progress_cache (roadmap_id, candidate_id, payload, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(roadmap_id) DO UPDATE SET
				candidate_id = excluded.candidate_id,
				payload = excluded.payload,
				updated_at = excluded.updated_at
		`, roadmapID, r.CandidateID, string(payload), time.Now().UTC())
		return err
	})
	if err != nil {
		logging.WarnWithContext(s.logger, "cache write failed", "cache_write_failed",
			logging.String(logging.FieldRoadmapID, roadmapID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "progress kept in memory and remote only"),
		)
		return
	}
	s.logger.Debug("progress cached",
		logging.String(logging.FieldRoadmapID, roadmapID),
		logging.Int("progress_percent", r.ProgressPercent),
	)
}

// Delete removes the cached record; it reports whether a row existed.
func (s *Store) Delete(roadmapID string) (bool, error) {
	affected, err := db.Run(s.queue, func(conn *sql.DB) (int64, error) {
		res, err := conn.Exec(`DELETE FROM progress_cache WHERE roadmap_id = ?`, roadmapID)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		return false, fmt.Errorf("delete cache entry: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) List() ([]Entry, error) {
	type row struct {
		roadmapID, candidateID, payload string
		updatedAt                       time.Time
	}
	rows, err := db.Run(s.queue, func(conn *sql.DB) ([]row, error) {
		result, err := conn.Query(`
			SELECT roadmap_id, candidate_id, payload, updated_at
			FROM progress_cache ORDER BY roadmap_id
		`)
		if err != nil {
			return nil, err
		}
		defer result.Close()

		var out []row
		for result.Next() {
			var item row
			if err := result.Scan(&item.roadmapID, &item.candidateID, &item.payload, &item.updatedAt); err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, item := range rows {
		entry := Entry{
			RoadmapID:   item.roadmapID,
			CandidateID: item.candidateID,
			UpdatedAt:   item.updatedAt,
		}
		if record, err := decode(item.payload); err == nil {
			entry.Valid = true
			entry.ProgressPercent = record.ProgressPercent
			entry.TerminalStatus = record.TerminalStatus
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close drains pending writes and releases the lock.
func (s *Store) Close() error {
	s.queue.Close()
	var errs []error
	if err := s.sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := s.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("release cache lock: %w", err))
	}
	return errors.Join(errs...)
}

func decode(payload string) (models.ProgressRecord, error) {
	var record models.ProgressRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return models.ProgressRecord{}, fmt.Errorf("%w: %v", models.ErrMalformedPayload, err)
	}
	if err := models.ValidateShape(record); err != nil {
		return models.ProgressRecord{}, err
	}
	if record.CourseCompletion == nil {
		record.CourseCompletion = map[string]bool{}
	}
	if record.SkillChecklist == nil {
		record.SkillChecklist = map[string]bool{}
	}
	return models.Recalculate(record), nil
}
