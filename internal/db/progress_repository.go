package db

import (
	"database/sql"
	"time"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

type ProgressRepository struct {
	queue *DBQueue
}

func NewProgressRepository(queue *DBQueue) *ProgressRepository {
	return &ProgressRepository{queue: queue}
}

// UpsertSteps records step flags. A completed step stays completed no matter
// what later writes say, and keeps its first completion time.
func (r *ProgressRepository) UpsertSteps(candidateID, roadmapID string, steps map[models.StepID]bool) error {
	now := time.Now().UTC()
	return r.queue.Tx(func(tx *sql.Tx) error {
		for stepID, completed := range steps {
			var completedAt *time.Time
			if completed {
				completedAt = &now
			}
			_, err := tx.Exec(`
				INSERT INTO step_progress (candidate_id, roadmap_id, step_id, completed, completed_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(candidate_id, roadmap_id, step_id) DO UPDATE SET
					completed = (step_progress.completed OR excluded.completed),
					completed_at = COALESCE(step_progress.completed_at, excluded.completed_at)
			`, candidateID, roadmapID, int(stepID), completed, completedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceGates stores the gate checklists exactly as sent.
func (r *ProgressRepository) ReplaceGates(candidateID, roadmapID string, courses, skills map[string]bool) error {
	return r.queue.Tx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM gate_progress WHERE candidate_id = ? AND roadmap_id = ?`, candidateID, roadmapID)
		if err != nil {
			return err
		}
		insert := func(kind models.GateKind, flags map[string]bool) error {
			for id, checked := range flags {
				_, err := tx.Exec(`
					INSERT INTO gate_progress (candidate_id, roadmap_id, kind, subtask_id, checked)
					VALUES (?, ?, ?, ?, ?)
				`, candidateID, roadmapID, kind, id, checked)
				if err != nil {
					return err
				}
			}
			return nil
		}
		if err := insert(models.GateCourse, courses); err != nil {
			return err
		}
		return insert(models.GateSkill, skills)
	})
}

func (r *ProgressRepository) GetSteps(candidateID, roadmapID string) ([]models.StepProgress, error) {
	return Run(r.queue, func(db *sql.DB) ([]models.StepProgress, error) {
		rows, err := db.Query(`
			SELECT step_id, completed, completed_at
			FROM step_progress WHERE candidate_id = ? AND roadmap_id = ?
			ORDER BY step_id
		`, candidateID, roadmapID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var progresses []models.StepProgress
		for rows.Next() {
			progress := models.StepProgress{CandidateID: candidateID, RoadmapID: roadmapID}
			var stepID int
			var completedAt sql.NullTime
			if err := rows.Scan(&stepID, &progress.Completed, &completedAt); err != nil {
				return nil, err
			}
			progress.StepID = models.StepID(stepID)
			if completedAt.Valid {
				progress.CompletedAt = &completedAt.Time
			}
			progresses = append(progresses, progress)
		}
		return progresses, rows.Err()
	})
}

func (r *ProgressRepository) GetGates(candidateID, roadmapID string) ([]models.GateProgress, error) {
	return Run(r.queue, func(db *sql.DB) ([]models.GateProgress, error) {
		rows, err := db.Query(`
			SELECT kind, subtask_id, checked
			FROM gate_progress WHERE candidate_id = ? AND roadmap_id = ?
		`, candidateID, roadmapID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var gates []models.GateProgress
		for rows.Next() {
			gate := models.GateProgress{CandidateID: candidateID, RoadmapID: roadmapID}
			if err := rows.Scan(&gate.Kind, &gate.SubtaskID, &gate.Checked); err != nil {
				return nil, err
			}
			gates = append(gates, gate)
		}
		return gates, rows.Err()
	})
}

// HasProgress reports whether any row exists for the candidate and roadmap.
func (r *ProgressRepository) HasProgress(candidateID, roadmapID string) (bool, error) {
	return Run(r.queue, func(db *sql.DB) (bool, error) {
		var count int
		err := db.QueryRow(`
			SELECT (SELECT COUNT(*) FROM step_progress WHERE candidate_id = ? AND roadmap_id = ?)
			     + (SELECT COUNT(*) FROM gate_progress WHERE candidate_id = ? AND roadmap_id = ?)
		`, candidateID, roadmapID, candidateID, roadmapID).Scan(&count)
		return count > 0, err
	})
}

func (r *ProgressRepository) CountCompleted(roadmapID string, stepID models.StepID) (int, error) {
	return Run(r.queue, func(db *sql.DB) (int, error) {
		var count int
		err := db.QueryRow(`
			SELECT COUNT(*) FROM step_progress WHERE roadmap_id = ? AND step_id = ? AND completed = TRUE
		`, roadmapID, int(stepID)).Scan(&count)
		return count, err
	})
}
