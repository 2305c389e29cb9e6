package db

import (
	"database/sql"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

type QuizRepository struct {
	queue *DBQueue
}

func NewQuizRepository(queue *DBQueue) *QuizRepository {
	return &QuizRepository{queue: queue}
}

func (r *QuizRepository) Record(result models.QuizResult) (int64, error) {
	return Run(r.queue, func(db *sql.DB) (int64, error) {
		res, err := db.Exec(`
			INSERT INTO quiz_results (candidate_id, roadmap_id, score)
			VALUES (?, ?, ?)
		`, result.CandidateID, result.RoadmapID, result.Score)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	})
}

// BestScore returns the highest recorded score and whether any attempt exists.
func (r *QuizRepository) BestScore(candidateID, roadmapID string) (int, bool, error) {
	best, err := Run(r.queue, func(db *sql.DB) (sql.NullInt64, error) {
		var best sql.NullInt64
		err := db.QueryRow(`
			SELECT MAX(score) FROM quiz_results WHERE candidate_id = ? AND roadmap_id = ?
		`, candidateID, roadmapID).Scan(&best)
		return best, err
	})
	if err != nil {
		return 0, false, err
	}
	return int(best.Int64), best.Valid, nil
}

func (r *QuizRepository) List(candidateID, roadmapID string) ([]models.QuizResult, error) {
	return Run(r.queue, func(db *sql.DB) ([]models.QuizResult, error) {
		rows, err := db.Query(`
			SELECT id, score, taken_at FROM quiz_results
			WHERE candidate_id = ? AND roadmap_id = ?
			ORDER BY id
		`, candidateID, roadmapID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var results []models.QuizResult
		for rows.Next() {
			result := models.QuizResult{CandidateID: candidateID, RoadmapID: roadmapID}
			if err := rows.Scan(&result.ID, &result.Score, &result.TakenAt); err != nil {
				return nil, err
			}
			results = append(results, result)
		}
		return results, rows.Err()
	})
}
