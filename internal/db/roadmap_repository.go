package db

import (
	"database/sql"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

type RoadmapRepository struct {
	queue *DBQueue
}

func NewRoadmapRepository(queue *DBQueue) *RoadmapRepository {
	return &RoadmapRepository{queue: queue}
}

// Upsert stores a roadmap definition, replacing its course and skill lists.
func (r *RoadmapRepository) Upsert(def models.RoadmapDefinition) error {
	return r.queue.Tx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO roadmaps (id, company) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET company = excluded.company
		`, def.RoadmapID, def.Company)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM roadmap_subtasks WHERE roadmap_id = ?`, def.RoadmapID); err != nil {
			return err
		}
		insert := func(kind models.GateKind, items []models.Subtask) error {
			for i, item := range items {
				_, err := tx.Exec(`
					INSERT INTO roadmap_subtasks (roadmap_id, kind, subtask_id, title, position)
					VALUES (?, ?, ?, ?, ?)
				`, def.RoadmapID, kind, item.ID, item.Title, i)
				if err != nil {
					return err
				}
			}
			return nil
		}
		if err := insert(models.GateCourse, def.Courses); err != nil {
			return err
		}
		return insert(models.GateSkill, def.Skills)
	})
}

// Get returns the definition or sql.ErrNoRows when the roadmap is unknown.
func (r *RoadmapRepository) Get(roadmapID string) (models.RoadmapDefinition, error) {
	return Run(r.queue, func(db *sql.DB) (models.RoadmapDefinition, error) {
		def := models.RoadmapDefinition{RoadmapID: roadmapID}
		if err := db.QueryRow(`SELECT company FROM roadmaps WHERE id = ?`, roadmapID).Scan(&def.Company); err != nil {
			return def, err
		}

		rows, err := db.Query(`
			SELECT kind, subtask_id, title FROM roadmap_subtasks
			WHERE roadmap_id = ?
			ORDER BY kind, position
		`, roadmapID)
		if err != nil {
			return def, err
		}
		defer rows.Close()

		def.Courses = []models.Subtask{}
		def.Skills = []models.Subtask{}
		for rows.Next() {
			var kind models.GateKind
			var item models.Subtask
			if err := rows.Scan(&kind, &item.ID, &item.Title); err != nil {
				return def, err
			}
			switch kind {
			case models.GateCourse:
				def.Courses = append(def.Courses, item)
			case models.GateSkill:
				def.Skills = append(def.Skills, item)
			}
		}
		return def, rows.Err()
	})
}

func (r *RoadmapRepository) ListIDs() ([]string, error) {
	return Run(r.queue, func(db *sql.DB) ([]string, error) {
		rows, err := db.Query(`SELECT id FROM roadmaps ORDER BY id`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	})
}
