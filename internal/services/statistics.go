package services

import (
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

type StepStats struct {
	StepID models.StepID `json:"step_id"`
	Name   string        `json:"name"`
	Count  int           `json:"completed_count"`
}

type RoadmapStatistics struct {
	RoadmapID string      `json:"roadmap_id"`
	Steps     []StepStats `json:"steps"`
}

// StatisticsService reports per-step completion counts for a roadmap and
// per-candidate summaries.
type StatisticsService struct {
	progressRepo *db.ProgressRepository
	quizRepo     *db.QuizRepository
	passingScore int
}

func NewStatisticsService(progressRepo *db.ProgressRepository, quizRepo *db.QuizRepository, passingScore int) *StatisticsService {
	return &StatisticsService{
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		passingScore: passingScore,
	}
}

func (s *StatisticsService) CalculateStats(roadmapID string) (*RoadmapStatistics, error) {
	stats := &RoadmapStatistics{RoadmapID: roadmapID}
	for _, step := range models.Steps() {
		count, err := s.progressRepo.CountCompleted(roadmapID, step.ID)
		if err != nil {
			return nil, err
		}
		stats.Steps = append(stats.Steps, StepStats{
			StepID: step.ID,
			Name:   step.Name,
			Count:  count,
		})
	}
	return stats, nil
}
