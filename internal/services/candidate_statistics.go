package services

import (
	"time"
)

// CandidateStatistics summarizes one candidate's run through a roadmap.
type CandidateStatistics struct {
	CandidateID     string         `json:"candidate_id"`
	RoadmapID       string         `json:"roadmap_id"`
	CompletedSteps  int            `json:"completed_steps"`
	FirstCompletion *time.Time     `json:"first_completion,omitempty"`
	LastCompletion  *time.Time     `json:"last_completion,omitempty"`
	TimeToComplete  *time.Duration `json:"time_to_complete,omitempty"`
	QuizAttempts    int            `json:"quiz_attempts"`
	BestScore       *int           `json:"best_score,omitempty"`
	AverageScore    int            `json:"average_score"`
	// PassedOnAttempt is the 1-based attempt that first reached the passing
	// score, or 0 when none did.
	PassedOnAttempt int `json:"passed_on_attempt"`
}

func (s *StatisticsService) CalculateCandidateStats(candidateID, roadmapID string) (*CandidateStatistics, error) {
	stats := &CandidateStatistics{CandidateID: candidateID, RoadmapID: roadmapID}

	steps, err := s.progressRepo.GetSteps(candidateID, roadmapID)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		if !step.Completed {
			continue
		}
		stats.CompletedSteps++
		if step.CompletedAt == nil {
			continue
		}
		at := *step.CompletedAt
		if stats.FirstCompletion == nil || at.Before(*stats.FirstCompletion) {
			stats.FirstCompletion = &at
		}
		if stats.LastCompletion == nil || at.After(*stats.LastCompletion) {
			stats.LastCompletion = &at
		}
	}
	if stats.FirstCompletion != nil && stats.CompletedSteps >= 2 {
		elapsed := stats.LastCompletion.Sub(*stats.FirstCompletion)
		stats.TimeToComplete = &elapsed
	}

	attempts, err := s.quizRepo.List(candidateID, roadmapID)
	if err != nil {
		return nil, err
	}
	stats.QuizAttempts = len(attempts)
	if len(attempts) == 0 {
		return stats, nil
	}

	total, best := 0, attempts[0].Score
	for i, attempt := range attempts {
		total += attempt.Score
		if attempt.Score > best {
			best = attempt.Score
		}
		if stats.PassedOnAttempt == 0 && attempt.Score >= s.passingScore {
			stats.PassedOnAttempt = i + 1
		}
	}
	stats.BestScore = &best
	stats.AverageScore = total / len(attempts)

	return stats, nil
}
