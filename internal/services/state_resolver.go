package services

import (
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

// Completion is the server's view of a candidate's terminal status.
type Completion struct {
	Status       models.TerminalStatus
	BestScore    *int
	PassingScore int
}

// StateResolver is the server side of the progress store. It rebuilds
// records from the step, gate and quiz tables.
type StateResolver struct {
	progressRepo *db.ProgressRepository
	quizRepo     *db.QuizRepository
	passingScore int
}

func NewStateResolver(progressRepo *db.ProgressRepository, quizRepo *db.QuizRepository, passingScore int) *StateResolver {
	return &StateResolver{
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		passingScore: passingScore,
	}
}

func (r *StateResolver) PassingScore() int {
	return r.passingScore
}

// ResolveCompletion derives the terminal status from the best quiz score,
// independent of the step flags.
func (r *StateResolver) ResolveCompletion(candidateID, roadmapID string) (Completion, error) {
	completion := Completion{Status: models.TerminalPending, PassingScore: r.passingScore}
	best, ok, err := r.quizRepo.BestScore(candidateID, roadmapID)
	if err != nil {
		return completion, err
	}
	if ok {
		completion.BestScore = &best
		if best >= r.passingScore {
			completion.Status = models.TerminalCompleted
		}
	}
	return completion, nil
}

// ResolveProgress rebuilds the stored record. found is false when nothing
// was ever stored for the pair.
func (r *StateResolver) ResolveProgress(candidateID, roadmapID string) (models.ProgressRecord, bool, error) {
	hasProgress, err := r.progressRepo.HasProgress(candidateID, roadmapID)
	if err != nil {
		return models.ProgressRecord{}, false, err
	}
	completion, err := r.ResolveCompletion(candidateID, roadmapID)
	if err != nil {
		return models.ProgressRecord{}, false, err
	}
	if !hasProgress && completion.Status != models.TerminalCompleted {
		return models.ProgressRecord{}, false, nil
	}

	record := models.NewProgressRecord(roadmapID, candidateID)

	steps, err := r.progressRepo.GetSteps(candidateID, roadmapID)
	if err != nil {
		return models.ProgressRecord{}, false, err
	}
	for _, step := range steps {
		if _, known := models.LookupStep(step.StepID); known {
			record.StepCompletion[step.StepID] = step.Completed
		}
	}

	gates, err := r.progressRepo.GetGates(candidateID, roadmapID)
	if err != nil {
		return models.ProgressRecord{}, false, err
	}
	for _, gate := range gates {
		switch gate.Kind {
		case models.GateCourse:
			record.CourseCompletion[gate.SubtaskID] = gate.Checked
		case models.GateSkill:
			record.SkillChecklist[gate.SubtaskID] = gate.Checked
		}
	}

	record.TerminalStatus = completion.Status
	return models.Recalculate(record), true, nil
}

// ApplyUpdate stores a client record. Step flags only ever turn on; gate
// checklists are replaced as sent. The client's terminal claim is ignored.
func (r *StateResolver) ApplyUpdate(record models.ProgressRecord) error {
	if err := r.progressRepo.UpsertSteps(record.CandidateID, record.RoadmapID, record.StepCompletion); err != nil {
		return err
	}
	return r.progressRepo.ReplaceGates(record.CandidateID, record.RoadmapID, record.CourseCompletion, record.SkillChecklist)
}

// RecordQuizResult stores a final quiz score and, when it passes, marks the
// quiz step completed.
func (r *StateResolver) RecordQuizResult(candidateID, roadmapID string, score int) (int64, bool, error) {
	id, err := r.quizRepo.Record(models.QuizResult{CandidateID: candidateID, RoadmapID: roadmapID, Score: score})
	if err != nil {
		return 0, false, err
	}
	passed := score >= r.passingScore
	if passed {
		err := r.progressRepo.UpsertSteps(candidateID, roadmapID, map[models.StepID]bool{models.StepQuiz: true})
		if err != nil {
			return id, passed, err
		}
	}
	return id, passed, nil
}
