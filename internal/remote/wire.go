package remote

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
)

// ProgressPayload is the JSON body exchanged on the progress endpoint.
type ProgressPayload struct {
	RoadmapID        string                 `json:"roadmap_id"`
	CandidateID      string                 `json:"candidate_id"`
	StepCompletion   map[models.StepID]bool `json:"step_completion"`
	ActiveStepID     models.StepID          `json:"active_step_id"`
	ProgressPercent  int                    `json:"progress_percent"`
	TerminalStatus   models.TerminalStatus  `json:"terminal_status"`
	CourseCompletion map[string]bool        `json:"course_completion"`
	SkillChecklist   map[string]bool        `json:"skill_checklist"`
	GatesReconciled  bool                   `json:"gates_reconciled"`
}

func FromRecord(r models.ProgressRecord) ProgressPayload {
	r = r.Clone()
	return ProgressPayload{
		RoadmapID:        r.RoadmapID,
		CandidateID:      r.CandidateID,
		StepCompletion:   r.StepCompletion,
		ActiveStepID:     r.ActiveStepID,
		ProgressPercent:  r.ProgressPercent,
		TerminalStatus:   r.TerminalStatus.Normalize(),
		CourseCompletion: r.CourseCompletion,
		SkillChecklist:   r.SkillChecklist,
		GatesReconciled:  r.GatesReconciled,
	}
}

// Record validates the payload shape and returns it as a recalculated record.
// Derived fields sent by the peer are ignored.
func (p ProgressPayload) Record() (models.ProgressRecord, error) {
	r := models.ProgressRecord{
		RoadmapID:        p.RoadmapID,
		CandidateID:      p.CandidateID,
		StepCompletion:   p.StepCompletion,
		TerminalStatus:   p.TerminalStatus,
		CourseCompletion: p.CourseCompletion,
		SkillChecklist:   p.SkillChecklist,
		GatesReconciled:  p.GatesReconciled,
	}
	if err := models.ValidateShape(r); err != nil {
		return models.ProgressRecord{}, err
	}
	if r.CourseCompletion == nil {
		r.CourseCompletion = map[string]bool{}
	}
	if r.SkillChecklist == nil {
		r.SkillChecklist = map[string]bool{}
	}
	return models.Recalculate(r), nil
}

// IdempotencyKey hashes the canonical JSON of the payload. encoding/json sorts
// map keys, so equal records always produce the same key.
func (p ProgressPayload) IdempotencyKey() (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// CompletionPayload answers the completion query.
type CompletionPayload struct {
	RoadmapID    string                `json:"roadmap_id"`
	CandidateID  string                `json:"candidate_id"`
	Status       models.TerminalStatus `json:"status"`
	BestScore    *int                  `json:"best_score,omitempty"`
	PassingScore int                   `json:"passing_score"`
}

// QuizResultRequest is posted by the quiz flow with the final score.
type QuizResultRequest struct {
	Score int `json:"score"`
}

type QuizResultResponse struct {
	ID     int64                 `json:"id"`
	Score  int                   `json:"score"`
	Passed bool                  `json:"passed"`
	Status models.TerminalStatus `json:"status"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
